package xyz

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/KaramelBytes/aemxyz/internal/alc"
	"github.com/KaramelBytes/aemxyz/internal/utils"
)

// LayerNaming selects how layer columns are flattened on output.
type LayerNaming int

const (
	// UnderscoreNaming writes name_NN with a 1-based, zero-padded index.
	UnderscoreNaming LayerNaming = iota
	// BracketNaming writes name[idx] with the zero-based index.
	BracketNaming
)

// ParseLayerNaming maps "underscore" or "bracket" to a LayerNaming.
func ParseLayerNaming(s string) (LayerNaming, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "underscore":
		return UnderscoreNaming, nil
	case "bracket":
		return BracketNaming, nil
	}
	return 0, fmt.Errorf("unknown layer naming %q (use underscore|bracket)", s)
}

// LayerColumnName flattens one layer column name.
func LayerColumnName(group string, layer int, naming LayerNaming) string {
	if naming == BracketNaming {
		return fmt.Sprintf("%s[%d]", group, layer)
	}
	return fmt.Sprintf("%s_%02d", group, layer+1)
}

// DumpOptions controls serialization.
type DumpOptions struct {
	LayerNaming LayerNaming
	// Missing is written for missing cells; empty means the header dummy, else "*".
	Missing string
}

// FlatColumns returns the output column order: per-sounding columns, then
// every layer table's columns.
func FlatColumns(m *Model, naming LayerNaming) []string {
	out := m.Flightlines.Names()
	for _, name := range m.LayerData.Names() {
		for _, layer := range m.LayerData.Get(name).Layers() {
			out = append(out, LayerColumnName(name, layer, naming))
		}
	}
	return out
}

func missingToken(m *Model, opt DumpOptions) string {
	if opt.Missing != "" {
		return opt.Missing
	}
	if v, ok := m.ModelInfo.Get("dummy"); ok && !v.IsNull() {
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return "*"
}

// Dump writes the model as XYZ text: header key/value line pairs (without
// "source"), the column line, then one row per sounding.
func Dump(w io.Writer, m *Model, opt DumpOptions) error {
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, key := range m.ModelInfo.Keys() {
		if key == "source" {
			continue
		}
		v, _ := m.ModelInfo.Get(key)
		fmt.Fprintf(bw, "/%s\n/%s\n", key, v.String())
	}
	bw.WriteString("/ " + strings.Join(FlatColumns(m, opt.LayerNaming), " ") + "\n")

	na := missingToken(m, opt)
	cols := m.Flightlines.Columns()
	names := m.LayerData.Names()
	fields := make([]string, 0, len(FlatColumns(m, opt.LayerNaming)))
	for r := 0; r < m.Rows(); r++ {
		fields = fields[:0]
		for _, c := range cols {
			fields = append(fields, c.Format(r, na))
		}
		for _, name := range names {
			for _, v := range m.LayerData.Get(name).Row(r) {
				if math.IsNaN(v) {
					fields = append(fields, na)
					continue
				}
				fields = append(fields, FormatFloat(v))
			}
		}
		bw.WriteString(strings.Join(fields, " "))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// DumpFile writes the model to path atomically. When alcPath is not empty a
// companion ALC file describing the output columns is written as well.
func DumpFile(path string, m *Model, opt DumpOptions, alcPath string) error {
	var buf bytes.Buffer
	if err := Dump(&buf, m, opt); err != nil {
		return fmt.Errorf("dump xyz: %w", err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return err
	}
	if alcPath == "" {
		return nil
	}
	buf.Reset()
	if err := alc.Dump(&buf, FlatColumns(m, opt.LayerNaming), m.ALCInfo.System()); err != nil {
		return fmt.Errorf("dump alc: %w", err)
	}
	return utils.SafeWriteFile(alcPath, buf.Bytes())
}
