package xyz

import (
	"fmt"
	"math"
)

// FileMeta records provenance of a parsed file.
type FileMeta struct {
	// Columns is the physical column order of the body after column mapping.
	Columns []string
}

// ALCInfo records the column-mapping file consulted while parsing.
type ALCInfo struct {
	Meta map[string]string
	// Mapping maps physical column names to the canonical names they were renamed to.
	Mapping map[string]string
}

// System returns the ALC System entry or "Unknown".
func (a *ALCInfo) System() string {
	if a == nil || a.Meta["System"] == "" {
		return "Unknown"
	}
	return a.Meta["System"]
}

// Model is the canonical in-memory survey: per-sounding attributes, per-layer
// matrices sharing the same rows, and the typed header.
type Model struct {
	Flightlines *Table
	LayerData   *LayerData
	ModelInfo   *Header
	FileMeta    FileMeta
	ALCInfo     *ALCInfo
}

// New returns an empty model with the given number of soundings.
func New(rows int) *Model {
	return &Model{
		Flightlines: NewTable(rows),
		LayerData:   NewLayerData(),
		ModelInfo:   NewHeader(),
	}
}

func (m *Model) Rows() int { return m.Flightlines.Rows() }

// PutLayer stores a layer table after checking its row count.
func (m *Model) PutLayer(name string, l *LayerTable) error {
	if l.Rows() != m.Rows() {
		return fmt.Errorf("layer table %q has %d rows, model has %d: %w", name, l.Rows(), m.Rows(), ErrRowMismatch)
	}
	m.LayerData.Put(name, l)
	return nil
}

// Validate checks the row alignment of every table.
func (m *Model) Validate() error {
	n := m.Rows()
	for _, c := range m.Flightlines.Columns() {
		if c.Len() != n {
			return fmt.Errorf("column %q: %w", c.Name, ErrRowMismatch)
		}
	}
	for _, name := range m.LayerData.Names() {
		if m.LayerData.Get(name).Rows() != n {
			return fmt.Errorf("layer table %q: %w", name, ErrRowMismatch)
		}
	}
	return nil
}

func (m *Model) Clone() *Model {
	out := &Model{
		Flightlines: m.Flightlines.Clone(),
		LayerData:   m.LayerData.Clone(),
		ModelInfo:   m.ModelInfo.Clone(),
		FileMeta:    FileMeta{Columns: append([]string(nil), m.FileMeta.Columns...)},
	}
	if m.ALCInfo != nil {
		a := &ALCInfo{Meta: map[string]string{}, Mapping: map[string]string{}}
		for k, v := range m.ALCInfo.Meta {
			a.Meta[k] = v
		}
		for k, v := range m.ALCInfo.Mapping {
			a.Mapping[k] = v
		}
		out.ALCInfo = a
	}
	return out
}

// Source returns the recorded provenance path, or "" for in-memory data.
func (m *Model) Source() string {
	v, ok := m.ModelInfo.Get("source")
	if !ok || v.IsNull() {
		return ""
	}
	return v.String()
}

// Title returns the header title, else the source path, else "Unknown".
func (m *Model) Title() string {
	if v, ok := m.ModelInfo.Get("title"); ok && !v.IsNull() {
		return v.String()
	}
	if s := m.Source(); s != "" {
		return s
	}
	return "Unknown"
}

// Projection returns the EPSG code stored in the header, if any.
func (m *Model) Projection() (int, bool) {
	v, ok := m.ModelInfo.Get("projection")
	if !ok {
		return 0, false
	}
	f, ok := v.Number()
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}

func (m *Model) firstColumn(names ...string) string {
	for _, n := range names {
		if m.Flightlines.Has(n) {
			return n
		}
	}
	return ""
}

// LineIDColumn returns the column identifying flight lines, or "".
func (m *Model) LineIDColumn() string { return m.firstColumn("title", "line_id", "line_no") }

// XColumn returns the easting/longitude column, or "".
func (m *Model) XColumn() string { return m.firstColumn("x", "utmx", "lon", "lng") }

// YColumn returns the northing/latitude column, or "".
func (m *Model) YColumn() string { return m.firstColumn("y", "utmy", "lat") }

// ZColumn returns the surface elevation column, or "".
func (m *Model) ZColumn() string { return m.firstColumn("topo", "elevation", "z") }

// LayerParams holds layer tables whose values are identical for every sounding.
type LayerParams struct {
	Layers []int
	Names  []string
	Values map[string][]float64
}

// LayerParams returns the per-layer constants, aligned to the layers of the
// first layer table.
func (m *Model) LayerParams() *LayerParams {
	p := &LayerParams{Values: map[string][]float64{}}
	names := m.LayerData.Names()
	if len(names) == 0 {
		return p
	}
	p.Layers = m.LayerData.Get(names[0]).Layers()
	for _, name := range names {
		l := m.LayerData.Get(name)
		if l.Rows() == 0 || !isConstant(l) {
			continue
		}
		vals := make([]float64, len(p.Layers))
		for i, layer := range p.Layers {
			vals[i] = math.NaN()
			if pos, ok := l.Pos(layer); ok {
				vals[i] = l.At(0, pos)
			}
		}
		p.Names = append(p.Names, name)
		p.Values[name] = vals
	}
	return p
}

func isConstant(l *LayerTable) bool {
	seen := false
	for pos := 0; pos < l.NumLayers(); pos++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for r := 0; r < l.Rows(); r++ {
			v := l.At(r, pos)
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if math.IsInf(lo, 1) {
			continue
		}
		seen = true
		if hi-lo != 0 && !(math.IsInf(hi, 0) && hi == lo) {
			return false
		}
	}
	return seen
}

// FieldSource tells where GetField found a value.
type FieldSource int

const (
	FromFlightlines FieldSource = iota
	FromHeader
	FromLayerParams
)

// Field is a value resolved by GetField.
type Field struct {
	Source FieldSource
	Column *Column
	Value  Value
	Layers []float64
}

// GetField looks a name up in the per-sounding table, then the header, then
// the layer constants.
func (m *Model) GetField(name string) (Field, bool) {
	if c := m.Flightlines.Column(name); c != nil {
		return Field{Source: FromFlightlines, Column: c}, true
	}
	if v, ok := m.ModelInfo.Get(name); ok {
		return Field{Source: FromHeader, Value: v}, true
	}
	p := m.LayerParams()
	if vals, ok := p.Values[name]; ok {
		return Field{Source: FromLayerParams, Layers: vals}, true
	}
	return Field{}, false
}

// Line is a view of the soundings that share one line identifier.
type Line struct {
	ID   string
	Rows []int

	model *Model
}

// Lines groups soundings by line identifier in order of first appearance.
// A model without a line identifier column yields a single line.
func (m *Model) Lines() []Line {
	col := m.Flightlines.Column(m.LineIDColumn())
	if col == nil {
		rows := make([]int, m.Rows())
		for i := range rows {
			rows[i] = i
		}
		return []Line{{Rows: rows, model: m}}
	}
	var out []Line
	pos := map[string]int{}
	for r := 0; r < m.Rows(); r++ {
		k := col.Key(r)
		i, ok := pos[k]
		if !ok {
			i = len(out)
			pos[k] = i
			out = append(out, Line{ID: k, model: m})
		}
		out[i].Rows = append(out[i].Rows, r)
	}
	return out
}

// XDist returns the largest along-line distance of the line, or NaN.
func (l Line) XDist() float64 {
	col := l.model.Flightlines.Column("xdist")
	if col == nil {
		return math.NaN()
	}
	max := math.NaN()
	for _, r := range l.Rows {
		v := col.Float(r)
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return max
}
