// Package gex reads and writes GEX system-description files: a free-text
// first line followed by [Section] blocks of Key=values lines.
package gex

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/KaramelBytes/aemxyz/internal/utils"
)

// Line is the value list of one Key=values line.
type Line struct {
	Key string
	Raw string
	// Numbers is set when every value parses as a float, Strings otherwise.
	Numbers []float64
	Strings []string
}

// Param collects the lines whose keys share a name once trailing digits are
// stripped, e.g. GateTime01, GateTime02.
type Param struct {
	Name  string
	Lines []Line
}

// Scalar returns the value of a single-line, single-number parameter.
func (p *Param) Scalar() (float64, bool) {
	if len(p.Lines) != 1 || len(p.Lines[0].Numbers) != 1 {
		return 0, false
	}
	return p.Lines[0].Numbers[0], true
}

// Matrix returns the numeric lines; non-numeric lines are skipped.
func (p *Param) Matrix() [][]float64 {
	var out [][]float64
	for _, l := range p.Lines {
		if l.Numbers != nil {
			out = append(out, l.Numbers)
		}
	}
	return out
}

// Value collapses the parameter the way it is usually consumed: a scalar
// for one value, a list for one line, a matrix for several numeric lines.
func (p *Param) Value() any {
	if len(p.Lines) == 1 {
		l := p.Lines[0]
		switch {
		case l.Numbers != nil && len(l.Numbers) == 1:
			return l.Numbers[0]
		case l.Numbers != nil:
			return l.Numbers
		case len(l.Strings) == 1:
			return l.Strings[0]
		}
		return l.Strings
	}
	if m := p.Matrix(); len(m) == len(p.Lines) {
		return m
	}
	out := make([][]string, len(p.Lines))
	for i, l := range p.Lines {
		out[i] = strings.Fields(l.Raw)
	}
	return out
}

// Section is one [Name] block.
type Section struct {
	Name   string
	Params []*Param

	idx   map[string]int
	order []Line
}

func newSection(name string) *Section {
	return &Section{Name: name, idx: map[string]int{}}
}

// Param returns the named parameter or nil.
func (s *Section) Param(name string) *Param {
	i, ok := s.idx[name]
	if !ok {
		return nil
	}
	return s.Params[i]
}

func (s *Section) add(l Line) {
	name := strings.TrimRight(l.Key, "0123456789")
	i, ok := s.idx[name]
	if !ok {
		i = len(s.Params)
		s.idx[name] = i
		s.Params = append(s.Params, &Param{Name: name})
	}
	s.Params[i].Lines = append(s.Params[i].Lines, l)
	s.order = append(s.order, l)
}

// File is a parsed GEX file.
type File struct {
	Header   string
	Sections []*Section
}

// Section returns the named section or nil.
func (f *File) Section(name string) *Section {
	for _, s := range f.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Map returns header and sections as nested plain values, keyed by section
// and parameter name.
func (f *File) Map() map[string]any {
	out := map[string]any{"header": f.Header}
	for _, s := range f.Sections {
		params := make(map[string]any, len(s.Params))
		for _, p := range s.Params {
			params[p.Name] = p.Value()
		}
		out[s.Name] = params
	}
	return out
}

func parseLine(key, raw string) Line {
	l := Line{Key: strings.TrimSpace(key), Raw: strings.TrimSpace(raw)}
	fields := strings.Fields(l.Raw)
	nums := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			l.Strings = fields
			return l
		}
		nums = append(nums, v)
	}
	l.Numbers = nums
	return l
}

// Parse reads a GEX file. Lines before the first section other than the
// header line are ignored.
func Parse(r io.Reader, encoding string) (*File, error) {
	in, err := utils.DecodeReader(r, encoding)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	f := &File{}
	var cur *Section
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if n == 1 {
			f.Header = text
			continue
		}
		if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
			cur = newSection(strings.Trim(text, "[]"))
			f.Sections = append(f.Sections, cur)
			continue
		}
		key, raw, ok := strings.Cut(text, "=")
		if !ok || cur == nil {
			continue
		}
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("gex line %d: empty key", n)
		}
		cur.add(parseLine(key, raw))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read gex: %w", err)
	}
	return f, nil
}

// ParseFile parses the GEX file at path.
func ParseFile(path, encoding string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gex: %w", err)
	}
	defer fh.Close()
	f, err := Parse(fh, encoding)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Dump writes f with the original keys, value text and line order.
func Dump(w io.Writer, f *File) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", f.Header)
	for _, s := range f.Sections {
		fmt.Fprintf(bw, "\n[%s]\n", s.Name)
		for _, l := range s.order {
			fmt.Fprintf(bw, "%s=%s\n", l.Key, l.Raw)
		}
	}
	return bw.Flush()
}

// DumpFile writes f to path atomically.
func DumpFile(path string, f *File) error {
	var sb strings.Builder
	if err := Dump(&sb, f); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, []byte(sb.String()))
}
