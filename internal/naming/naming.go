// Package naming maps vendor column and header names onto a naming standard.
//
// The tables are loaded once and never mutated; a Mapper built from them is
// safe for concurrent use.
package naming

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultStandard is the canonical vocabulary used by the derivation passes.
const DefaultStandard = "libaarhusxyz"

// ErrUnknownStandard indicates a naming standard missing from the tables.
var ErrUnknownStandard = errors.New("unknown naming standard")

//go:embed naming.yaml
var defaultTable []byte

// Pattern is a regex substitution tried before the exact lookup.
type Pattern struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`

	re *regexp.Regexp
}

// Entry lists the names of one field per standard plus extra source aliases.
type Entry struct {
	Names   map[string]string `yaml:"names"`
	Aliases []string          `yaml:"aliases"`
}

// Tables is the parsed naming vocabulary.
type Tables struct {
	Standards []string  `yaml:"standards"`
	Patterns  []Pattern `yaml:"patterns"`
	Entries   []Entry   `yaml:"entries"`
}

// Load parses a YAML naming table.
func Load(r io.Reader) (*Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode naming table: %w", err)
	}
	for i := range t.Patterns {
		re, err := regexp.Compile(t.Patterns[i].Pattern)
		if err != nil {
			return nil, fmt.Errorf("naming pattern %q: %w", t.Patterns[i].Pattern, err)
		}
		t.Patterns[i].re = re
	}
	if len(t.Standards) == 0 {
		return nil, errors.New("naming table declares no standards")
	}
	return &t, nil
}

// LoadFile parses the naming table at path.
func LoadFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open naming table: %w", err)
	}
	defer f.Close()
	return Load(f)
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
	defaultErr    error
)

// Default returns the embedded tables, parsed on first use.
func Default() (*Tables, error) {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = Load(bytes.NewReader(defaultTable))
	})
	return defaultTables, defaultErr
}

// HasStandard reports whether the tables define the named standard.
func (t *Tables) HasStandard(name string) bool {
	for _, s := range t.Standards {
		if s == name {
			return true
		}
	}
	return false
}

// Mapper maps names into one standard.
type Mapper struct {
	standard string
	patterns []Pattern
	lookup   map[string]string
	columns  map[string]string
}

// Mapper builds the mapper for standard. Every known name of every standard
// and every alias maps to the standard's name of the same field, or to the
// name of the first standard listing it. The first listing of a source name
// wins.
func (t *Tables) Mapper(standard string) (*Mapper, error) {
	if !t.HasStandard(standard) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStandard, standard)
	}
	m := &Mapper{
		standard: standard,
		patterns: t.Patterns,
		lookup:   map[string]string{},
		columns:  map[string]string{},
	}
	add := func(src, dst string) {
		key := strings.ToLower(src)
		if _, ok := m.lookup[key]; !ok {
			m.lookup[key] = dst
		}
	}
	for _, e := range t.Entries {
		dst := e.Names[standard]
		for _, s := range t.Standards {
			if dst != "" {
				break
			}
			dst = e.Names[s]
		}
		if dst == "" {
			continue
		}
		if canon := e.Names[DefaultStandard]; canon != "" {
			m.columns[canon] = dst
		}
		for _, s := range t.Standards {
			if src := e.Names[s]; src != "" {
				add(src, dst)
			}
		}
		for _, a := range e.Aliases {
			add(a, dst)
		}
	}
	return m, nil
}

// Standard returns the target standard name.
func (m *Mapper) Standard() string { return m.standard }

// Map translates one name: pattern substitution first, then the exact
// lookup on the lowercased result; unknown names pass through.
func (m *Mapper) Map(name string) string {
	out := name
	for _, p := range m.patterns {
		if p.re.MatchString(name) {
			out = p.re.ReplaceAllString(name, p.Replacement)
			break
		}
	}
	if dst, ok := m.lookup[strings.ToLower(out)]; ok {
		return dst
	}
	return out
}

// Column returns the name a canonical field carries in the target standard.
func (m *Mapper) Column(canonical string) string {
	if dst, ok := m.columns[canonical]; ok {
		return dst
	}
	return canonical
}
