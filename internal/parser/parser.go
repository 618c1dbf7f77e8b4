// Package parser dispatches input files to the reader for their format.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/aemxyz/internal/alc"
	"github.com/KaramelBytes/aemxyz/internal/export"
	"github.com/KaramelBytes/aemxyz/internal/gex"
	"github.com/KaramelBytes/aemxyz/internal/sr2"
	"github.com/KaramelBytes/aemxyz/internal/xyz"
)

// Document is a parsed input; exactly one of the payload fields is set.
type Document struct {
	Path   string
	Format string

	Model  *xyz.Model
	ALC    *alc.File
	GEX    *gex.File
	SR2    *sr2.Response
	Bundle *export.Bundle
}

// Parser defines a format reader.
type Parser interface {
	Format() string
	CanParse(filename string) bool
	Parse(path string, opt xyz.Options) (*Document, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")

// Formats lists the registered format names.
func Formats() []string {
	out := make([]string, len(registry))
	for i, p := range registry {
		out[i] = p.Format()
	}
	return out
}

// ParseFile selects a parser based on filename and parses path.
func ParseFile(path string, opt xyz.Options) (*Document, error) {
	for _, p := range registry {
		if p.CanParse(path) {
			doc, err := p.Parse(path, opt)
			if err != nil {
				return nil, err
			}
			doc.Path, doc.Format = path, p.Format()
			return doc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func init() {
	// Register default parsers
	Register(xyzParser{})
	Register(alcParser{})
	Register(gexParser{})
	Register(sr2Parser{})
	Register(msgpackParser{})
}
