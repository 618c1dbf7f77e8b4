package parser

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/aemxyz/internal/alc"
	"github.com/KaramelBytes/aemxyz/internal/export"
	"github.com/KaramelBytes/aemxyz/internal/gex"
	"github.com/KaramelBytes/aemxyz/internal/sr2"
	"github.com/KaramelBytes/aemxyz/internal/xyz"
)

type xyzParser struct{}

func (xyzParser) Format() string { return "xyz" }

func (xyzParser) CanParse(filename string) bool { return hasExt(filename, ".xyz", ".dat") }

func (xyzParser) Parse(path string, opt xyz.Options) (*Document, error) {
	m, err := xyz.ParseFile(path, opt)
	if err != nil {
		return nil, err
	}
	return &Document{Model: m}, nil
}

type alcParser struct{}

func (alcParser) Format() string { return "alc" }

func (alcParser) CanParse(filename string) bool { return hasExt(filename, ".alc") }

func (alcParser) Parse(path string, _ xyz.Options) (*Document, error) {
	f, err := alc.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return &Document{ALC: f}, nil
}

type gexParser struct{}

func (gexParser) Format() string { return "gex" }

func (gexParser) CanParse(filename string) bool { return hasExt(filename, ".gex") }

func (gexParser) Parse(path string, opt xyz.Options) (*Document, error) {
	f, err := gex.ParseFile(path, opt.Encoding)
	if err != nil {
		return nil, err
	}
	return &Document{GEX: f}, nil
}

type sr2Parser struct{}

func (sr2Parser) Format() string { return "sr2" }

func (sr2Parser) CanParse(filename string) bool { return hasExt(filename, ".sr2") }

func (sr2Parser) Parse(path string, _ xyz.Options) (*Document, error) {
	r, err := sr2.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return &Document{SR2: r}, nil
}

type msgpackParser struct{}

func (msgpackParser) Format() string { return "msgpack" }

func (msgpackParser) CanParse(filename string) bool { return hasExt(filename, ".msgpack", ".mpk") }

func (msgpackParser) Parse(path string, _ xyz.Options) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open msgpack: %w", err)
	}
	defer f.Close()
	b, err := export.ReadMsgpack(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &Document{Model: b.Model, Bundle: b}, nil
}
