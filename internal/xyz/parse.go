package xyz

import (
	"fmt"
	"io"
	"os"

	"github.com/KaramelBytes/aemxyz/internal/alc"
	"github.com/KaramelBytes/aemxyz/internal/utils"
	"go.uber.org/zap"
)

// Options controls parsing.
type Options struct {
	// Source is recorded under the "source" header key; ParseFile sets it to the path.
	Source string
	// ALC renames physical columns to canonical names before classification.
	ALC *alc.File
	// Encoding of the input; empty means UTF-8.
	Encoding string
	Classify ClassifyOptions
	Logger   *zap.Logger
}

// Parse reads an XYZ stream into a model. No partial model is returned on error.
func Parse(r io.Reader, opt Options) (*Model, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	in, err := utils.DecodeReader(r, opt.Encoding)
	if err != nil {
		return nil, err
	}
	lr := newLineReader(in)
	raw, err := readHeader(lr)
	if err != nil {
		return nil, err
	}
	dummy := ""
	if v, ok := raw.values.Get("dummy"); ok {
		dummy = v.Str
	}
	body, err := readBody(lr, raw.columns, dummy)
	if err != nil {
		return nil, err
	}
	typeValues(raw.values)

	var info *ALCInfo
	if opt.ALC != nil {
		mapping, err := opt.ALC.Mapping(body.Names())
		if err != nil {
			return nil, fmt.Errorf("apply alc: %w", err)
		}
		for _, from := range body.Names() {
			if to, ok := mapping[from]; ok {
				body.Rename(from, to)
			}
		}
		info = &ALCInfo{Meta: opt.ALC.Meta, Mapping: mapping}
	}

	cls, err := Classify(body.Names(), opt.Classify)
	if err != nil {
		return nil, err
	}
	m := New(body.Rows())
	m.FileMeta.Columns = body.Names()
	m.ALCInfo = info
	m.ModelInfo = raw.values
	for _, name := range cls.PerSounding {
		if err := m.Flightlines.Put(body.Column(name)); err != nil {
			return nil, err
		}
	}
	for _, g := range cls.Groups {
		l := NewLayerTable(body.Rows(), g.Indices())
		for pos, layer := range l.Layers() {
			col := body.Column(g.Layers[layer])
			for r := 0; r < body.Rows(); r++ {
				l.Set(r, pos, col.Float(r))
			}
		}
		if err := m.PutLayer(g.Name, l); err != nil {
			return nil, err
		}
	}
	if opt.Source != "" {
		m.ModelInfo.Set("source", StringValue(opt.Source))
	} else {
		m.ModelInfo.Set("source", NullValue())
	}
	log.Debug("parsed xyz",
		zap.String("source", opt.Source),
		zap.Int("soundings", m.Rows()),
		zap.Int("columns", len(m.FileMeta.Columns)),
		zap.Int("layer_groups", m.LayerData.Len()))
	return m, nil
}

// ParseFile parses the XYZ file at path.
func ParseFile(path string, opt Options) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xyz: %w", err)
	}
	defer f.Close()
	opt.Source = path
	m, err := Parse(f, opt)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}
