// Package normalize brings a parsed model onto the canonical schema and
// derives geometry from it: coordinates, along-line distance, depths,
// elevations, layer thickness and depth-of-investigation bands.
package normalize

import (
	"fmt"

	"github.com/KaramelBytes/aemxyz/internal/naming"
	"github.com/KaramelBytes/aemxyz/internal/xyz"
	"go.uber.org/zap"
)

// DefaultRequiredColumns are backfilled with NaN when absent.
var DefaultRequiredColumns = []string{"resdata", "restotal", "numdata"}

const (
	DefaultDOIUpper = 300
	DefaultDOILower = 500
)

// Options controls Normalize. The zero value normalizes into the default
// naming standard and keeps the source projection.
type Options struct {
	// Standard is the target naming standard.
	Standard string
	// Tables overrides the embedded naming tables.
	Tables *naming.Tables
	// ProjectCRS is the EPSG code to reproject to; 0 keeps the source CRS.
	ProjectCRS int
	// RequiredColumns replaces DefaultRequiredColumns when not nil.
	RequiredColumns []string
	// NaNValue is the sentinel replaced by NaN; empty means the header dummy, else "*".
	NaNValue string
	// DOIUpper and DOILower are the backfilled thresholds; zero means the defaults.
	DOIUpper float64
	DOILower float64
	// ResampleDepths puts every sounding on the same layer boundaries before
	// elevations, thickness and DOI bands are derived.
	ResampleDepths bool
	Logger         *zap.Logger
}

// Report lists the passes that ran and the non-fatal problems met.
type Report struct {
	Passes   []string
	Warnings []error
}

type pass struct {
	name string
	run  func(*engine)
}

var passes = []pass{
	{"naming", (*engine).names},
	{"nans", (*engine).nans},
	{"projection", (*engine).crs},
	{"coordinates", (*engine).coordinates},
	{"dates", (*engine).dates},
	{"xdist", (*engine).xdist},
	{"defaults", (*engine).defaults},
	{"depths", (*engine).depths},
	{"resample", (*engine).resample},
	{"z", (*engine).elevation},
	{"height", (*engine).height},
	{"doi_layer", (*engine).doiLayer},
}

type engine struct {
	m   *xyz.Model
	mp  *naming.Mapper
	opt Options
	log *zap.Logger
	rep *Report
	cur string
}

// Normalize runs every pass over m in place. Passes that lack an input are
// skipped and reported; an error means the options were unusable or a pass
// broke row alignment.
func Normalize(m *xyz.Model, opt Options) (*Report, error) {
	if opt.Standard == "" {
		opt.Standard = naming.DefaultStandard
	}
	if opt.RequiredColumns == nil {
		opt.RequiredColumns = DefaultRequiredColumns
	}
	if opt.DOIUpper == 0 {
		opt.DOIUpper = DefaultDOIUpper
	}
	if opt.DOILower == 0 {
		opt.DOILower = DefaultDOILower
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tables := opt.Tables
	if tables == nil {
		var err error
		if tables, err = naming.Default(); err != nil {
			return nil, err
		}
	}
	mp, err := tables.Mapper(opt.Standard)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	e := &engine{m: m, mp: mp, opt: opt, log: log, rep: &Report{}}
	for _, p := range passes {
		if p.name == "resample" && !opt.ResampleDepths {
			continue
		}
		e.cur = p.name
		p.run(e)
		if err := m.Validate(); err != nil {
			return e.rep, fmt.Errorf("normalize pass %s: %w", p.name, err)
		}
		e.rep.Passes = append(e.rep.Passes, p.name)
	}
	log.Debug("normalized model",
		zap.String("standard", opt.Standard),
		zap.Int("soundings", m.Rows()),
		zap.Int("warnings", len(e.rep.Warnings)))
	return e.rep, nil
}

func (e *engine) warn(err error) {
	e.rep.Warnings = append(e.rep.Warnings, err)
	e.log.Warn("normalization degraded", zap.String("pass", e.cur), zap.Error(err))
}

func (e *engine) missing(canonical string) {
	e.warn(&MissingPrerequisiteColumn{Pass: e.cur, Column: e.col(canonical)})
}

// col returns the name a canonical field has in the target standard.
func (e *engine) col(canonical string) string { return e.mp.Column(canonical) }

func (e *engine) column(canonical string) *xyz.Column {
	return e.m.Flightlines.Column(e.col(canonical))
}

func (e *engine) layer(canonical string) *xyz.LayerTable {
	return e.m.LayerData.Get(e.col(canonical))
}

func (e *engine) put(c *xyz.Column) {
	if err := e.m.Flightlines.Put(c); err != nil {
		e.warn(err)
	}
}

func (e *engine) names() { naming.Normalize(e.m, e.mp, e.log) }
