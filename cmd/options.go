package cmd

import (
	"errors"
	"os"

	"github.com/KaramelBytes/aemxyz/internal/alc"
	cfgpkg "github.com/KaramelBytes/aemxyz/internal/config"
	"github.com/KaramelBytes/aemxyz/internal/naming"
	"github.com/KaramelBytes/aemxyz/internal/normalize"
	"github.com/KaramelBytes/aemxyz/internal/survey"
	"github.com/KaramelBytes/aemxyz/internal/xyz"
)

// settings returns the loaded configuration, or the defaults when loading failed.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{
		NamingStandard:  naming.DefaultStandard,
		RequiredColumns: normalize.DefaultRequiredColumns,
		LayerNaming:     "underscore",
		Encoding:        "utf-8",
		DOIUpper:        normalize.DefaultDOIUpper,
		DOILower:        normalize.DefaultDOILower,
	}
}

// parseOptions builds reader options; alcPath may be empty.
func parseOptions(alcPath string) (xyz.Options, error) {
	c := settings()
	opt := xyz.Options{
		Encoding: c.Encoding,
		Classify: xyz.ClassifyOptions{Compact: c.CompactLayers},
		Logger:   log,
	}
	if alcPath != "" {
		f, err := alc.ParseFile(alcPath)
		if err != nil {
			return opt, err
		}
		opt.ALC = f
	}
	return opt, nil
}

func parseXYZ(path, alcPath string) (*xyz.Model, error) {
	opt, err := parseOptions(alcPath)
	if err != nil {
		return nil, err
	}
	return xyz.ParseFile(path, opt)
}

// loadSurvey opens the survey directory at path, or loads an XYZ file with
// its optional GEX and ALC companions.
func loadSurvey(path, gexPath, alcPath string) (*survey.Survey, error) {
	opt, err := parseOptions("")
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if gexPath != "" || alcPath != "" {
			return nil, errors.New("--gex and --alc do not apply to a survey directory")
		}
		return survey.Open(path, opt)
	}
	return survey.Load(path, gexPath, alcPath, opt)
}

// normalizeOptions merges configuration with the non-empty overrides.
func normalizeOptions(standard string, crs int, resample bool) (normalize.Options, error) {
	c := settings()
	opt := normalize.Options{
		Standard:        c.NamingStandard,
		ProjectCRS:      c.ProjectCRS,
		RequiredColumns: c.RequiredColumns,
		DOIUpper:        c.DOIUpper,
		DOILower:        c.DOILower,
		ResampleDepths:  resample,
		Logger:          log,
	}
	if standard != "" {
		opt.Standard = standard
	}
	if crs != 0 {
		opt.ProjectCRS = crs
	}
	if c.NamingTable != "" {
		t, err := naming.LoadFile(c.NamingTable)
		if err != nil {
			return opt, err
		}
		opt.Tables = t
	}
	return opt, nil
}

func dumpOptions(layerNaming string) (xyz.DumpOptions, error) {
	if layerNaming == "" {
		layerNaming = settings().LayerNaming
	}
	n, err := xyz.ParseLayerNaming(layerNaming)
	if err != nil {
		return xyz.DumpOptions{}, err
	}
	return xyz.DumpOptions{LayerNaming: n}, nil
}

// runNormalize normalizes m and prints every warning.
func runNormalize(m *xyz.Model, standard string, crs int, resample bool) error {
	opt, err := normalizeOptions(standard, crs, resample)
	if err != nil {
		return err
	}
	rep, err := normalize.Normalize(m, opt)
	if err != nil {
		return err
	}
	for _, w := range rep.Warnings {
		printWarning(w)
	}
	return nil
}
