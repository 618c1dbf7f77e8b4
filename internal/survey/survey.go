// Package survey pairs an XYZ model with the GEX system it was flown with
// and persists the pair together with a JSON manifest.
package survey

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/aemxyz/internal/alc"
	"github.com/KaramelBytes/aemxyz/internal/gex"
	"github.com/KaramelBytes/aemxyz/internal/utils"
	"github.com/KaramelBytes/aemxyz/internal/xyz"
	"github.com/google/uuid"
)

// ManifestName is the file that marks a survey directory.
const ManifestName = "survey.json"

// Manifest describes a survey directory on disk.
type Manifest struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	XYZ       string    `json:"xyz"`
	GEX       string    `json:"gex,omitempty"`
	ALC       string    `json:"alc,omitempty"`
	Soundings int       `json:"soundings"`
	Lines     int       `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Survey is a model and its optional system description.
type Survey struct {
	Model    *xyz.Model
	System   *gex.File
	Manifest Manifest

	// Not serialized: on-disk location of the survey.json
	rootDir string
}

// New wraps an in-memory model. Call Dump to persist.
func New(m *xyz.Model, system *gex.File) *Survey {
	now := time.Now()
	return &Survey{
		Model:  m,
		System: system,
		Manifest: Manifest{
			ID:        uuid.NewString(),
			Title:     m.Title(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// Load parses an XYZ file with its optional GEX and ALC companions. Empty
// paths are skipped.
func Load(xyzPath, gexPath, alcPath string, opt xyz.Options) (*Survey, error) {
	if alcPath != "" {
		f, err := alc.ParseFile(alcPath)
		if err != nil {
			return nil, err
		}
		opt.ALC = f
	}
	m, err := xyz.ParseFile(xyzPath, opt)
	if err != nil {
		return nil, err
	}
	var sys *gex.File
	if gexPath != "" {
		if sys, err = gex.ParseFile(gexPath, opt.Encoding); err != nil {
			return nil, err
		}
	}
	return New(m, sys), nil
}

// RootDir returns the directory the survey was opened from or dumped to.
func (s *Survey) RootDir() string { return s.rootDir }

// Dump writes <name>.xyz, <name>.gex when a system is set, <name>.alc when
// withALC is true, and survey.json into dir.
func (s *Survey) Dump(dir, name string, opt xyz.DumpOptions, withALC bool) error {
	if s.Model == nil {
		return errors.New("survey has no model")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	man := s.Manifest
	man.XYZ = name + ".xyz"
	man.GEX, man.ALC = "", ""
	alcPath := ""
	if withALC {
		man.ALC = name + ".alc"
		alcPath = filepath.Join(dir, man.ALC)
	}
	if err := xyz.DumpFile(filepath.Join(dir, man.XYZ), s.Model, opt, alcPath); err != nil {
		return err
	}
	if s.System != nil {
		man.GEX = name + ".gex"
		if err := gex.DumpFile(filepath.Join(dir, man.GEX), s.System); err != nil {
			return err
		}
	}
	man.Soundings = s.Model.Rows()
	man.Lines = len(s.Model.Lines())
	man.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(man)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(filepath.Join(dir, ManifestName), data); err != nil {
		return err
	}
	s.Manifest = man
	s.rootDir = dir
	return nil
}

// LoadManifest reads survey.json from dir.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("survey not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.XYZ == "" {
		return nil, fmt.Errorf("manifest %s names no xyz file", path)
	}
	return &m, nil
}

// Open loads the survey whose manifest is in dir or one of its parents.
func Open(start string, opt xyz.Options) (*Survey, error) {
	dir, err := FindRoot(start)
	if err != nil {
		return nil, err
	}
	man, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}
	join := func(name string) string {
		if name == "" {
			return ""
		}
		return filepath.Join(dir, name)
	}
	s, err := Load(join(man.XYZ), join(man.GEX), join(man.ALC), opt)
	if err != nil {
		return nil, err
	}
	s.Manifest = *man
	s.rootDir = dir
	return s, nil
}

// FindRoot walks up from start to the first directory holding a manifest.
// A file start begins at its directory; an empty start at the working
// directory.
func FindRoot(start string) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		start = wd
	}
	info, err := os.Stat(start)
	if err != nil {
		return "", err
	}
	dir := start
	if !info.IsDir() {
		dir = filepath.Dir(start)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ManifestName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("no %s in %s or its parents", ManifestName, start)
}
