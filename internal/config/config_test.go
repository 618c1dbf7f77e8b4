package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "libaarhusxyz", c.NamingStandard)
	assert.Equal(t, 0, c.ProjectCRS)
	assert.Equal(t, []string{"resdata", "restotal", "numdata"}, c.RequiredColumns)
	assert.Equal(t, "underscore", c.LayerNaming)
	assert.Equal(t, 300.0, c.DOIUpper)
	assert.Equal(t, 500.0, c.DOILower)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("naming_standard: alc\nproject_crs: 4326\n"), 0o644))
	t.Setenv("AEMXYZ_PROJECT_CRS", "32632")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alc", c.NamingStandard)
	assert.Equal(t, 32632, c.ProjectCRS)
}

func TestSave_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	require.NoError(t, err)
	c.LayerNaming = "bracket"
	c.GeoJSONTolerance = 2.5
	require.NoError(t, Save(c, ""))

	_, err = os.Stat(filepath.Join(home, ".aemxyz", "config.yaml"))
	require.NoError(t, err)
	back, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestLoad_InvalidDOI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("doi_upper: 600\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
