package naming

import (
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/aemxyz/internal/xyz"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func defaultMapper(t *testing.T, standard string) *Mapper {
	t.Helper()
	tables, err := Default()
	if err != nil {
		t.Fatalf("default tables: %v", err)
	}
	mp, err := tables.Mapper(standard)
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}
	return mp
}

func TestMapper_Map(t *testing.T) {
	mp := defaultMapper(t, DefaultStandard)
	tests := map[string]string{
		"UTMX":           "x",
		"utmy":           "y",
		"RHO_I":          "resistivity",
		"Gate_Ch01":      "dbdt_ch1gt",
		"STD_Ch02":       "dbdt_std_ch2gt",
		"dbdt_ch007gt":   "dbdt_ch7gt",
		"Current_Ch03":   "current_ch3",
		"line_no":        "title",
		"Topography":     "topo",
		"something_else": "something_else",
		"node name(s)":   "node name(s)",
	}
	for in, want := range tests {
		if got := mp.Map(in); got != want {
			t.Errorf("Map(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapper_ALCStandard(t *testing.T) {
	mp := defaultMapper(t, "alc")
	assert.Equal(t, "UTMX", mp.Map("x"))
	assert.Equal(t, "Gate_Ch01", mp.Map("gate_ch1"))
	assert.Equal(t, "Gate_Ch01", mp.Map("dbdt_ch1gt"))
	// Fields the standard does not name fall back to the canonical name.
	assert.Equal(t, "resistivity", mp.Map("rho"))
	assert.Equal(t, "UTMX", mp.Column("x"))
	assert.Equal(t, "xdist", mp.Column("xdist"))
	assert.Equal(t, "dep_bot", mp.Column("dep_bot"))
}

func TestMapper_UnknownStandard(t *testing.T) {
	tables, err := Default()
	require.NoError(t, err)
	_, err = tables.Mapper("nope")
	if !errors.Is(err, ErrUnknownStandard) {
		t.Fatalf("expected ErrUnknownStandard, got %v", err)
	}
}

func TestLoad_CustomTable(t *testing.T) {
	tables, err := Load(strings.NewReader(`
standards: [a, b]
patterns:
  - pattern: '^v([0-9]+)$'
    replacement: 'val${1}'
entries:
  - names: {a: val1, b: VALUE_ONE}
  - names: {a: east}
    aliases: [e]
`))
	require.NoError(t, err)
	mp, err := tables.Mapper("b")
	require.NoError(t, err)
	assert.Equal(t, "VALUE_ONE", mp.Map("v1"))
	assert.Equal(t, "east", mp.Map("E"))

	_, err = Load(strings.NewReader("standards: [a]\npatterns:\n  - pattern: '('\n"))
	if err == nil {
		t.Fatalf("expected a pattern compile error")
	}
}

const sample = `/NODE NAME(S)
/SCI_Smooth
/COORDINATE SYSTEM
/WGS 84 / UTM zone 32N (epsg:32632)
/ LINE_NO UTMX UTMY ELEVATION RHO_I_1 RHO_I_2 DEP_BOT_1 DEP_BOT_2
1 500000 6200000 10 100 200 5 15
1 500010 6200000 11 110 210 5 15
`

func TestNormalize(t *testing.T) {
	m, err := xyz.Parse(strings.NewReader(sample), xyz.Options{})
	require.NoError(t, err)

	Normalize(m, defaultMapper(t, DefaultStandard), nil)

	if diff := cmp.Diff([]string{"title", "x", "y", "topo"}, m.Flightlines.Names()); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"resistivity", "dep_bot"}, m.LayerData.Names()); diff != "" {
		t.Fatalf("layer data (-want +got):\n%s", diff)
	}
	v, ok := m.ModelInfo.Get("inversion_type")
	require.True(t, ok)
	assert.Equal(t, "SCI", v.String())
	v, _ = m.ModelInfo.Get("naming_standard")
	assert.Equal(t, DefaultStandard, v.String())
	assert.True(t, m.ModelInfo.Has("coordinate system"))
	assert.Equal(t, 110.0, m.LayerData.Get("resistivity").At(1, 0))
	require.NoError(t, m.Validate())
}

func TestNormalize_NoNodeNames(t *testing.T) {
	m, err := xyz.Parse(strings.NewReader("/ x y\n1 2\n"), xyz.Options{})
	require.NoError(t, err)
	Normalize(m, defaultMapper(t, DefaultStandard), nil)
	v, ok := m.ModelInfo.Get("inversion_type")
	require.True(t, ok)
	assert.True(t, v.IsNull())
}

func TestNormalize_CollisionLogged(t *testing.T) {
	m, err := xyz.Parse(strings.NewReader("/ utmx x y\n1 2 3\n"), xyz.Options{})
	require.NoError(t, err)
	core, logs := observer.New(zap.DebugLevel)

	Normalize(m, defaultMapper(t, DefaultStandard), zap.New(core))

	assert.Equal(t, []string{"x", "y"}, m.Flightlines.Names())
	assert.Equal(t, 2.0, m.Flightlines.Column("x").Float(0), "the later column wins")
	entries := logs.FilterMessage("source names collide, keeping the later").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "column", fields["kind"])
	assert.Equal(t, "x", fields["target"])
	assert.Equal(t, "utmx", fields["dropped"])
	assert.Equal(t, "x", fields["kept"])
}
