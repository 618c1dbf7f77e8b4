package xyz

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/aemxyz/internal/alc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workbenchSample = `/ =====================
/DUMMY
/9999
/ =====================
/Number of gates for channel 1 is 3
/Gates for channel 1: 1.0e-5 2.0e-5 3.0e-5
/COORDINATE SYSTEM
/WGS 84 / UTM zone 32N (epsg:32632)
/NODE NAME(S)
/SCI_Smooth
/GATES
/1 2 3
/ LINE_NO UTMX UTMY ELEVATION RHO_I_1 RHO_I_2 RHO_I_3 DEP_BOT_1 DEP_BOT_2 MISC1
Line 100101
100101 500000.0 6200000.0 10.5 100.0 200.0 300.0 5.0 15.0 1
100101 500010.0 6200000.0 11.0 110.0 * 310.0 6.0 16.0 2
Line 100201
100201 500020.0 6200000.0 9999 120.0 220.0 320.0 7.0 9999 3
`

func parseString(t *testing.T, s string) *Model {
	t.Helper()
	m, err := Parse(strings.NewReader(s), Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return m
}

func TestParse_MinimalFile(t *testing.T) {
	m := parseString(t, "/title\n/Line1\n/ x y z\n1.0 2.0 3.0\n")

	if got := m.Flightlines.Names(); !cmp.Equal(got, []string{"x", "y", "z"}) {
		t.Fatalf("columns: %v", got)
	}
	if m.Rows() != 1 {
		t.Fatalf("rows: %d", m.Rows())
	}
	for name, want := range map[string]float64{"x": 1, "y": 2, "z": 3} {
		if got := m.Flightlines.Column(name).Float(0); got != want {
			t.Fatalf("%s: got %v want %v", name, got, want)
		}
	}
	keys := m.ModelInfo.Keys()
	if !cmp.Equal(keys, []string{"title", "source"}) {
		t.Fatalf("header keys: %v", keys)
	}
	title, _ := m.ModelInfo.Get("title")
	if title.Kind != String || title.Str != "Line1" {
		t.Fatalf("title: %+v", title)
	}
	if m.LayerData.Len() != 0 {
		t.Fatalf("expected no layer data, got %v", m.LayerData.Names())
	}
}

func TestParse_WorkbenchSample(t *testing.T) {
	m := parseString(t, workbenchSample)

	require.Equal(t, 3, m.Rows(), "line separator rows must be dropped")
	assert.Equal(t, []string{"line_no", "utmx", "utmy", "elevation", "misc1"}, m.Flightlines.Names())
	assert.Equal(t, []string{"rho_i", "dep_bot"}, m.LayerData.Names())

	gates, ok := m.ModelInfo.Get("number of gates for channel 1")
	require.True(t, ok)
	assert.Equal(t, Int, gates.Kind)
	assert.EqualValues(t, 3, gates.Int)

	times, ok := m.ModelInfo.Get("gate times for channel 1")
	require.True(t, ok)
	assert.Equal(t, Floats, times.Kind)
	assert.Equal(t, []float64{1e-5, 2e-5, 3e-5}, times.Floats)

	seq, _ := m.ModelInfo.Get("gates")
	assert.Equal(t, Ints, seq.Kind)

	cs, _ := m.ModelInfo.Get("coordinate system")
	assert.Equal(t, "WGS 84 / UTM zone 32N (epsg:32632)", cs.Str)

	assert.Equal(t, Integer, m.Flightlines.Column("line_no").Kind)
	assert.Equal(t, Integer, m.Flightlines.Column("misc1").Kind)
	assert.Equal(t, Real, m.Flightlines.Column("utmx").Kind)

	rho := m.LayerData.Get("rho_i")
	assert.Equal(t, []int{0, 1, 2}, rho.Layers())
	assert.True(t, math.IsNaN(rho.At(1, 1)), "* is missing")
}

func TestParse_DummySubstitution(t *testing.T) {
	m := parseString(t, workbenchSample)

	elev := m.Flightlines.Column("elevation")
	if !elev.IsMissing(2) {
		t.Fatalf("dummy in per-sounding column should be missing, got %v", elev.Num[2])
	}
	bot := m.LayerData.Get("dep_bot")
	if !math.IsNaN(bot.At(2, 1)) {
		t.Fatalf("dummy in layer column should be missing, got %v", bot.At(2, 1))
	}
}

func TestParse_LayerGapPreserved(t *testing.T) {
	m := parseString(t, "/ x rho_i1 rho_i3 rho_i5\n1 10 30 50\n2 11 31 51\n")
	l := m.LayerData.Get("rho_i")
	if l == nil {
		t.Fatalf("expected rho_i layer group, got %v", m.LayerData.Names())
	}
	if got := l.Layers(); !cmp.Equal(got, []int{0, 2, 4}) {
		t.Fatalf("layers: %v", got)
	}
}

func TestParse_CompactLayers(t *testing.T) {
	m, err := Parse(strings.NewReader("/ x rho_i1 rho_i3 rho_i5\n1 10 30 50\n"), Options{Classify: ClassifyOptions{Compact: true}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := m.LayerData.Get("rho_i").Layers(); !cmp.Equal(got, []int{0, 1, 2}) {
		t.Fatalf("layers: %v", got)
	}
}

func TestParse_PositionalColumns(t *testing.T) {
	m := parseString(t, "/title\n/no column line\n1 2 3\n4 5 6\n")
	if got := m.Flightlines.Names(); !cmp.Equal(got, []string{"0", "1", "2"}) {
		t.Fatalf("columns: %v", got)
	}
	if m.LayerData.Len() != 0 {
		t.Fatalf("positional columns must not form layer groups")
	}
}

func TestParse_LastColumnLineWins(t *testing.T) {
	m := parseString(t, "/ a b\n/ c d\n1 2\n")
	if got := m.Flightlines.Names(); !cmp.Equal(got, []string{"c", "d"}) {
		t.Fatalf("columns: %v", got)
	}
}

func TestParse_TextColumnAndShortRow(t *testing.T) {
	m := parseString(t, "/ date time val\n2021-01-01 12:00:00 1.5\n2021-01-02 13:00:00\n")
	if c := m.Flightlines.Column("date"); c.Kind != Text {
		t.Fatalf("date kind: %v", c.Kind)
	}
	if c := m.Flightlines.Column("val"); !c.IsMissing(1) {
		t.Fatalf("short row should pad with missing")
	}
}

func TestParse_PendingKeyAtEOF(t *testing.T) {
	_, err := Parse(strings.NewReader("/title\n/Line1\n/orphan\n"), Options{})
	var mh *MalformedHeaderError
	if !errors.As(err, &mh) {
		t.Fatalf("expected MalformedHeaderError, got %v", err)
	}
	if mh.Key != "orphan" || mh.Line != 3 {
		t.Fatalf("unexpected error detail: %+v", mh)
	}
}

func TestParse_DataBeforeValueLine(t *testing.T) {
	_, err := Parse(strings.NewReader("/ x y\n/title\n1 2\n"), Options{})
	var mh *MalformedHeaderError
	if !errors.As(err, &mh) {
		t.Fatalf("expected MalformedHeaderError, got %v", err)
	}
	if mh.Key != "title" || mh.Line != 2 || mh.Reason != "data starts before value line" {
		t.Fatalf("unexpected error detail: %+v", mh)
	}
}

func TestParse_ValueLineLooksLikeColumns(t *testing.T) {
	// A value line written as "/ value" is tokenized as column names too; a
	// later column line takes over again.
	m := parseString(t, "/title\n/ Survey A\n/ x y\n1 2\n")
	if m.Title() != "Survey A" {
		t.Fatalf("title: %q", m.Title())
	}
	if got := m.Flightlines.Names(); len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("columns: %v", got)
	}

	m = parseString(t, "/ x y\n/title\n/ Survey A\n1 2\n")
	if m.Title() != "Survey A" {
		t.Fatalf("title: %q", m.Title())
	}
	if got := m.Flightlines.Names(); len(got) != 2 || got[0] != "survey" || got[1] != "a" {
		t.Fatalf("the value line should replace the column names, got %v", got)
	}
}

func TestParse_ColumnCountMismatch(t *testing.T) {
	_, err := Parse(strings.NewReader("/ a b\n1 2\n1 2 3\n"), Options{})
	var cm *ColumnCountMismatchError
	if !errors.As(err, &cm) {
		t.Fatalf("expected ColumnCountMismatchError, got %v", err)
	}
	if cm.Line != 3 || cm.Want != 2 || cm.Got != 3 {
		t.Fatalf("unexpected error detail: %+v", cm)
	}
}

func TestParse_AmbiguousLayerColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("/ rho_1 rho[1] rho_2\n1 2 3\n"), Options{})
	var ae *AmbiguousLayerColumnError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AmbiguousLayerColumnError, got %v", err)
	}
	if ae.Group != "rho" || ae.Layer != 0 {
		t.Fatalf("unexpected error detail: %+v", ae)
	}
}

func TestParse_WithALC(t *testing.T) {
	a, err := alc.Parse(strings.NewReader("Version=2\nSystem=SkyTEM\nLine=1\nUTMX=2\nUTMY=3\nUnknownThing=4\n"))
	if err != nil {
		t.Fatalf("alc: %v", err)
	}
	m, err := Parse(strings.NewReader("/ l e n q\n1 2 3 4\n"), Options{ALC: a})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := m.FileMeta.Columns; !cmp.Equal(got, []string{"Line", "UTMX", "UTMY", "q"}) {
		t.Fatalf("file meta columns: %v", got)
	}
	if m.ALCInfo.System() != "SkyTEM" {
		t.Fatalf("system: %s", m.ALCInfo.System())
	}
}

func TestParseFile_RecordsSource(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "survey.xyz")
	if err := os.WriteFile(p, []byte("/ x y\n1 2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := ParseFile(p, Options{})
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if m.Source() != p || m.Title() != p {
		t.Fatalf("source/title: %q %q", m.Source(), m.Title())
	}
}

func TestParse_Windows1252(t *testing.T) {
	// 0xB0 is the degree sign in Windows-1252.
	in := []byte("/unit\n/\xb0C\n/ x\n1\n")
	m, err := Parse(bytes.NewReader(in), Options{Encoding: "windows-1252"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, _ := m.ModelInfo.Get("unit")
	if v.Str != "°C" {
		t.Fatalf("decoded unit: %q", v.Str)
	}
}

func assertModelsEqual(t *testing.T, a, b *Model) {
	t.Helper()
	require.Equal(t, a.Rows(), b.Rows())
	require.Equal(t, a.Flightlines.Names(), b.Flightlines.Names())
	for _, c := range a.Flightlines.Columns() {
		o := b.Flightlines.Column(c.Name)
		for r := 0; r < a.Rows(); r++ {
			if c.IsMissing(r) {
				assert.True(t, o.IsMissing(r), "%s[%d]", c.Name, r)
				continue
			}
			assert.Equal(t, c.Format(r, "*"), o.Format(r, "*"), "%s[%d]", c.Name, r)
		}
	}
	require.Equal(t, a.LayerData.Names(), b.LayerData.Names())
	for _, name := range a.LayerData.Names() {
		la, lb := a.LayerData.Get(name), b.LayerData.Get(name)
		require.Equal(t, la.Layers(), lb.Layers(), name)
		for i, v := range la.Data() {
			if math.IsNaN(v) {
				assert.True(t, math.IsNaN(lb.Data()[i]), "%s[%d]", name, i)
				continue
			}
			assert.Equal(t, v, lb.Data()[i], "%s[%d]", name, i)
		}
	}
	for _, k := range a.ModelInfo.Keys() {
		if k == "source" {
			continue
		}
		va, _ := a.ModelInfo.Get(k)
		vb, ok := b.ModelInfo.Get(k)
		assert.True(t, ok, "missing header %s", k)
		assert.True(t, va.Equal(vb), "header %s: %v vs %v", k, va, vb)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, naming := range []LayerNaming{UnderscoreNaming, BracketNaming} {
		m := parseString(t, workbenchSample)
		var buf bytes.Buffer
		if err := Dump(&buf, m, DumpOptions{LayerNaming: naming}); err != nil {
			t.Fatalf("dump: %v", err)
		}
		back := parseString(t, buf.String())
		assertModelsEqual(t, m, back)
	}
}

func TestRoundTrip_GapSurvives(t *testing.T) {
	m := parseString(t, "/ x rho_i1 rho_i3 rho_i5\n1 10 30 50\n")
	var buf bytes.Buffer
	if err := Dump(&buf, m, DumpOptions{}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(buf.String(), "/ x rho_i_01 rho_i_03 rho_i_05\n") {
		t.Fatalf("unexpected column line:\n%s", buf.String())
	}
	assertModelsEqual(t, m, parseString(t, buf.String()))
}

func TestDump_SkipsSourceAndUsesDummy(t *testing.T) {
	m := parseString(t, "/dummy\n/-9999\n/ x y\n1 *\n")
	var buf bytes.Buffer
	if err := Dump(&buf, m, DumpOptions{}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := "/dummy\n/-9999\n/ x y\n1 -9999\n"
	if buf.String() != want {
		t.Fatalf("dump:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestDumpFile_WritesALC(t *testing.T) {
	dir := t.TempDir()
	m := parseString(t, "/ x y\n1 2\n")
	m.Flightlines.Rename("x", "UTMX")
	m.Flightlines.Rename("y", "UTMY")
	xyzPath := filepath.Join(dir, "out.xyz")
	alcPath := filepath.Join(dir, "out.alc")
	if err := DumpFile(xyzPath, m, DumpOptions{}, alcPath); err != nil {
		t.Fatalf("dump file: %v", err)
	}
	b, err := os.ReadFile(alcPath)
	if err != nil {
		t.Fatalf("read alc: %v", err)
	}
	if !strings.Contains(string(b), "UTMX=                 1\n") || !strings.Contains(string(b), "System=               Unknown\n") {
		t.Fatalf("alc content:\n%s", b)
	}
}
