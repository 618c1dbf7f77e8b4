package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

const surveyXYZ = `/COORDINATE SYSTEM
/WGS 84 / UTM zone 32N (epsg:32632)
/ LINE_NO UTMX UTMY ELEVATION RHO_I_1 RHO_I_2 DEP_BOT_1
100101 500000 6200000 10 100 200 5
100101 500000 6200010 11 110 210 5
100201 500100 6200000 9 120 220 6
`

// resetFlags clears values bound by earlier invocations.
func resetFlags() {
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
	normOutput, normALC, normCRS, normStandard, normDumpALC, normLayerNaming = "", "", 0, "", "", ""
	normSurveyDir, normGEX, normResample = "", "", false
	convOutput, convALC, convLayerNaming = "", "", ""
	expFormat, expOutput, expGEX, expALC, expTolerance, expCRS, expAttrs = "geojson", "", "", "", 0, 0, nil
	expResample = false
	cfg = nil
}

// runCmd is a helper to execute the root command with args and return stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out.String()
}

func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := filepath.Join(home, "survey.xyz")
	if err := os.WriteFile(p, []byte(surveyXYZ), 0o644); err != nil {
		t.Fatalf("write survey: %v", err)
	}
	return p
}

func read(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestCLI_Normalize(t *testing.T) {
	in := setup(t)
	dir := filepath.Dir(in)
	out := filepath.Join(dir, "out.xyz")
	alcOut := filepath.Join(dir, "out.alc")

	stdout := runCmd(t, "normalize", in, "-o", out, "--dump-alc", alcOut)
	if !strings.Contains(stdout, "✓ Wrote 3 soundings") {
		t.Fatalf("unexpected output: %q", stdout)
	}
	body := read(t, out)
	for _, want := range []string{"/projection\n/32632\n", " resistivity_01 ", " dep_top_01 "} {
		if !strings.Contains(body, want) {
			t.Fatalf("normalized xyz lacks %q:\n%s", want, body)
		}
	}
	if !strings.Contains(read(t, alcOut), "Version=") {
		t.Fatalf("alc not written")
	}
}

func TestCLI_NormalizeSurveyDir(t *testing.T) {
	in := setup(t)
	dir := filepath.Dir(in)
	gexPath := filepath.Join(dir, "sys.gex")
	if err := os.WriteFile(gexPath, []byte("/sys\n[General]\nNumberOfTurnsLM=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	surveyDir := filepath.Join(dir, "normalized")

	stdout := runCmd(t, "normalize", in, "--survey-dir", surveyDir, "--gex", gexPath)
	if !strings.Contains(stdout, "✓ Wrote survey ") {
		t.Fatalf("unexpected output: %q", stdout)
	}
	for _, name := range []string{"survey.xyz", "survey.gex", "survey.alc", "survey.json"} {
		if _, err := os.Stat(filepath.Join(surveyDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	var man struct {
		ID        string `json:"id"`
		XYZ       string `json:"xyz"`
		Soundings int    `json:"soundings"`
		Lines     int    `json:"lines"`
	}
	if err := json.Unmarshal([]byte(read(t, filepath.Join(surveyDir, "survey.json"))), &man); err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if man.XYZ != "survey.xyz" || man.Soundings != 3 || man.Lines != 2 {
		t.Fatalf("unexpected manifest: %+v", man)
	}
	if !strings.Contains(read(t, filepath.Join(surveyDir, "survey.xyz")), " dep_top_01 ") {
		t.Fatalf("survey xyz is not normalized")
	}

	mp := filepath.Join(dir, "from-dir.msgpack")
	out := runCmd(t, "export", surveyDir, "--format", "msgpack", "-o", mp)
	if !strings.Contains(out, "Dataset: "+man.ID) {
		t.Fatalf("export did not reuse the survey id %s: %q", man.ID, out)
	}
}

func TestCLI_NormalizeResampleDepths(t *testing.T) {
	in := setup(t)
	dir := filepath.Dir(in)
	plain := filepath.Join(dir, "plain.xyz")
	resampled := filepath.Join(dir, "resampled.xyz")
	runCmd(t, "normalize", in, "-o", plain)
	runCmd(t, "normalize", in, "-o", resampled, "--resample-depths")
	if strings.Contains(read(t, plain), " resistivity_03 ") {
		t.Fatalf("plain output should keep two layers")
	}
	if !strings.Contains(read(t, resampled), " resistivity_03 ") {
		t.Fatalf("resampled output lacks the shared third layer:\n%s", read(t, resampled))
	}

	geo := filepath.Join(dir, "resampled.geojson")
	runCmd(t, "export", in, "--format", "geojson", "-o", geo, "--resample-depths")
	if !strings.Contains(read(t, geo), "FeatureCollection") {
		t.Fatalf("geojson output missing feature collection")
	}
}

func TestCLI_ConvertBracketNaming(t *testing.T) {
	in := setup(t)
	out := filepath.Join(filepath.Dir(in), "bracket.xyz")
	runCmd(t, "convert", in, "-o", out, "--layer-naming", "bracket")
	body := read(t, out)
	if !strings.Contains(body, "rho_i[0] rho_i[1]") {
		t.Fatalf("expected bracket layer names:\n%s", body)
	}
}

func TestCLI_ExportFormats(t *testing.T) {
	in := setup(t)
	dir := filepath.Dir(in)
	gexPath := filepath.Join(dir, "sys.gex")
	if err := os.WriteFile(gexPath, []byte("/sys\n[General]\nNumberOfTurnsLM=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	geo := filepath.Join(dir, "lines.geojson")
	runCmd(t, "export", in, "--format", "geojson", "-o", geo)
	if !strings.Contains(read(t, geo), "FeatureCollection") {
		t.Fatalf("geojson output missing feature collection")
	}

	vtk := filepath.Join(dir, "grid.vtk")
	runCmd(t, "export", in, "--format", "vtk", "-o", vtk)
	if !strings.HasPrefix(read(t, vtk), "# vtk DataFile Version 2.0\n") {
		t.Fatalf("vtk output missing header")
	}

	db := filepath.Join(dir, "model.sqlite")
	runCmd(t, "export", in, "--format", "sqlite", "-o", db)
	if _, err := os.Stat(db); err != nil {
		t.Fatalf("sqlite not written: %v", err)
	}

	mp := filepath.Join(dir, "model.msgpack")
	stdout := runCmd(t, "export", in, "--format", "msgpack", "-o", mp, "--gex", gexPath)
	if !strings.Contains(stdout, "Dataset: ") {
		t.Fatalf("expected dataset id, got %q", stdout)
	}
	summary := runCmd(t, "inspect", mp)
	if !strings.Contains(summary, "Dataset: ") || !strings.Contains(summary, "Soundings: 3") {
		t.Fatalf("unexpected inspect output:\n%s", summary)
	}
}

func TestCLI_ExportUnknownFormat(t *testing.T) {
	in := setup(t)
	resetFlags()
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"export", in, "--format", "shp", "-o", filepath.Join(filepath.Dir(in), "x.shp")})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

func TestCLI_Diff(t *testing.T) {
	in := setup(t)
	other := filepath.Join(filepath.Dir(in), "other.xyz")
	changed := strings.Replace(surveyXYZ, "500100 6200000 9", "500100 6200000 12", 1)
	if err := os.WriteFile(other, []byte(changed), 0o644); err != nil {
		t.Fatal(err)
	}
	out := runCmd(t, "diff", in, other)
	if !strings.Contains(out, "column elevation: 1 rows changed (rows [2])") {
		t.Fatalf("unexpected diff output:\n%s", out)
	}
	if same := runCmd(t, "diff", in, in); !strings.Contains(same, "No differences") {
		t.Fatalf("expected no differences, got %q", same)
	}
}

func TestCLI_DiffDroppedColumn(t *testing.T) {
	in := setup(t)
	other := filepath.Join(filepath.Dir(in), "other.xyz")
	dropped := `/COORDINATE SYSTEM
/WGS 84 / UTM zone 32N (epsg:32632)
/ LINE_NO UTMX UTMY RHO_I_1 RHO_I_2 DEP_BOT_1
100101 500000 6200000 100 200 5
100101 500000 6200010 110 210 5
100201 500100 6200000 120 220 6
`
	if err := os.WriteFile(other, []byte(dropped), 0o644); err != nil {
		t.Fatal(err)
	}
	out := runCmd(t, "diff", in, other)
	if !strings.Contains(out, "column elevation: removed") {
		t.Fatalf("unexpected diff output:\n%s", out)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	setup(t)
	runCmd(t, "config", "set", "layer_naming", "bracket")
	runCmd(t, "config", "set", "project_crs", "4326")
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "layer_naming: bracket") || !strings.Contains(out, "project_crs: 4326") {
		t.Fatalf("config not persisted:\n%s", out)
	}
}
