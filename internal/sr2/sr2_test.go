package sr2

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sample = `SkyTEM system response LM
1 512 3 2021 11 01 15 44 28 - 2021 11 01 15 52 10
-1.0e-06 0.0 0.5
0.0 1.0 1.0

1.0e-06 0.5 0.25
`

func TestParse(t *testing.T) {
	r, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := &Response{
		Header:      "SkyTEM system response LM",
		Channel:     1,
		Repetitions: 512,
		Datapoints:  3,
		BeginDate:   "2021-11-01",
		BeginTime:   "15:44:28",
		EndDate:     "2021-11-01",
		EndTime:     "15:52:10",
		Data:        [][]float64{{-1e-06, 0, 0.5}, {0, 1, 1}, {1e-06, 0.5, 0.25}},
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Fatalf("response (-want +got):\n%s", diff)
	}
}

func TestParse_ShortAcquisitionLine(t *testing.T) {
	r, err := Parse(strings.NewReader("hdr\n2 10 4 2021 1 2\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.BeginDate != "2021-1-2" || r.BeginTime != "" || r.EndDate != "" {
		t.Fatalf("unexpected dates: %+v", r)
	}
}

func TestParse_Errors(t *testing.T) {
	for name, in := range map[string]string{
		"no acquisition line": "hdr\n",
		"non-numeric channel": "hdr\nx 1 2\n",
		"bad matrix value":    "hdr\n1 1 1\n1.0 abc\n",
	} {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resp.sr2")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if len(r.Data) != 3 {
		t.Fatalf("rows: %d", len(r.Data))
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.sr2")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
