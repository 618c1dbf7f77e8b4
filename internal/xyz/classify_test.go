package xyz

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify_Grammars(t *testing.T) {
	cls, err := Classify([]string{
		"x", "rho_i[0]", "rho_i[1]", "dep_bot(1)", "dep_bot(2)", "thk_1", "thk_2", "dbdt6", "dbdt7", "dbdt8",
	}, ClassifyOptions{})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !cmp.Equal(cls.PerSounding, []string{"x"}) {
		t.Fatalf("per-sounding: %v", cls.PerSounding)
	}
	want := map[string]map[int]string{
		"rho_i":   {0: "rho_i[0]", 1: "rho_i[1]"},
		"dep_bot": {0: "dep_bot(1)", 1: "dep_bot(2)"},
		"thk":     {0: "thk_1", 1: "thk_2"},
		"dbdt":    {0: "dbdt6", 1: "dbdt7", 2: "dbdt8"},
	}
	got := map[string]map[int]string{}
	for _, g := range cls.Groups {
		got[g.Name] = g.Layers
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("groups (-want +got):\n%s", diff)
	}
}

func TestClassify_RebaseMinimumIsZero(t *testing.T) {
	cls, err := Classify([]string{"rho_3", "rho_5", "rho_7"}, ClassifyOptions{})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got := cls.Groups[0].Indices(); !cmp.Equal(got, []int{0, 2, 4}) {
		t.Fatalf("indices: %v", got)
	}

	cls, err = Classify([]string{"rho_3", "rho_5", "rho_7"}, ClassifyOptions{Compact: true})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got := cls.Groups[0].Indices(); !cmp.Equal(got, []int{0, 1, 2}) {
		t.Fatalf("compact indices: %v", got)
	}
}

func TestClassify_AmbiguityDemotion(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		layered bool
	}{
		{"lone separatorless column", []string{"misc1"}, false},
		{"two separatorless columns", []string{"misc1", "misc2"}, false},
		{"three separatorless columns", []string{"rho_i6", "rho_i7", "rho_i8"}, true},
		{"channel suffix", []string{"current_ch1", "current_ch2", "current_ch3"}, false},
		{"channel suffix upper case", []string{"Current_CH01", "Current_CH02", "Current_CH03"}, false},
		{"single separated column", []string{"gate_1"}, false},
		{"two separated columns", []string{"gate_1", "gate_2"}, true},
		{"separatorless joins separated group", []string{"rho_1", "rho2"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cls, err := Classify(tc.columns, ClassifyOptions{})
			if err != nil {
				t.Fatalf("classify: %v", err)
			}
			if layered := len(cls.Groups) > 0; layered != tc.layered {
				t.Fatalf("layered=%v want %v (per-sounding %v)", layered, tc.layered, cls.PerSounding)
			}
			if !tc.layered && !cmp.Equal(cls.PerSounding, tc.columns) {
				t.Fatalf("per-sounding order: %v", cls.PerSounding)
			}
		})
	}
}

func TestClassify_PreservesPerSoundingOrder(t *testing.T) {
	cls, err := Classify([]string{"a", "misc1", "rho_1", "b", "rho_2", "c"}, ClassifyOptions{})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !cmp.Equal(cls.PerSounding, []string{"a", "misc1", "b", "c"}) {
		t.Fatalf("per-sounding: %v", cls.PerSounding)
	}
}

func TestInferValue(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{"42", Int},
		{"-7", Int},
		{"4.5", Float},
		{"1e-5", Float},
		{".5", Float},
		{"1 2 3", Ints},
		{"1 2.5 3", Floats},
		{"SCI_Smooth", String},
		{"-", String},
		{"WGS 84", String},
		{"", String},
	}
	for _, tc := range tests {
		if got := InferValue(tc.in).Kind; got != tc.kind {
			t.Errorf("InferValue(%q) = %v, want %v", tc.in, got, tc.kind)
		}
	}
}

func TestFormatFloat(t *testing.T) {
	for in, want := range map[float64]string{5: "5.0", 0.25: "0.25", -3: "-3.0", 1e-5: "0.00001"} {
		if got := FormatFloat(in); got != want {
			t.Errorf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}
