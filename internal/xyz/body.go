package xyz

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MissingTokens is the built-in missing-value vocabulary of the body reader.
var MissingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan", "1.#IND", "1.#QNAN", "<NA>",
	"N/A", "NA", "NULL", "NaN", "n/a", "nan", "null", "*",
}

var reSep = regexp.MustCompile(`,?\s+`)

// lineSeparators mark rows that split flight lines in some exports.
var lineSeparators = map[string]bool{"Line": true, "Tie": true}

// readBody reads the data rows. An empty columns slice means positional names
// taken from the width of the first row.
func readBody(lr *lineReader, columns []string, dummy string) (*Table, error) {
	missing := make(map[string]bool, len(MissingTokens)+1)
	for _, tok := range MissingTokens {
		missing[tok] = true
	}
	if dummy != "" {
		missing[dummy] = true
	}

	width := len(columns)
	var raw [][]string
	for {
		line, ok, err := lr.next()
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if !ok {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "/") {
			continue
		}
		tokens := reSep.Split(trimmed, -1)
		if lineSeparators[tokens[0]] {
			continue
		}
		if width == 0 {
			width = len(tokens)
		}
		if raw == nil {
			raw = make([][]string, width)
		}
		if len(tokens) > width {
			return nil, &ColumnCountMismatchError{Line: lr.n, Want: width, Got: len(tokens)}
		}
		for i := 0; i < width; i++ {
			tok := ""
			if i < len(tokens) {
				tok = tokens[i]
			}
			if missing[tok] {
				tok = ""
			}
			raw[i] = append(raw[i], tok)
		}
	}

	if len(columns) == 0 {
		columns = make([]string, width)
		for i := range columns {
			columns[i] = strconv.Itoa(i)
		}
	}
	rows := 0
	if len(raw) > 0 {
		rows = len(raw[0])
	}
	t := NewTable(rows)
	for i, name := range columns {
		var vals []string
		if raw != nil {
			vals = raw[i]
		}
		if vals == nil {
			vals = make([]string, rows)
		}
		if err := t.Put(InferColumn(name, vals)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// InferColumn types a column of raw tokens ("" is missing) as Integer, Real
// or Text, the first kind that every present token satisfies.
func InferColumn(name string, vals []string) *Column {
	if nums, ok := parseColumn(vals, isIntToken); ok {
		present := false
		for _, v := range vals {
			if v != "" {
				present = true
				break
			}
		}
		if present {
			return NewIntColumn(name, nums)
		}
		return NewFloatColumn(name, nums)
	}
	if nums, ok := parseColumn(vals, isFloatToken); ok {
		return NewFloatColumn(name, nums)
	}
	return NewTextColumn(name, append([]string(nil), vals...))
}

func parseColumn(vals []string, accept func(string) bool) ([]float64, bool) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if v == "" {
			out[i] = math.NaN()
			continue
		}
		if !accept(v) {
			return nil, false
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func isIntToken(s string) bool { return reInt.MatchString(s) }

func isFloatToken(s string) bool {
	if reFloat.MatchString(s) {
		return true
	}
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "inf", "infinity":
		return true
	}
	return false
}
