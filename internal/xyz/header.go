package xyz

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind tags the type of a header value.
type Kind int

const (
	Null Kind = iota
	String
	Int
	Float
	Ints
	Floats
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Ints:
		return "ints"
	case Floats:
		return "floats"
	default:
		return "null"
	}
}

// Value is a typed header value.
type Value struct {
	Kind   Kind
	Str    string
	Int    int64
	Float  float64
	Ints   []int64
	Floats []float64
}

func NullValue() Value { return Value{} }
func StringValue(s string) Value { return Value{Kind: String, Str: s} }
func IntValue(i int64) Value { return Value{Kind: Int, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: Float, Float: f} }
func IntsValue(v []int64) Value { return Value{Kind: Ints, Ints: v} }
func FloatsValue(v []float64) Value { return Value{Kind: Floats, Floats: v} }

// IsNull reports whether the value is the null value.
func (v Value) IsNull() bool { return v.Kind == Null }

// Number returns the value as a float when it is a numeric scalar.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case Int:
		return float64(v.Int), true
	case Float:
		return v.Float, true
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String renders the value the way it is written back to a header line.
// Sequences are space-joined; null renders as "None".
func (v Value) String() string {
	switch v.Kind {
	case String:
		return v.Str
	case Int:
		return strconv.FormatInt(v.Int, 10)
	case Float:
		return FormatFloat(v.Float)
	case Ints:
		parts := make([]string, len(v.Ints))
		for i, n := range v.Ints {
			parts[i] = strconv.FormatInt(n, 10)
		}
		return strings.Join(parts, " ")
	case Floats:
		parts := make([]string, len(v.Floats))
		for i, f := range v.Floats {
			parts[i] = FormatFloat(f)
		}
		return strings.Join(parts, " ")
	}
	return "None"
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	out := v
	if v.Ints != nil {
		out.Ints = append([]int64(nil), v.Ints...)
	}
	if v.Floats != nil {
		out.Floats = append([]float64(nil), v.Floats...)
	}
	return out
}

// Equal compares two values by kind and content.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case String:
		return v.Str == o.Str
	case Int:
		return v.Int == o.Int
	case Float:
		return v.Float == o.Float || (math.IsNaN(v.Float) && math.IsNaN(o.Float))
	case Ints:
		if len(v.Ints) != len(o.Ints) {
			return false
		}
		for i := range v.Ints {
			if v.Ints[i] != o.Ints[i] {
				return false
			}
		}
	case Floats:
		if len(v.Floats) != len(o.Floats) {
			return false
		}
		for i := range v.Floats {
			if v.Floats[i] != o.Floats[i] {
				return false
			}
		}
	}
	return true
}

var (
	reInt   = regexp.MustCompile(`^[-+]?[0-9]+$`)
	reFloat = regexp.MustCompile(`^[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?$`)
)

// InferValue classifies a raw header string as integer, float, integer
// sequence, float sequence or string, in that order.
func InferValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return StringValue(raw)
	}
	if reInt.MatchString(s) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return IntValue(n)
		}
	}
	if reFloat.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return FloatValue(f)
		}
	}
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return StringValue(raw)
	}
	if ints, ok := parseInts(fields); ok {
		return IntsValue(ints)
	}
	if floats, ok := parseFloats(fields); ok {
		return FloatsValue(floats)
	}
	return StringValue(raw)
}

func parseInts(fields []string) ([]int64, bool) {
	out := make([]int64, len(fields))
	for i, f := range fields {
		if !reInt.MatchString(f) {
			return nil, false
		}
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func parseFloats(fields []string) ([]float64, bool) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		if !reFloat.MatchString(f) {
			return nil, false
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// FormatFloat renders a float so that it reads back as a float: integral
// values keep a trailing ".0" and infinities are written as inf/-inf.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Header is an insertion-ordered map of header keys to typed values.
type Header struct {
	keys []string
	vals map[string]Value
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{vals: make(map[string]Value)}
}

func (h *Header) Len() int { return len(h.keys) }

// Keys returns the keys in insertion order.
func (h *Header) Keys() []string {
	return append([]string(nil), h.keys...)
}

func (h *Header) Get(key string) (Value, bool) {
	v, ok := h.vals[key]
	return v, ok
}

func (h *Header) Has(key string) bool {
	_, ok := h.vals[key]
	return ok
}

// Set assigns a value. An existing key keeps its position.
func (h *Header) Set(key string, v Value) {
	if _, ok := h.vals[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.vals[key] = v
}

func (h *Header) Delete(key string) {
	if _, ok := h.vals[key]; !ok {
		return
	}
	delete(h.vals, key)
	for i, k := range h.keys {
		if k == key {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy.
func (h *Header) Clone() *Header {
	out := NewHeader()
	for _, k := range h.keys {
		out.Set(k, h.vals[k].Clone())
	}
	return out
}
