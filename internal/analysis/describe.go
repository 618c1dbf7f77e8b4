// Package analysis summarizes a survey model for terminal output.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/aemxyz/internal/projection"
	"github.com/KaramelBytes/aemxyz/internal/xyz"
)

// Stats mirrors the usual describe() columns.
type Stats struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// HeaderEntry is one model_info key and its rendered value.
type HeaderEntry struct {
	Key   string
	Value string
}

// Summary is a markdown-friendly description of a model.
type Summary struct {
	Title  string
	Header []HeaderEntry
	// Soundings is the row count; Flightlines is -1 without a line id column.
	Soundings   int
	Flightlines int
	// MaxDepth is the deepest finite dep_bot, NaN when unknown.
	MaxDepth    float64
	Projection  string
	XColumn     string
	YColumn     string
	X, Y        [2]float64
	Resistivity *Stats
	LayerData   []string
	LayerParams []string
	// S2Cells covers the lon/lat extent of all soundings.
	S2Cells []string
}

// Describe builds the summary of m.
func Describe(m *xyz.Model) *Summary {
	s := &Summary{
		Title:       m.Title(),
		Soundings:   m.Rows(),
		Flightlines: -1,
		MaxDepth:    math.NaN(),
		Projection:  "None",
		XColumn:     m.XColumn(),
		YColumn:     m.YColumn(),
		X:           [2]float64{math.NaN(), math.NaN()},
		Y:           [2]float64{math.NaN(), math.NaN()},
	}
	for _, k := range m.ModelInfo.Keys() {
		v, _ := m.ModelInfo.Get(k)
		s.Header = append(s.Header, HeaderEntry{Key: k, Value: v.String()})
	}
	if m.Flightlines.Has(m.LineIDColumn()) {
		s.Flightlines = len(m.Lines())
	}
	if bot := m.LayerData.Get("dep_bot"); bot != nil {
		for _, v := range bot.Data() {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if math.IsNaN(s.MaxDepth) || v > s.MaxDepth {
				s.MaxDepth = v
			}
		}
	}
	code, ok := m.Projection()
	if ok {
		s.Projection = fmt.Sprint(code)
	}
	xc, yc := m.Flightlines.Column(s.XColumn), m.Flightlines.Column(s.YColumn)
	if xc != nil && yc != nil {
		if x0, y0, x1, y1, ok := projection.Extent(xc.Floats(), yc.Floats()); ok {
			s.X, s.Y = [2]float64{x0, x1}, [2]float64{y0, y1}
		}
	}
	if rho := m.LayerData.Get("resistivity"); rho != nil {
		s.Resistivity = describe(rho.Data())
	}
	params := m.LayerParams()
	isParam := map[string]bool{}
	for _, n := range params.Names {
		isParam[n] = true
	}
	for _, n := range m.LayerData.Names() {
		if !isParam[n] {
			s.LayerData = append(s.LayerData, n)
		}
	}
	s.LayerParams = params.Names
	s.S2Cells = cover(m, code, ok)
	return s
}

func cover(m *xyz.Model, code int, hasCRS bool) []string {
	fl := m.Flightlines
	var lon, lat []float64
	switch {
	case fl.Has("lon") && fl.Has("lat"):
		lon, lat = fl.Column("lon").Floats(), fl.Column("lat").Floats()
	case hasCRS && fl.Has(m.XColumn()) && fl.Has(m.YColumn()):
		var err error
		lon, lat, err = projection.Transform(code, projection.WGS84, fl.Column(m.XColumn()).Floats(), fl.Column(m.YColumn()).Floats())
		if err != nil {
			return nil
		}
	default:
		return nil
	}
	x0, y0, x1, y1, ok := projection.Extent(lon, lat)
	if !ok {
		return nil
	}
	return projection.CoveringTokens(x0, y0, x1, y1)
}

// describe computes count, mean and sample std via Welford, and
// linearly interpolated quantiles over the finite values.
func describe(vals []float64) *Stats {
	st := &Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var finite []float64
	var mean, m2 float64
	for _, x := range vals {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		finite = append(finite, x)
		st.Count++
		delta := x - mean
		mean += delta / float64(st.Count)
		m2 += delta * (x - mean)
	}
	if st.Count == 0 {
		nan := math.NaN()
		return &Stats{Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan}
	}
	st.Mean = mean
	st.Std = math.NaN()
	if st.Count > 1 {
		st.Std = math.Sqrt(m2 / float64(st.Count-1))
	}
	sort.Float64s(finite)
	st.Min, st.Max = finite[0], finite[len(finite)-1]
	st.Q25 = quantile(finite, 0.25)
	st.Median = quantile(finite, 0.5)
	st.Q75 = quantile(finite, 0.75)
	return st
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// Markdown renders the summary as plain text sections.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString(s.Title + "\n")
	b.WriteString("--------------------------------\n")
	b.WriteString("[HEADER]\n")
	for _, h := range s.Header {
		b.WriteString(fmt.Sprintf("- %s: %s\n", h.Key, safeVal(h.Value)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Soundings: %d\n", s.Soundings))
	if s.Flightlines >= 0 {
		b.WriteString(fmt.Sprintf("Flightlines: %d\n", s.Flightlines))
	} else {
		b.WriteString("No line_id column to distinguish lines.\n")
	}
	if math.IsNaN(s.MaxDepth) {
		b.WriteString("Maximum layer depth: None\n")
	} else {
		b.WriteString(fmt.Sprintf("Maximum layer depth: %g\n", s.MaxDepth))
	}
	b.WriteString(fmt.Sprintf("Projection: %s\n", s.Projection))
	if s.XColumn != "" && s.YColumn != "" {
		b.WriteString(fmt.Sprintf("%s: min %.4f, max %.4f\n", s.XColumn, s.X[0], s.X[1]))
		b.WriteString(fmt.Sprintf("%s: min %.4f, max %.4f\n", s.YColumn, s.Y[0], s.Y[1]))
	}
	if r := s.Resistivity; r != nil {
		b.WriteString("\n[RESISTIVITY]\n")
		b.WriteString(fmt.Sprintf("count %d, mean %.4g, std %.4g, min %.4g, 25%% %.4g, 50%% %.4g, 75%% %.4g, max %.4g\n",
			r.Count, r.Mean, r.Std, r.Min, r.Q25, r.Median, r.Q75, r.Max))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Layer data: %s\n", strings.Join(s.LayerData, ", ")))
	b.WriteString(fmt.Sprintf("Layer params: %s\n", strings.Join(s.LayerParams, ", ")))
	if len(s.S2Cells) > 0 {
		b.WriteString(fmt.Sprintf("S2 cells: %s\n", strings.Join(s.S2Cells, " ")))
	}
	return b.String()
}
