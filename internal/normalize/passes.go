package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/aemxyz/internal/projection"
	"github.com/KaramelBytes/aemxyz/internal/xyz"
)

func (e *engine) nans() {
	token := e.opt.NaNValue
	if token == "" {
		if v, ok := e.m.ModelInfo.Get(e.col("dummy")); ok && !v.IsNull() {
			token = strings.TrimSpace(v.String())
		}
	}
	if token == "" {
		token = "*"
	}
	num, err := strconv.ParseFloat(token, 64)
	numeric := err == nil && !math.IsNaN(num)

	for _, c := range e.m.Flightlines.Columns() {
		switch {
		case c.Kind == xyz.Text:
			for i, s := range c.Text {
				if s == token {
					c.Text[i] = ""
				}
			}
		case numeric:
			replace(c.Num, num, math.NaN())
		}
	}
	if !numeric {
		return
	}
	for _, name := range e.m.LayerData.Names() {
		replace(e.m.LayerData.Get(name).Data(), num, math.NaN())
	}
}

func replace(vals []float64, old, v float64) {
	for i, x := range vals {
		if x == old {
			vals[i] = v
		}
	}
}

func (e *engine) crs() {
	h := e.m.ModelInfo
	key := e.col("projection")
	if v, ok := h.Get(key); ok && !v.IsNull() {
		if f, ok := v.Number(); ok && !math.IsNaN(f) {
			h.Set(key, xyz.IntValue(int64(f)))
			return
		}
		text := strings.TrimSpace(v.String())
		if code, ok := projection.Resolve(text); ok {
			h.Set(key, xyz.IntValue(int64(code)))
			return
		}
		h.Set(key, xyz.NullValue())
		e.warn(&UnresolvedProjectionWarning{Text: text})
		return
	}
	text := ""
	if v, ok := h.Get("coordinate system"); ok && !v.IsNull() {
		text = strings.TrimSpace(v.String())
	}
	if code, ok := projection.Resolve(text); ok {
		h.Set(key, xyz.IntValue(int64(code)))
		return
	}
	h.Set(key, xyz.NullValue())
	e.warn(&UnresolvedProjectionWarning{Text: text})
}

func (e *engine) coordinates() {
	fl := e.m.Flightlines
	srcX, srcY := e.column("x"), e.column("y")
	code, resolved := e.m.Projection()
	if srcX == nil || srcY == nil {
		srcX, srcY = e.column("lon"), e.column("lat")
		if srcX == nil || srcY == nil {
			e.missing("x")
			return
		}
		code, resolved = projection.WGS84, true
		e.m.ModelInfo.Set(e.col("projection"), xyz.IntValue(projection.WGS84))
	}
	if !resolved {
		return
	}
	target := e.opt.ProjectCRS
	if target == 0 {
		target = code
	}

	xs, ys := srcX.Floats(), srcY.Floats()
	px, py, err := projection.Transform(code, target, xs, ys)
	if err != nil {
		e.warn(err)
		return
	}
	wx, wy, err := projection.Transform(code, projection.WebMercator, xs, ys)
	if err != nil {
		e.warn(err)
		return
	}
	lon, lat, err := projection.Transform(code, projection.WGS84, xs, ys)
	if err != nil {
		e.warn(err)
		return
	}
	if !fl.Has(e.col("y_orig")) {
		e.put(xyz.NewFloatColumn(e.col("x_orig"), xs))
		e.put(xyz.NewFloatColumn(e.col("y_orig"), ys))
	}
	e.put(xyz.NewFloatColumn(e.col("x"), px))
	e.put(xyz.NewFloatColumn(e.col("y"), py))
	e.put(xyz.NewFloatColumn(e.col("x_web"), wx))
	e.put(xyz.NewFloatColumn(e.col("y_web"), wy))
	e.put(xyz.NewFloatColumn(e.col("lon"), lon))
	e.put(xyz.NewFloatColumn(e.col("lat"), lat))
	e.m.ModelInfo.Set(e.col("projection"), xyz.IntValue(int64(target)))
}

// Timestamps are fractional days since this epoch.
var epoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	dateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02", "20060102", "01/02/2006", "02.01.2006", "02-01-2006"}
	timeLayouts = []string{"15:04:05", "15:04", "150405"}
)

func parseTimestamp(date, clock string) (time.Time, bool) {
	if clock == "" {
		for _, dl := range dateLayouts {
			if ts, err := time.Parse(dl, date); err == nil {
				return ts, true
			}
		}
		if ts, err := time.Parse(time.RFC3339Nano, date); err == nil {
			return ts, true
		}
		if ts, err := time.Parse("2006-01-02T15:04:05", date); err == nil {
			return ts, true
		}
		return time.Time{}, false
	}
	s := date + " " + clock
	for _, dl := range dateLayouts {
		for _, tl := range timeLayouts {
			if ts, err := time.Parse(dl+" "+tl, s); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func (e *engine) dates() {
	dc, tc := e.column("date"), e.column("time")
	if dc == nil {
		e.missing("date")
		return
	}
	if tc == nil {
		e.missing("time")
		return
	}
	out := make([]float64, e.m.Rows())
	bad := &UnparsedTimestampsWarning{}
	for r := range out {
		d := strings.TrimSpace(dc.Format(r, ""))
		t := strings.TrimSpace(tc.Format(r, ""))
		out[r] = math.NaN()
		if d == "" {
			continue
		}
		ts, ok := parseTimestamp(d, t)
		if !ok {
			if bad.Count == 0 {
				bad.First = strings.TrimSpace(d + " " + t)
			}
			bad.Count++
			continue
		}
		out[r] = ts.Sub(epoch).Seconds() / (24 * 60 * 60)
	}
	e.put(xyz.NewFloatColumn(e.col("timestamp"), out))
	if bad.Count > 0 {
		e.warn(bad)
	}
}

// xdist accumulates the distance between consecutive soundings of a line.
// A line that reappears later continues from its previous total.
func (e *engine) xdist() {
	title, x, y := e.column("title"), e.column("x"), e.column("y")
	for _, need := range []struct {
		c    *xyz.Column
		name string
	}{{title, "title"}, {x, "x"}, {y, "y"}} {
		if need.c == nil {
			e.missing(need.name)
			return
		}
	}
	sums := map[string]float64{}
	out := make([]float64, e.m.Rows())
	for r := range out {
		if title.IsMissing(r) {
			out[r] = math.NaN()
			continue
		}
		k := title.Key(r)
		step := 0.0
		if r > 0 && title.Key(r-1) == k {
			step = math.Hypot(x.Float(r)-x.Float(r-1), y.Float(r)-y.Float(r-1))
		}
		if math.IsNaN(step) {
			out[r] = math.NaN()
			continue
		}
		sums[k] += step
		out[r] = sums[k]
	}
	e.put(xyz.NewFloatColumn(e.col("xdist"), out))
}

func (e *engine) defaults() {
	n := e.m.Rows()
	for _, d := range []struct {
		name string
		v    float64
	}{{"doi_lower", e.opt.DOILower}, {"doi_upper", e.opt.DOIUpper}} {
		name := e.col(d.name)
		if e.m.Flightlines.Has(name) {
			continue
		}
		c := xyz.FullColumn(name, n, d.v)
		if d.v == math.Trunc(d.v) {
			c.Kind = xyz.Integer
		}
		e.put(c)
	}
	for _, name := range e.opt.RequiredColumns {
		name = e.col(name)
		if !e.m.Flightlines.Has(name) {
			e.put(xyz.FullColumn(name, n, math.NaN()))
		}
	}

	// Vendors often omit auxiliary parameters for the last layer.
	max := e.m.LayerData.MaxLayer()
	for _, name := range e.m.LayerData.Names() {
		l := e.m.LayerData.Get(name)
		for layer := l.MaxLayer() + 1; layer <= max; layer++ {
			l.AppendLayer(layer)
		}
	}
}
