package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/KaramelBytes/aemxyz/internal/xyz"
)

// maxHalfWidth caps the distance a sounding reaches towards its neighbours.
const maxHalfWidth = 50.0

// DefaultVTKAttributes are the cell scalars written when none are requested.
var DefaultVTKAttributes = []string{
	"resistivity", "line_id", "title", "x", "y", "topo", "dep_top", "dep_bot",
	"tx_alt", "invalt", "invaltstd", "deltaalt", "numdata", "resdata",
	"restotal", "doi_upper", "doi_lower", "xdist", "doi_layer",
}

// ErrNoDepths means the model has no dep_bot layer table.
var ErrNoDepths = errors.New("model has no dep_bot layer table")

// VTKOptions controls VTK output.
type VTKOptions struct {
	// Attributes lists the cell scalars; missing or non-numeric names are skipped.
	Attributes []string
}

type vtkCell struct {
	row, pos int
	corners  [4][3]float64
}

// sounding carries the left and right edge of one sounding along its line.
type sounding struct {
	xl, yl, zl float64
	xr, yr, zr float64
}

// alongLine returns the cumulative along-line distance. Distances restart at
// zero where the line identifier changes and resume the running total of a
// line that appears again later.
func alongLine(m *xyz.Model, xs, ys []float64) []float64 {
	ids := m.Flightlines.Column(m.LineIDColumn())
	key := func(r int) string {
		if ids == nil {
			return ""
		}
		return ids.Key(r)
	}
	totals := map[string]float64{}
	out := make([]float64, len(xs))
	for r := range xs {
		step := 0.0
		if r > 0 && key(r) == key(r-1) {
			step = math.Hypot(xs[r]-xs[r-1], ys[r]-ys[r-1])
		}
		totals[key(r)] += step
		out[r] = totals[key(r)]
	}
	return out
}

// interp evaluates the piecewise linear function through (xs, ys) at t,
// clamping outside the sampled range.
func interp(xs, ys []float64, t float64) float64 {
	n := len(xs)
	if t <= xs[0] {
		return ys[0]
	}
	if t >= xs[n-1] {
		return ys[n-1]
	}
	i := sort.SearchFloat64s(xs, t)
	if xs[i] == t || xs[i] == xs[i-1] {
		return ys[i]
	}
	f := (t - xs[i-1]) / (xs[i] - xs[i-1])
	return ys[i-1] + f*(ys[i]-ys[i-1])
}

func soundings(m *xyz.Model, xs, ys, zs, dist []float64) []sounding {
	out := make([]sounding, len(xs))
	for _, line := range m.Lines() {
		rows := line.Rows
		ld := make([]float64, len(rows))
		lx := make([]float64, len(rows))
		ly := make([]float64, len(rows))
		lz := make([]float64, len(rows))
		for i, r := range rows {
			ld[i], lx[i], ly[i], lz[i] = dist[r], xs[r], ys[r], zs[r]
		}
		for i, r := range rows {
			prev, next := ld[i], ld[i]
			if i > 0 && rows[i-1] == r-1 {
				prev = ld[i-1]
			}
			if i+1 < len(rows) && rows[i+1] == r+1 {
				next = ld[i+1]
			}
			prev = math.Max(prev, ld[i]-maxHalfWidth)
			next = math.Min(next, ld[i]+maxHalfWidth)
			left, right := (prev+ld[i])/2, (ld[i]+next)/2
			out[r] = sounding{
				xl: interp(ld, lx, left), yl: interp(ld, ly, left), zl: interp(ld, lz, left),
				xr: interp(ld, lx, right), yr: interp(ld, ly, right), zr: interp(ld, lz, right),
			}
		}
	}
	return out
}

func depthTop(bot *xyz.LayerTable) *xyz.LayerTable {
	top := bot.Like()
	for r := 0; r < bot.Rows(); r++ {
		if bot.NumLayers() > 0 {
			top.Set(r, 0, 0)
		}
		for p := 1; p < bot.NumLayers(); p++ {
			top.Set(r, p, bot.At(r, p-1))
		}
	}
	return top
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func buildCells(m *xyz.Model) ([]vtkCell, error) {
	bot := m.LayerData.Get("dep_bot")
	if bot == nil {
		return nil, ErrNoDepths
	}
	top := m.LayerData.Get("dep_top")
	if top == nil {
		top = depthTop(bot)
	}
	fl := m.Flightlines
	xc, yc, zc := fl.Column(m.XColumn()), fl.Column(m.YColumn()), fl.Column(m.ZColumn())
	if xc == nil || yc == nil || zc == nil {
		return nil, fmt.Errorf("vtk needs x, y and topo columns: %w", ErrNoCoordinates)
	}
	xs, ys, zs := xc.Floats(), yc.Floats(), zc.Floats()
	var dist []float64
	if c := fl.Column("xdist"); c != nil {
		dist = c.Floats()
	} else {
		dist = alongLine(m, xs, ys)
	}
	edges := soundings(m, xs, ys, zs, dist)

	var cells []vtkCell
	for r := 0; r < m.Rows(); r++ {
		e := edges[r]
		for p, layer := range bot.Layers() {
			db := bot.At(r, p)
			dt := math.NaN()
			if tp, ok := top.Pos(layer); ok {
				dt = top.At(r, tp)
			}
			c := vtkCell{row: r, pos: p, corners: [4][3]float64{
				{e.xl, e.yl, e.zl - dt},
				{e.xl, e.yl, e.zl - db},
				{e.xr, e.yr, e.zr - db},
				{e.xr, e.yr, e.zr - dt},
			}}
			ok := true
			for _, v := range c.corners {
				ok = ok && finite(v[0], v[1], v[2])
			}
			if ok {
				cells = append(cells, c)
			}
		}
	}
	return cells, nil
}

type pointKey [3]float64

func roundPoint(p [3]float64) pointKey {
	var k pointKey
	for i, v := range p {
		k[i] = math.Round(v*1000) / 1000
	}
	return k
}

// dedupe returns the sorted distinct points and each cell's corner indices.
func dedupe(cells []vtkCell) ([]pointKey, [][4]int) {
	seen := map[pointKey]bool{}
	var pts []pointKey
	for _, c := range cells {
		for _, v := range c.corners {
			k := roundPoint(v)
			if !seen[k] {
				seen[k] = true
				pts = append(pts, k)
			}
		}
	}
	sort.Slice(pts, func(i, j int) bool {
		for d := 0; d < 3; d++ {
			if pts[i][d] != pts[j][d] {
				return pts[i][d] < pts[j][d]
			}
		}
		return false
	})
	index := make(map[pointKey]int, len(pts))
	for i, p := range pts {
		index[p] = i
	}
	idx := make([][4]int, len(cells))
	for i, c := range cells {
		for j, v := range c.corners {
			idx[i][j] = index[roundPoint(v)]
		}
	}
	return pts, idx
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, name)
}

// cellValues resolves attr per cell from a layer table, or from a numeric
// per-sounding column repeated down the layers.
func cellValues(m *xyz.Model, cells []vtkCell, attr string) ([]float64, bool) {
	out := make([]float64, len(cells))
	if l := m.LayerData.Get(attr); l != nil {
		layers := m.LayerData.Get("dep_bot").Layers()
		for i, c := range cells {
			out[i] = math.NaN()
			if p, ok := l.Pos(layers[c.pos]); ok {
				out[i] = l.At(c.row, p)
			}
		}
		return out, true
	}
	col := m.Flightlines.Column(attr)
	if col == nil || !col.IsNumeric() {
		return nil, false
	}
	for i, c := range cells {
		out[i] = col.Num[c.row]
	}
	return out, true
}

func formatScalar(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%f", v)
}

// VTK writes m as a legacy ASCII unstructured grid of quads, one per
// sounding layer, hanging below the terrain along each flight line.
func VTK(w io.Writer, m *xyz.Model, opt VTKOptions) error {
	cells, err := buildCells(m)
	if err != nil {
		return err
	}
	pts, idx := dedupe(cells)
	attrs := opt.Attributes
	if len(attrs) == 0 {
		attrs = DefaultVTKAttributes
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# vtk DataFile Version 2.0")
	fmt.Fprintf(bw, "AEM grid export of %s\n", m.Title())
	fmt.Fprintln(bw, "ASCII")
	fmt.Fprintln(bw, "DATASET UNSTRUCTURED_GRID")
	fmt.Fprintf(bw, "POINTS %d float\n", len(pts))
	for _, p := range pts {
		fmt.Fprintf(bw, "%.2f %.2f %.2f\n", p[0], p[1], p[2])
	}
	fmt.Fprintf(bw, "CELLS %d %d\n", len(idx), len(idx)*5)
	for _, c := range idx {
		fmt.Fprintf(bw, "4 %d %d %d %d\n", c[0], c[1], c[2], c[3])
	}
	fmt.Fprintf(bw, "CELL_TYPES %d\n", len(idx))
	for range idx {
		fmt.Fprintln(bw, "9")
	}
	fmt.Fprintf(bw, "CELL_DATA %d\n", len(idx))
	for _, attr := range attrs {
		vals, ok := cellValues(m, cells, attr)
		if !ok {
			continue
		}
		fmt.Fprintf(bw, "SCALARS %s float 1\n", sanitize(attr))
		fmt.Fprintln(bw, "LOOKUP_TABLE default")
		for _, v := range vals {
			fmt.Fprintln(bw, formatScalar(v))
		}
	}
	return bw.Flush()
}
