// Package export writes normalized models to presentation and interchange
// formats: GeoJSON, msgpack, legacy VTK and SQLite.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/KaramelBytes/aemxyz/internal/projection"
	"github.com/KaramelBytes/aemxyz/internal/xyz"
	geo "github.com/paulmach/go.geo"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// ErrNoCoordinates means the model has no usable coordinate columns.
var ErrNoCoordinates = errors.New("model has no web mercator, lon/lat or projected coordinates")

// GeoJSONOptions controls GeoJSON output.
type GeoJSONOptions struct {
	// Tolerance simplifies each line with Douglas-Peucker, in web mercator meters.
	Tolerance float64
}

// webMercator returns EPSG:3857 coordinates for every sounding.
func webMercator(m *xyz.Model) ([]float64, []float64, error) {
	fl := m.Flightlines
	if x, y := fl.Column("x_web"), fl.Column("y_web"); x != nil && y != nil {
		return x.Floats(), y.Floats(), nil
	}
	if lon, lat := fl.Column("lon"), fl.Column("lat"); lon != nil && lat != nil {
		return projection.Transform(projection.WGS84, projection.WebMercator, lon.Floats(), lat.Floats())
	}
	code, ok := m.Projection()
	x, y := fl.Column(m.XColumn()), fl.Column(m.YColumn())
	if ok && x != nil && y != nil {
		return projection.Transform(code, projection.WebMercator, x.Floats(), y.Floats())
	}
	return nil, nil, ErrNoCoordinates
}

// lineLess orders line identifiers numerically when both parse as numbers.
func lineLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return a < b
}

// firstValues returns, per column, the first non-missing value of the rows.
func firstValues(m *xyz.Model, rows []int) map[string]any {
	props := map[string]any{}
	for _, c := range m.Flightlines.Columns() {
		for _, r := range rows {
			if c.IsMissing(r) {
				continue
			}
			switch c.Kind {
			case xyz.Text:
				props[c.Name] = c.Text[r]
			case xyz.Integer:
				props[c.Name] = int64(c.Num[r])
			default:
				if math.IsInf(c.Num[r], 0) {
					continue
				}
				props[c.Name] = c.Num[r]
			}
			break
		}
	}
	return props
}

// geodesicLength is the haversine length in meters of a web mercator line.
func geodesicLength(ls orb.LineString) (float64, error) {
	mx := make([]float64, len(ls))
	my := make([]float64, len(ls))
	for i, p := range ls {
		mx[i], my[i] = p[0], p[1]
	}
	lon, lat, err := projection.Transform(projection.WebMercator, projection.WGS84, mx, my)
	if err != nil {
		return 0, err
	}
	path := geo.NewPathPreallocate(0, len(lon))
	for i := range lon {
		path.Push(geo.NewPoint(lon[i], lat[i]))
	}
	return path.GeoDistance(true), nil
}

// FeatureCollection builds one LineString feature per flight line with
// lon/lat coordinates. Lines with a single sounding become points.
func FeatureCollection(m *xyz.Model, opt GeoJSONOptions) (*geojson.FeatureCollection, error) {
	xs, ys, err := webMercator(m)
	if err != nil {
		return nil, err
	}
	lines := m.Lines()
	sort.SliceStable(lines, func(i, j int) bool { return lineLess(lines[i].ID, lines[j].ID) })

	fc := geojson.NewFeatureCollection()
	for _, line := range lines {
		ls := make(orb.LineString, 0, len(line.Rows))
		for _, r := range line.Rows {
			if math.IsNaN(xs[r]) || math.IsNaN(ys[r]) {
				continue
			}
			ls = append(ls, orb.Point{xs[r], ys[r]})
		}
		if len(ls) == 0 {
			continue
		}
		length, err := geodesicLength(ls)
		if err != nil {
			return nil, err
		}
		if opt.Tolerance > 0 && len(ls) > 2 {
			ls = simplify.DouglasPeucker(opt.Tolerance).LineString(ls)
		}
		mx := make([]float64, len(ls))
		my := make([]float64, len(ls))
		for i, p := range ls {
			mx[i], my[i] = p[0], p[1]
		}
		lon, lat, err := projection.Transform(projection.WebMercator, projection.WGS84, mx, my)
		if err != nil {
			return nil, err
		}
		coords := make([][]float64, len(lon))
		for i := range lon {
			coords[i] = []float64{lon[i], lat[i]}
		}

		var f *geojson.Feature
		if len(coords) == 1 {
			f = geojson.NewPointFeature(coords[0])
		} else {
			f = geojson.NewLineStringFeature(coords)
		}
		for k, v := range firstValues(m, line.Rows) {
			f.SetProperty(k, v)
		}
		minLon, minLat, maxLon, maxLat, _ := projection.Extent(lon, lat)
		f.SetProperty("length_m", length)
		f.SetProperty("line_id", line.ID)
		f.SetProperty("soundings", len(line.Rows))
		f.SetProperty("s2_cells", projection.CoveringTokens(minLon, minLat, maxLon, maxLat))
		fc.AddFeature(f)
	}
	return fc, nil
}

// GeoJSON writes the feature collection of m to w.
func GeoJSON(w io.Writer, m *xyz.Model, opt GeoJSONOptions) error {
	b, err := GeoJSONBytes(m, opt)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// GeoJSONBytes returns the encoded feature collection of m.
func GeoJSONBytes(m *xyz.Model, opt GeoJSONOptions) ([]byte, error) {
	fc, err := FeatureCollection(m, opt)
	if err != nil {
		return nil, err
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return b, nil
}
