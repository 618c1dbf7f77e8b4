package projection

import (
	"math"

	"github.com/golang/geo/s2"
)

// minSpan keeps degenerate extents (a single sounding) a valid loop.
const minSpan = 1e-6

// CoveringTokens returns the S2 cell tokens bounding a lon/lat box.
func CoveringTokens(minLon, minLat, maxLon, maxLat float64) []string {
	for _, v := range []float64{minLon, minLat, maxLon, maxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	}
	if maxLon-minLon < minSpan {
		minLon, maxLon = minLon-minSpan, maxLon+minSpan
	}
	if maxLat-minLat < minSpan {
		minLat, maxLat = minLat-minSpan, maxLat+minSpan
	}
	pts := []s2.Point{
		s2.PointFromLatLng(s2.LatLngFromDegrees(minLat, minLon)),
		s2.PointFromLatLng(s2.LatLngFromDegrees(minLat, maxLon)),
		s2.PointFromLatLng(s2.LatLngFromDegrees(maxLat, maxLon)),
		s2.PointFromLatLng(s2.LatLngFromDegrees(maxLat, minLon)),
	}
	loop := s2.LoopFromPoints(pts)
	var tokens []string
	for _, id := range loop.CellUnionBound() {
		tokens = append(tokens, id.ToToken())
	}
	return tokens
}

// Extent returns the finite min/max of xs and ys; ok is false when no pair
// is finite.
func Extent(xs, ys []float64) (minX, minY, maxX, maxY float64, ok bool) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for i := range xs {
		x, y := xs[i], ys[i]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		ok = true
	}
	return minX, minY, maxX, maxY, ok
}
