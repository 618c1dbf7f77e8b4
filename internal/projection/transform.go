package projection

import (
	"fmt"
	"math"

	"github.com/wroge/wgs84"
)

// Transform converts coordinate arrays from one EPSG code to another. NaN
// inputs stay NaN. The inputs are not modified.
func Transform(from, to int, xs, ys []float64) ([]float64, []float64, error) {
	if len(xs) != len(ys) {
		return nil, nil, fmt.Errorf("transform: %d x values, %d y values", len(xs), len(ys))
	}
	src, ok := lookup(from)
	if !ok {
		return nil, nil, fmt.Errorf("%w: EPSG:%d", ErrUnsupportedCRS, from)
	}
	dst, ok := lookup(to)
	if !ok {
		return nil, nil, fmt.Errorf("%w: EPSG:%d", ErrUnsupportedCRS, to)
	}
	fn := wgs84.Transform(src, dst)
	ox := make([]float64, len(xs))
	oy := make([]float64, len(ys))
	for i := range xs {
		switch {
		case math.IsNaN(xs[i]) || math.IsNaN(ys[i]):
			ox[i], oy[i] = math.NaN(), math.NaN()
		case from == to:
			ox[i], oy[i] = xs[i], ys[i]
		default:
			ox[i], oy[i], _ = fn(xs[i], ys[i], 0)
		}
	}
	return ox, oy, nil
}
