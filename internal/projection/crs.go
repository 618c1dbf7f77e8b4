package projection

import (
	"sync"

	"github.com/wroge/wgs84"
)

var (
	registryOnce sync.Once
	registry     *wgs84.Repository
)

// amersfoort is the Bessel datum of the Dutch RD grid with its published
// seven parameter shift to WGS84.
func amersfoort() wgs84.Datum {
	return wgs84.Helmert(wgs84.Bessel{}.A(), wgs84.Bessel{}.Fi(),
		565.417, 50.3319, 465.552, -0.398957, 0.343988, -1.8774, 4.0725)
}

// grs80 is a datum coincident with WGS84 on the GRS80 ellipsoid (SWEREF99,
// NZGD2000, GDA94).
func grs80() wgs84.Datum {
	return wgs84.Datum{Spheroid: wgs84.GRS80{}}
}

// crsRegistry returns the EPSG repository with the survey grids the stock
// repository lacks added once.
func crsRegistry() *wgs84.Repository {
	registryOnce.Do(func() {
		r := wgs84.EPSG()
		for zone := 1; zone <= 60; zone++ {
			cm := float64(zone*6 - 183)
			r.Add(25800+zone, wgs84.ETRS89().TransverseMercator(cm, 0, 0.9996, 500000, 0))
			r.Add(26900+zone, wgs84.NAD83().TransverseMercator(cm, 0, 0.9996, 500000, 0))
		}
		r.Add(28992, wgs84.ProjectedReferenceSystem{
			Datum: amersfoort(),
			Projection: obliqueStereographic{
				lonf: 5.38763888888889, latf: 52.15616055555555, scale: 0.9999079,
				eastf: 155000, northf: 463000,
			},
		})
		r.Add(3006, grs80().TransverseMercator(15, 0, 0.9996, 500000, 0))
		r.Add(2193, grs80().TransverseMercator(173, 0, 0.9996, 1600000, 10000000))
		r.Add(3577, grs80().AlbersEqualAreaConic(132, 0, -18, -36, 0, 0))
		registry = r
	})
	return registry
}

func lookup(code int) (wgs84.CoordinateReferenceSystem, bool) {
	c := crsRegistry().Code(code)
	return c, c != nil
}
