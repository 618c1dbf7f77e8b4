package projection

import (
	"math"

	"github.com/wroge/wgs84"
)

// obliqueStereographic is the double stereographic projection (EPSG method
// 9809) used by the RD grid. It plugs into wgs84 as a Projection.
type obliqueStereographic struct {
	lonf, latf, scale, eastf, northf float64
}

// sphere holds the conformal sphere constants for one ellipsoid.
type sphere struct {
	e, r, n, c, chi0, lam0 float64
}

func (p obliqueStereographic) sphere(s wgs84.Spheroid) sphere {
	f := 1 / s.Fi()
	e2 := 2*f - f*f
	e := math.Sqrt(e2)
	phi0 := p.latf * math.Pi / 180
	sin0 := math.Sin(phi0)
	rho0 := s.A() * (1 - e2) / math.Pow(1-e2*sin0*sin0, 1.5)
	nu0 := s.A() / math.Sqrt(1-e2*sin0*sin0)
	n := math.Sqrt(1 + e2*math.Pow(math.Cos(phi0), 4)/(1-e2))
	w1 := math.Pow((1+sin0)/(1-sin0)*math.Pow((1-e*sin0)/(1+e*sin0), e), n)
	sinChi := (w1 - 1) / (w1 + 1)
	c := (n + sin0) * (1 - sinChi) / ((n - sin0) * (1 + sinChi))
	w2 := c * w1
	return sphere{
		e:    e,
		r:    math.Sqrt(rho0 * nu0),
		n:    n,
		c:    c,
		chi0: math.Asin((w2 - 1) / (w2 + 1)),
		lam0: p.lonf * math.Pi / 180,
	}
}

func (p obliqueStereographic) FromLonLat(lon, lat float64, s wgs84.Spheroid) (east, north float64) {
	k := p.sphere(s)
	phi := lat * math.Pi / 180
	lam := k.n*(lon*math.Pi/180-k.lam0) + k.lam0
	sa := (1 + math.Sin(phi)) / (1 - math.Sin(phi))
	sb := (1 - k.e*math.Sin(phi)) / (1 + k.e*math.Sin(phi))
	w := k.c * math.Pow(sa*math.Pow(sb, k.e), k.n)
	chi := math.Asin((w - 1) / (w + 1))
	b := 1 + math.Sin(chi)*math.Sin(k.chi0) + math.Cos(chi)*math.Cos(k.chi0)*math.Cos(lam-k.lam0)
	east = p.eastf + 2*k.r*p.scale*math.Cos(chi)*math.Sin(lam-k.lam0)/b
	north = p.northf + 2*k.r*p.scale*(math.Sin(chi)*math.Cos(k.chi0)-math.Cos(chi)*math.Sin(k.chi0)*math.Cos(lam-k.lam0))/b
	return east, north
}

func (p obliqueStereographic) ToLonLat(east, north float64, s wgs84.Spheroid) (lon, lat float64) {
	k := p.sphere(s)
	de, dn := east-p.eastf, north-p.northf
	g := 2 * k.r * p.scale * math.Tan(math.Pi/4-k.chi0/2)
	h := 4*k.r*p.scale*math.Tan(k.chi0) + g
	i := math.Atan(de / (h + dn))
	j := math.Atan(de/(g-dn)) - i
	chi := k.chi0 + 2*math.Atan((dn-de*math.Tan(j/2))/(2*k.r*p.scale))
	lam := j + 2*i + k.lam0

	psi := 0.5 * math.Log((1+math.Sin(chi))/(k.c*(1-math.Sin(chi)))) / k.n
	phi := 2*math.Atan(math.Exp(psi)) - math.Pi/2
	e2 := k.e * k.e
	for iter := 0; iter < 10; iter++ {
		sp := math.Sin(phi)
		psiI := math.Log(math.Tan(phi/2+math.Pi/4) * math.Pow((1-k.e*sp)/(1+k.e*sp), k.e/2))
		next := phi - (psiI-psi)*math.Cos(phi)*(1-e2*sp*sp)/(1-e2)
		if math.Abs(next-phi) < 1e-14 {
			phi = next
			break
		}
		phi = next
	}
	lon = ((lam-k.lam0)/k.n + k.lam0) * 180 / math.Pi
	return lon, phi * 180 / math.Pi
}
