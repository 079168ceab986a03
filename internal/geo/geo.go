package geo

import (
	"math"

	"github.com/mansikatarey/Umbra/internal/types"
)

const earthRadiusM = 6371000.0

// HaversineM returns the great-circle distance between two points in meters.
func HaversineM(a, b types.Coordinates) float64 {
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Latitude*math.Pi/180)*math.Cos(b.Latitude*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusM * c
}

// PathLengthM returns the summed segment length of a polyline in meters.
func PathLengthM(points []types.Coordinates) float64 {
	var total float64
	for i := 0; i < len(points)-1; i++ {
		total += HaversineM(points[i], points[i+1])
	}
	return total
}

// Interpolate returns the point a fraction of the way from a to b.
// Linear in lat/lon, which is accurate enough at sampling-interval scale.
func Interpolate(a, b types.Coordinates, frac float64) types.Coordinates {
	return types.Coordinates{
		Latitude:  a.Latitude + (b.Latitude-a.Latitude)*frac,
		Longitude: a.Longitude + (b.Longitude-a.Longitude)*frac,
	}
}

// Planar is a local equirectangular projection centered on an origin point.
// Coordinates project to meters east (x) and north (y) of the origin, valid
// for the sub-kilometer distances shadow casting works over.
type Planar struct {
	origin types.Coordinates
	cosLat float64
}

func NewPlanar(origin types.Coordinates) Planar {
	return Planar{
		origin: origin,
		cosLat: math.Cos(origin.Latitude * math.Pi / 180),
	}
}

func (p Planar) XY(c types.Coordinates) (float64, float64) {
	x := (c.Longitude - p.origin.Longitude) * math.Pi / 180 * earthRadiusM * p.cosLat
	y := (c.Latitude - p.origin.Latitude) * math.Pi / 180 * earthRadiusM
	return x, y
}

// RayHitsSegment intersects the ray from (px,py) in direction (dx,dy) with
// the segment (ax,ay)-(bx,by). Returns the distance along the ray and true
// when the ray crosses the segment. The direction must be a unit vector.
func RayHitsSegment(px, py, dx, dy, ax, ay, bx, by float64) (float64, bool) {
	sx := bx - ax
	sy := by - ay
	denom := dx*sy - dy*sx
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	t := ((ax-px)*sy - (ay-py)*sx) / denom
	u := ((ax-px)*dy - (ay-py)*dx) / denom
	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}
