// Package exposure classifies points along a route as shaded, sunlit or
// unknown for a given timestamp and environment snapshot.
package exposure

import (
	"math"
	"time"

	"github.com/paulmach/orb/planar"

	"github.com/mansikatarey/Umbra/internal/geo"
	"github.com/mansikatarey/Umbra/internal/solar"
	"github.com/mansikatarey/Umbra/internal/types"
)

// Estimator is the pluggable per-point classification capability. The rest
// of the pipeline is polymorphic over it, so a cheap heuristic and a full
// geometric implementation share the same sampler, scorer and ranker.
type Estimator interface {
	Estimate(c types.Coordinates, at time.Time, env *types.EnvironmentSnapshot) types.Exposure
}

// SunFunc resolves the sun position for a timestamp and location.
type SunFunc func(t time.Time, latDeg, lonDeg float64) solar.Position

type Option func(*Geometric)

// CanopyThresholdOption sets the minimum canopy coverage fraction that
// counts as shade.
func CanopyThresholdOption(threshold float64) Option {
	return func(g *Geometric) {
		g.canopyThreshold = threshold
	}
}

// MaxShadowReachOption caps how far a building shadow is allowed to reach.
func MaxShadowReachOption(meters float64) Option {
	return func(g *Geometric) {
		g.maxShadowReachM = meters
	}
}

// SunFuncOption overrides the solar position source. Used by tests to pin
// the sun at a known azimuth and elevation.
func SunFuncOption(f SunFunc) Option {
	return func(g *Geometric) {
		g.sunAt = f
	}
}

// Geometric casts a ray from the point toward the sun and tests it against
// building footprints, then independently checks canopy coverage.
type Geometric struct {
	canopyThreshold float64
	maxShadowReachM float64
	sunAt           SunFunc
}

func NewGeometric(opts ...Option) *Geometric {
	g := &Geometric{
		canopyThreshold: 0.25,
		maxShadowReachM: 500,
		sunAt:           solar.At,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Geometric) Estimate(c types.Coordinates, at time.Time, env *types.EnvironmentSnapshot) types.Exposure {
	if env == nil || !env.Region.Contains(c.Point()) {
		return types.ExposureUnknown
	}

	sun := g.sunAt(at, c.Latitude, c.Longitude)
	if sun.Night() {
		return types.ExposureUnknown
	}

	if underCanopy(c, env, g.canopyThreshold) {
		return types.ExposureShaded
	}
	if g.inBuildingShadow(c, sun, env) {
		return types.ExposureShaded
	}
	return types.ExposureSunlit
}

// inBuildingShadow walks every footprint edge and intersects it with the 2D
// ray from the point toward the sun azimuth. A building at ray distance d
// shades the point when its height clears d*tan(elevation).
func (g *Geometric) inBuildingShadow(c types.Coordinates, sun solar.Position, env *types.EnvironmentSnapshot) bool {
	if len(env.Buildings) == 0 {
		return false
	}

	proj := geo.NewPlanar(c)
	az := sun.AzimuthDeg * math.Pi / 180
	// Azimuth is measured from north, clockwise; east is +x, north is +y.
	dx := math.Sin(az)
	dy := math.Cos(az)
	tanElev := math.Tan(sun.ElevationDeg * math.Pi / 180)

	for _, b := range env.Buildings {
		if b.HeightM <= 0 {
			continue
		}
		if planar.PolygonContains(b.Footprint, c.Point()) {
			return true
		}
		reach := math.Min(b.HeightM/tanElev, g.maxShadowReachM)
		for _, ring := range b.Footprint {
			for i := 0; i < len(ring)-1; i++ {
				ax, ay := proj.XY(types.Coordinates{Latitude: ring[i].Lat(), Longitude: ring[i].Lon()})
				bx, by := proj.XY(types.Coordinates{Latitude: ring[i+1].Lat(), Longitude: ring[i+1].Lon()})
				d, ok := geo.RayHitsSegment(0, 0, dx, dy, ax, ay, bx, by)
				if ok && d <= reach && b.HeightM > d*tanElev {
					return true
				}
			}
		}
	}
	return false
}

func underCanopy(c types.Coordinates, env *types.EnvironmentSnapshot, threshold float64) bool {
	for _, patch := range env.Canopy {
		if patch.Coverage >= threshold && planar.PolygonContains(patch.Polygon, c.Point()) {
			return true
		}
	}
	return false
}

// CanopyOnly is a cheap heuristic estimator that ignores building shadows.
// It exists to prove the pipeline is genuinely pluggable and as a fallback
// when no obstruction data is loaded.
type CanopyOnly struct {
	Threshold float64
	SunAt     SunFunc
}

func (e CanopyOnly) Estimate(c types.Coordinates, at time.Time, env *types.EnvironmentSnapshot) types.Exposure {
	if env == nil || !env.Region.Contains(c.Point()) {
		return types.ExposureUnknown
	}
	sunAt := e.SunAt
	if sunAt == nil {
		sunAt = solar.At
	}
	if sunAt(at, c.Latitude, c.Longitude).Night() {
		return types.ExposureUnknown
	}
	threshold := e.Threshold
	if threshold == 0 {
		threshold = 0.25
	}
	if underCanopy(c, env, threshold) {
		return types.ExposureShaded
	}
	return types.ExposureSunlit
}
