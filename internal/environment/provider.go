// Package environment supplies obstruction and canopy data for a region.
// Missing data for a sub-region is never an error: the estimator treats
// points outside a snapshot's region as unknown exposure.
package environment

import (
	"context"
	"math"

	"github.com/paulmach/orb"

	"github.com/mansikatarey/Umbra/internal/types"
)

// Provider returns the static environment data covering a bounding region.
type Provider interface {
	Snapshot(ctx context.Context, region orb.Bound) (*types.EnvironmentSnapshot, error)
}

// intersect clips one bound by another. The zero bound is returned when
// they do not overlap.
func intersect(a, b orb.Bound) orb.Bound {
	if !a.Intersects(b) {
		return orb.Bound{}
	}
	return orb.Bound{
		Min: orb.Point{math.Max(a.Min.Lon(), b.Min.Lon()), math.Max(a.Min.Lat(), b.Min.Lat())},
		Max: orb.Point{math.Min(a.Max.Lon(), b.Max.Lon()), math.Min(a.Max.Lat(), b.Max.Lat())},
	}
}
