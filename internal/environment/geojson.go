package environment

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mansikatarey/Umbra/internal/types"
)

// FileProvider serves snapshots from a GeoJSON FeatureCollection loaded once
// at construction. Features with a numeric "height_m" property become
// obstructions; features with a numeric "coverage" property become canopy
// patches. Everything else is ignored.
type FileProvider struct {
	buildings []types.Building
	canopy    []types.CanopyPatch
	bound     orb.Bound
}

func NewFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Sprintf("error reading environment file %s: %s", path, err.Error()))
	}
	return FromGeoJSON(data)
}

func FromGeoJSON(data []byte) (*FileProvider, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.New(fmt.Sprintf("error parsing environment geojson: %s", err.Error()))
	}

	p := &FileProvider{}
	first := true
	for _, f := range fc.Features {
		polygons := polygonsOf(f.Geometry)
		if len(polygons) == 0 {
			continue
		}

		height, hasHeight := numericProperty(f.Properties, "height_m")
		coverage, hasCoverage := numericProperty(f.Properties, "coverage")

		for _, poly := range polygons {
			switch {
			case hasHeight:
				p.buildings = append(p.buildings, types.Building{Footprint: poly, HeightM: height})
			case hasCoverage:
				p.canopy = append(p.canopy, types.CanopyPatch{Polygon: poly, Coverage: coverage})
			default:
				continue
			}
			if first {
				p.bound = poly.Bound()
				first = false
			} else {
				p.bound = p.bound.Union(poly.Bound())
			}
		}
	}
	return p, nil
}

// Snapshot returns the loaded features overlapping the region. The snapshot
// region is the overlap of the request and the dataset extent, so points the
// dataset never covered stay unknown.
func (p *FileProvider) Snapshot(_ context.Context, region orb.Bound) (*types.EnvironmentSnapshot, error) {
	snap := &types.EnvironmentSnapshot{Region: intersect(p.bound, region)}
	for _, b := range p.buildings {
		if b.Footprint.Bound().Intersects(region) {
			snap.Buildings = append(snap.Buildings, b)
		}
	}
	for _, c := range p.canopy {
		if c.Polygon.Bound().Intersects(region) {
			snap.Canopy = append(snap.Canopy, c)
		}
	}
	return snap, nil
}

func polygonsOf(g orb.Geometry) []orb.Polygon {
	switch geom := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{geom}
	case orb.MultiPolygon:
		return geom
	default:
		return nil
	}
}

func numericProperty(props geojson.Properties, key string) (float64, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
