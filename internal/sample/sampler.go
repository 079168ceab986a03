// Package sample turns a route geometry into evenly spaced evaluation points.
package sample

import (
	"math"

	"github.com/mansikatarey/Umbra/internal/geo"
	"github.com/mansikatarey/Umbra/internal/types"
)

// DefaultIntervalM is the sampling interval used when the caller does not
// override it.
const DefaultIntervalM = 20.0

// Along walks the geometry and emits one sample every intervalM meters,
// plus always the first and last vertex. A zero-length geometry yields a
// single sample. Output is deterministic for a given geometry and interval.
func Along(geom types.RouteGeometry, intervalM float64) ([]types.SamplePoint, error) {
	if intervalM <= 0 || math.IsNaN(intervalM) {
		return nil, types.InvalidParameterError{Param: "interval_m", Reason: "must be a positive number"}
	}
	if len(geom.Points) == 0 {
		return nil, types.InvalidParameterError{Param: "geometry", Reason: "route geometry has no points"}
	}
	for _, p := range geom.Points {
		if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
			return nil, types.InvalidParameterError{Param: "geometry", Reason: "coordinate out of range"}
		}
	}

	total := geo.PathLengthM(geom.Points)
	if total == 0 {
		return []types.SamplePoint{{Coordinates: geom.Points[0]}}, nil
	}

	samples := []types.SamplePoint{{Coordinates: geom.Points[0]}}

	// Interior samples at exact multiples of the interval; the last vertex
	// is emitted separately so the endpoint is always present exactly once.
	next := intervalM
	var walked float64
	for i := 0; i < len(geom.Points)-1; i++ {
		a, b := geom.Points[i], geom.Points[i+1]
		segLen := geo.HaversineM(a, b)
		if segLen == 0 {
			continue
		}
		for next < total && next <= walked+segLen {
			frac := (next - walked) / segLen
			samples = append(samples, types.SamplePoint{
				Coordinates: geo.Interpolate(a, b, frac),
				DistanceM:   next,
			})
			next += intervalM
		}
		walked += segLen
	}

	last := geom.Points[len(geom.Points)-1]
	samples = append(samples, types.SamplePoint{Coordinates: last, DistanceM: total})

	return samples, nil
}
