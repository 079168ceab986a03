package types

import (
	"github.com/paulmach/orb"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point returns the coordinate as an orb (lon, lat) point.
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

type Trip struct {
	From *Coordinates
	To   *Coordinates
}

// RouteGeometry is the full path of a candidate route. Points are in walk
// order and never mutated after the routing client builds them.
type RouteGeometry struct {
	Points  []Coordinates
	LengthM float64
}

type RouteStep struct {
	Name      string
	DistanceM float64
	DurationS float64
	Location  Coordinates
}

// CandidateRoute is one walking alternative returned by the routing
// collaborator. Read-only to the scoring pipeline.
type CandidateRoute struct {
	ID        string
	Geometry  RouteGeometry
	DistanceM float64
	DurationS float64
	Steps     []RouteStep
}

type Exposure int

const (
	ExposureUnknown Exposure = iota
	ExposureShaded
	ExposureSunlit
)

func (e Exposure) String() string {
	switch e {
	case ExposureShaded:
		return "shaded"
	case ExposureSunlit:
		return "sunlit"
	default:
		return "unknown"
	}
}

// SamplePoint is one evaluation point along a route: its location, its
// cumulative distance from the route start, and the exposure assigned to it.
type SamplePoint struct {
	Coordinates
	DistanceM float64
	Exposure  Exposure
}

// RouteScore is the scored result for one candidate route.
type RouteScore struct {
	RouteID          string  `json:"route_id"`
	Score            int     `json:"score"`
	ShadedM          float64 `json:"shaded_m"`
	ShadedFraction   float64 `json:"shaded_fraction"`
	Samples          int     `json:"samples"`
	DistanceM        float64 `json:"distance_m"`
	DurationS        float64 `json:"duration_s"`
	InsufficientData bool    `json:"insufficient_data,omitempty"`
}

// RankedResult is the ordered output of one plan request, best route first.
type RankedResult struct {
	Routes []RouteScore `json:"routes"`
}

// Building is an obstruction used for shadow casting.
type Building struct {
	Footprint orb.Polygon `json:"footprint"`
	HeightM   float64     `json:"height_m"`
}

// CanopyPatch is a tree-cover polygon with a coverage fraction in [0,1].
type CanopyPatch struct {
	Polygon  orb.Polygon `json:"polygon"`
	Coverage float64     `json:"coverage"`
}

// EnvironmentSnapshot holds the static spatial data one plan request is
// evaluated against. Region is the extent the underlying dataset actually
// covers; points outside it get ExposureUnknown. The snapshot is shared
// read-only across all routes of a request.
type EnvironmentSnapshot struct {
	Region    orb.Bound     `json:"region"`
	Buildings []Building    `json:"buildings"`
	Canopy    []CanopyPatch `json:"canopy"`
}

// Empty reports whether the snapshot carries no usable data.
func (s *EnvironmentSnapshot) Empty() bool {
	return s == nil || (len(s.Buildings) == 0 && len(s.Canopy) == 0)
}
