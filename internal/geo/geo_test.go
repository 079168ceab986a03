package geo

import (
	"math"
	"testing"

	"github.com/mansikatarey/Umbra/internal/types"
)

func TestHaversineOneDegreeLongitude(t *testing.T) {
	a := types.Coordinates{Latitude: 0, Longitude: 0}
	b := types.Coordinates{Latitude: 0, Longitude: 1}

	d := HaversineM(a, b)
	if math.Abs(d-111195) > 500 {
		t.Fatalf("distance = %v, want ~111195m", d)
	}
}

func TestHaversineZero(t *testing.T) {
	p := types.Coordinates{Latitude: 43.65, Longitude: -79.38}
	if d := HaversineM(p, p); d != 0 {
		t.Fatalf("distance = %v, want 0", d)
	}
}

func TestPathLengthSumsSegments(t *testing.T) {
	points := []types.Coordinates{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.001},
		{Latitude: 0.001, Longitude: 0.001},
	}
	total := PathLengthM(points)
	expect := HaversineM(points[0], points[1]) + HaversineM(points[1], points[2])
	if math.Abs(total-expect) > 1e-9 {
		t.Fatalf("path length = %v, want %v", total, expect)
	}
}

func TestInterpolateMidpoint(t *testing.T) {
	a := types.Coordinates{Latitude: 10, Longitude: 20}
	b := types.Coordinates{Latitude: 12, Longitude: 24}

	mid := Interpolate(a, b, 0.5)
	if mid.Latitude != 11 || mid.Longitude != 22 {
		t.Fatalf("midpoint = %v, want (11,22)", mid)
	}
}

func TestRayHitsSegment(t *testing.T) {
	// Ray east from origin against a vertical segment at x=2.
	d, ok := RayHitsSegment(0, 0, 1, 0, 2, -1, 2, 1)
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(d-2) > 1e-9 {
		t.Fatalf("hit distance = %v, want 2", d)
	}

	// Segment behind the ray.
	if _, ok := RayHitsSegment(0, 0, 1, 0, -2, -1, -2, 1); ok {
		t.Fatal("hit a segment behind the ray origin")
	}

	// Parallel segment.
	if _, ok := RayHitsSegment(0, 0, 1, 0, 0, 1, 5, 1); ok {
		t.Fatal("hit a parallel segment")
	}
}

func TestPlanarProjection(t *testing.T) {
	origin := types.Coordinates{Latitude: 45, Longitude: 0}
	proj := NewPlanar(origin)

	// One degree of latitude north is ~111km regardless of longitude.
	_, y := proj.XY(types.Coordinates{Latitude: 46, Longitude: 0})
	if math.Abs(y-111195) > 500 {
		t.Fatalf("north offset = %v, want ~111195m", y)
	}

	// Longitude shrinks with cos(45).
	x, _ := proj.XY(types.Coordinates{Latitude: 45, Longitude: 1})
	if math.Abs(x-111195*math.Cos(45*math.Pi/180)) > 500 {
		t.Fatalf("east offset = %v, want ~%v", x, 111195*math.Cos(45*math.Pi/180))
	}
}
