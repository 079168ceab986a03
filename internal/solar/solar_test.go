package solar

import (
	"testing"
	"time"
)

func TestAtEquatorialNoon(t *testing.T) {
	// Near the March equinox at solar noon on the prime meridian the sun is
	// close to directly overhead.
	at := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	pos := At(at, 0, 0)

	if pos.ElevationDeg < 60 {
		t.Fatalf("elevation = %v, want well above 60", pos.ElevationDeg)
	}
	if pos.Night() {
		t.Fatal("noon reported as night")
	}
}

func TestAtMidnightIsNight(t *testing.T) {
	at := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	pos := At(at, 0, 0)

	if !pos.Night() {
		t.Fatalf("elevation = %v at local midnight, want below horizon", pos.ElevationDeg)
	}
}

func TestAtWinterNoonSouthernAzimuth(t *testing.T) {
	// Mid-latitude northern hemisphere in January: the sun sits low in the
	// southern sky around noon.
	at := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	pos := At(at, 45, 0)

	if pos.ElevationDeg < 10 || pos.ElevationDeg > 35 {
		t.Fatalf("elevation = %v, want a low winter sun", pos.ElevationDeg)
	}
	if pos.AzimuthDeg < 150 || pos.AzimuthDeg > 210 {
		t.Fatalf("azimuth = %v, want roughly south", pos.AzimuthDeg)
	}
}

func TestAtMorningSunRisesEast(t *testing.T) {
	at := time.Date(2026, 3, 20, 8, 0, 0, 0, time.UTC)
	pos := At(at, 45, 0)

	if pos.AzimuthDeg < 60 || pos.AzimuthDeg > 160 {
		t.Fatalf("azimuth = %v, want an eastern morning sun", pos.AzimuthDeg)
	}
}
