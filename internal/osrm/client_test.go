package osrm

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	t "github.com/mansikatarey/Umbra/internal/types"
)

// Polyline from the encoding reference docs: (38.5,-120.2), (40.7,-120.95),
// (43.252,-126.453).
const testBody = `{
  "code": "Ok",
  "routes": [
    {
      "geometry": "_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@",
      "duration": 620.5,
      "distance": 1210.3,
      "legs": [
        {
          "duration": 620.5,
          "distance": 1210.3,
          "steps": [
            {"name": "Main St", "duration": 300, "distance": 600, "maneuver": {"location": [-120.2, 38.5], "type": "depart"}},
            {"name": "", "duration": 320.5, "distance": 610.3, "maneuver": {"location": [-120.95, 40.7], "type": "arrive"}}
          ]
        }
      ]
    }
  ]
}`

func testTrip() *t.Trip {
	return &t.Trip{
		From: &t.Coordinates{Latitude: 38.5, Longitude: -120.2},
		To:   &t.Coordinates{Latitude: 43.252, Longitude: -126.453},
	}
}

func TestRoutesDecodesCandidates(tt *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("alternatives") != "true" || q.Get("geometries") != "polyline" {
			tt.Errorf("missing expected query parameters: %v", q)
		}
		io.WriteString(w, testBody)
	}))
	defer server.Close()

	c := New(BaseUrlOption(server.URL))
	routes, err := c.Routes(context.Background(), testTrip())
	if err != nil {
		tt.Fatalf("unexpected error: %v", err)
	}
	if len(routes) != 1 {
		tt.Fatalf("routes = %d, want 1", len(routes))
	}

	route := routes[0]
	if route.ID != "route-0" {
		tt.Fatalf("route id = %q, want route-0", route.ID)
	}
	if route.DurationS != 620.5 || route.DistanceM != 1210.3 {
		tt.Fatalf("route metrics = (%v, %v), want (620.5, 1210.3)", route.DurationS, route.DistanceM)
	}
	if len(route.Geometry.Points) != 3 {
		tt.Fatalf("geometry points = %d, want 3", len(route.Geometry.Points))
	}
	first := route.Geometry.Points[0]
	if math.Abs(first.Latitude-38.5) > 1e-5 || math.Abs(first.Longitude+120.2) > 1e-5 {
		tt.Fatalf("first point = %v, want (38.5, -120.2)", first)
	}
	if route.Geometry.LengthM <= 0 {
		tt.Fatal("geometry length should be positive")
	}
	if len(route.Steps) != 2 || route.Steps[0].Name != "Main St" {
		tt.Fatalf("unexpected steps: %+v", route.Steps)
	}
}

func TestRoutesNoRouteIsEmptyNotError(tt *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code": "NoRoute", "routes": []}`)
	}))
	defer server.Close()

	c := New(BaseUrlOption(server.URL))
	routes, err := c.Routes(context.Background(), testTrip())
	if err != nil {
		tt.Fatalf("unexpected error: %v", err)
	}
	if len(routes) != 0 {
		tt.Fatalf("routes = %d, want 0", len(routes))
	}
}

func TestRoutesServerErrorIsUpstreamUnavailable(tt *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(BaseUrlOption(server.URL))
	_, err := c.Routes(context.Background(), testTrip())

	var upstream t.UpstreamUnavailableError
	if !errors.As(err, &upstream) {
		tt.Fatalf("expected UpstreamUnavailableError, got %v", err)
	}
	if upstream.Upstream != "osrm" {
		tt.Fatalf("upstream = %q, want osrm", upstream.Upstream)
	}
}
