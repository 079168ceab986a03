package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/twpayne/go-polyline"

	"github.com/mansikatarey/Umbra/internal/common"
	"github.com/mansikatarey/Umbra/internal/geo"
	t "github.com/mansikatarey/Umbra/internal/types"
)

type Response struct {
	Code   string  `json:"code"`
	Routes []Route `json:"routes"`
}

type Route struct {
	Geometry   string  `json:"geometry"`
	WeightName string  `json:"weight_name"`
	Weight     float64 `json:"weight"`
	Duration   float64 `json:"duration"`
	Distance   float64 `json:"distance"`
	Legs       []Leg   `json:"legs"`
}

type Leg struct {
	Summary  string  `json:"summary"`
	Weight   float64 `json:"weight"`
	Duration float64 `json:"duration"`
	Distance float64 `json:"distance"`
	Steps    []Step  `json:"steps"`
}

type Step struct {
	Geometry     string   `json:"geometry"`
	Mode         string   `json:"mode"`
	Name         string   `json:"name"`
	Weight       float64  `json:"weight"`
	Duration     float64  `json:"duration"`
	Distance     float64  `json:"distance"`
	Destinations string   `json:"destinations,omitempty"`
	Ref          string   `json:"ref,omitempty"`
	Maneuver     Maneuver `json:"maneuver"`
}

type Maneuver struct {
	BearingAfter  int       `json:"bearing_after"`
	BearingBefore int       `json:"bearing_before"`
	Location      []float64 `json:"location"`
	Type          string    `json:"type"`
	Modifier      string    `json:"modifier,omitempty"`
	Exit          int       `json:"exit,omitempty"`
}

type ClientOption func(*Client)

type Client struct {
	baseUrl string
}

func BaseUrlOption(baseUrl string) ClientOption {
	return func(c *Client) {
		c.baseUrl = baseUrl
	}
}

func New(opts ...ClientOption) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	if c.baseUrl == "" {
		panic("Missing baseUrl in osrm client")
	}
	return c
}

// Routes fetches walking route alternatives between the trip endpoints.
// Returns an empty slice when OSRM legitimately finds no route; transport
// and decode failures map to UpstreamUnavailableError.
func (c *Client) Routes(ctx context.Context, trip *t.Trip) ([]t.CandidateRoute, error) {
	reqUrl := fmt.Sprintf("%v/%f,%f;%f,%f", c.baseUrl,
		trip.From.Longitude, trip.From.Latitude, trip.To.Longitude, trip.To.Latitude)
	req, err := url.Parse(reqUrl)
	if err != nil {
		return nil, errors.New(fmt.Sprintf("failed to parse osrm url %s: %s", reqUrl, err.Error()))
	}

	q := req.Query()
	q.Add("alternatives", "true")
	q.Add("steps", "true")
	q.Add("overview", "full")
	q.Add("geometries", "polyline")
	req.RawQuery = q.Encode()

	ctxReq, _ := http.NewRequestWithContext(ctx, "GET", req.String(), nil)
	resp, err := common.GetWithRetry(ctxReq, "osrm")
	if err != nil {
		return nil, t.UpstreamUnavailableError{Upstream: "osrm", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, t.UpstreamUnavailableError{Upstream: "osrm",
			Err: errors.New(fmt.Sprintf("error reading osrm response body: %s", err.Error()))}
	}

	var respObj Response
	err = json.Unmarshal(body, &respObj)
	if err != nil {
		return nil, t.UpstreamUnavailableError{Upstream: "osrm",
			Err: errors.New(fmt.Sprintf("error unmarshalling response from osrm: %s", err.Error()))}
	}

	if respObj.Code == "NoRoute" || respObj.Code == "NoSegment" {
		return nil, nil
	}
	if respObj.Code != "Ok" {
		return nil, t.UpstreamUnavailableError{Upstream: "osrm",
			Err: errors.New(fmt.Sprintf("osrm returned code %v", respObj.Code))}
	}

	candidates := make([]t.CandidateRoute, 0, len(respObj.Routes))
	for i, r := range respObj.Routes {
		candidate, err := c.candidateFromOSRM(i, r)
		if err != nil {
			return nil, t.UpstreamUnavailableError{Upstream: "osrm", Err: err}
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func (c *Client) candidateFromOSRM(index int, r Route) (t.CandidateRoute, error) {
	coords, _, err := polyline.DecodeCoords([]byte(r.Geometry))
	if err != nil {
		return t.CandidateRoute{}, errors.New(fmt.Sprintf("error decoding osrm geometry: %s", err.Error()))
	}

	points := make([]t.Coordinates, 0, len(coords))
	for _, pair := range coords {
		points = append(points, t.Coordinates{Latitude: pair[0], Longitude: pair[1]})
	}

	var steps []t.RouteStep
	for _, leg := range r.Legs {
		for _, step := range leg.Steps {
			routeStep := t.RouteStep{
				Name:      step.Name,
				DistanceM: step.Distance,
				DurationS: step.Duration,
			}
			if len(step.Maneuver.Location) == 2 {
				routeStep.Location = t.Coordinates{
					Latitude:  step.Maneuver.Location[1],
					Longitude: step.Maneuver.Location[0],
				}
			}
			steps = append(steps, routeStep)
		}
	}

	return t.CandidateRoute{
		ID: fmt.Sprintf("route-%d", index),
		Geometry: t.RouteGeometry{
			Points:  points,
			LengthM: geo.PathLengthM(points),
		},
		DistanceM: r.Distance,
		DurationS: r.Duration,
		Steps:     steps,
	}, nil
}
