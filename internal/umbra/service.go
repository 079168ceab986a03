package umbra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mansikatarey/Umbra/internal/config"
	"github.com/mansikatarey/Umbra/internal/environment"
	"github.com/mansikatarey/Umbra/internal/exposure"
	"github.com/mansikatarey/Umbra/internal/metrics"
	"github.com/mansikatarey/Umbra/internal/osrm"
	ps "github.com/mansikatarey/Umbra/internal/positionstack"
	"github.com/mansikatarey/Umbra/internal/sample"
	"github.com/mansikatarey/Umbra/internal/score"
	t "github.com/mansikatarey/Umbra/internal/types"
)

// Router supplies candidate walking routes for a trip.
type Router interface {
	Routes(ctx context.Context, trip *t.Trip) ([]t.CandidateRoute, error)
}

// GeoCoder resolves a free-text address to coordinates.
type GeoCoder interface {
	GeoCode(ctx context.Context, location string) (*t.Coordinates, error)
}

// Fallback policies for routes with no environment coverage at all.
const (
	OnNoDataNeutral = "neutral"
	OnNoDataExclude = "exclude"
)

type PlanRequest struct {
	From      string
	To        string
	DepartAt  time.Time
	IntervalM float64
	OnNoData  string
}

type PlanResponse struct {
	Error  string         `json:"error,omitempty"`
	Routes []t.RouteScore `json:"routes"`
}

type CodeError struct {
	code int
	msg  string
}

func (c CodeError) Error() string {
	return c.msg
}

type Service struct {
	router Router
	geo    GeoCoder
	env    environment.Provider
	est    exposure.Estimator
	cfg    config.Tunables

	Logger *zap.SugaredLogger
}

// New wires the service from environment variables, the composition used by
// cmd/umbra. Tests use NewWith and inject fakes.
func New() *Service {
	baseLogger, _ := zap.NewProduction()
	logger := baseLogger.Sugar()

	cfg, err := config.Load(os.Getenv("umbra_config"))
	if err != nil {
		logger.Fatalw("invalid config", "error", err)
	}

	geo := ps.New(
		ps.ApiKeyOption(os.Getenv("positionstack_apikey")),
		ps.BaseUrlOption(os.Getenv("positionstack_baseurl")),
	)

	router := osrm.New(
		osrm.BaseUrlOption(os.Getenv("osrm_baseurl")),
	)

	var env environment.Provider
	switch {
	case os.Getenv("environment_geojson") != "":
		env, err = environment.NewFileProvider(os.Getenv("environment_geojson"))
	case os.Getenv("database_url") != "":
		env, err = environment.NewPGProvider(context.Background(), os.Getenv("database_url"))
	default:
		logger.Fatal("no environment data source configured: set environment_geojson or database_url")
	}
	if err != nil {
		logger.Fatalw("environment provider init failed", "error", err)
	}

	disableRedis, _ := strconv.ParseBool(os.Getenv("disable_redis"))
	if !disableRedis {
		rc := redis.NewClient(&redis.Options{
			Addr: os.Getenv("redis_address"),
		})
		env = environment.NewCache(env, rc, cfg.SnapshotCacheTTL(), logger)
	}

	est := exposure.NewGeometric(
		exposure.CanopyThresholdOption(cfg.CanopyThreshold),
		exposure.MaxShadowReachOption(cfg.MaxShadowReachM),
	)

	return NewWith(router, geo, env, est, cfg, logger)
}

func NewWith(router Router, geo GeoCoder, env environment.Provider, est exposure.Estimator, cfg config.Tunables, logger *zap.SugaredLogger) *Service {
	return &Service{
		router: router,
		geo:    geo,
		env:    env,
		est:    est,
		cfg:    cfg,
		Logger: logger,
	}
}

func (s *Service) Start() {
	metrics.RegisterDefault()

	mux := http.NewServeMux()
	mux.HandleFunc("/routes", s.RoutesHandler)
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	_ = http.ListenAndServe(s.cfg.ListenAddr, mux)
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

func (s *Service) RoutesHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := s.parseRequest(r)
	if err != nil {
		status := s.writeError(w, err)
		metrics.PlanRequests.WithLabelValues(strconv.Itoa(status)).Inc()
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.PlanTimeout())
	defer cancel()

	result, err := s.Plan(ctx, req)
	metrics.PlanDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		status := s.writeError(w, err)
		metrics.PlanRequests.WithLabelValues(strconv.Itoa(status)).Inc()
		return
	}

	metrics.PlanRequests.WithLabelValues("200").Inc()
	s.writeResponse(w, &PlanResponse{Routes: result.Routes})
}

func (s *Service) parseRequest(r *http.Request) (*PlanRequest, error) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" {
		return nil, CodeError{code: 400, msg: "Missing 'from' query parameter in request"}
	} else if to == "" {
		return nil, CodeError{code: 400, msg: "Missing 'to' query parameter in request"}
	}

	req := &PlanRequest{
		From:      from,
		To:        to,
		DepartAt:  time.Now(),
		IntervalM: s.cfg.SampleIntervalM,
		OnNoData:  OnNoDataNeutral,
	}

	if v := r.URL.Query().Get("depart_at"); v != "" {
		departAt, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, CodeError{code: 400, msg: "'depart_at' must be an RFC3339 timestamp"}
		}
		horizon := time.Duration(s.cfg.MaxDepartHorizonH) * time.Hour
		if departAt.After(time.Now().Add(horizon)) {
			return nil, CodeError{code: 400, msg: fmt.Sprintf("'depart_at' must be within %v hours from now", s.cfg.MaxDepartHorizonH)}
		}
		req.DepartAt = departAt
	}

	if v := r.URL.Query().Get("interval_m"); v != "" {
		intervalM, err := strconv.ParseFloat(v, 64)
		if err != nil || intervalM <= 0 {
			return nil, t.InvalidParameterError{Param: "interval_m", Reason: "must be a positive number"}
		}
		req.IntervalM = intervalM
	}

	if v := r.URL.Query().Get("on_no_data"); v != "" {
		if v != OnNoDataNeutral && v != OnNoDataExclude {
			return nil, t.InvalidParameterError{Param: "on_no_data", Reason: "must be 'neutral' or 'exclude'"}
		}
		req.OnNoData = v
	}

	return req, nil
}

// Plan is the engine-to-caller boundary: geocode the endpoints, fetch
// candidate routes, evaluate exposure along each one concurrently, and
// return the scored routes in rank order.
func (s *Service) Plan(ctx context.Context, req *PlanRequest) (*t.RankedResult, error) {
	logger := s.Logger.With("request_id", uuid.NewString())

	trip, err := s.tripCoordinates(ctx, req)
	if err != nil {
		return nil, err
	}

	routes, err := s.router.Routes(ctx, trip)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("osrm").Inc()
		logger.Errorw("route lookup failed", "error", err)
		return nil, err
	}
	if len(routes) == 0 {
		logger.Infow("no route between endpoints",
			"from", req.From, "to", req.To)
		return nil, t.NoRouteFoundError{From: *trip.From, To: *trip.To}
	}

	snap, err := s.env.Snapshot(ctx, snapshotRegion(routes, s.cfg.SnapshotPadM))
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("environment").Inc()
		logger.Errorw("environment snapshot failed", "error", err)
		return nil, err
	}

	results := make([]*t.RouteScore, len(routes))
	totalSamples := 0

	g, gctx := errgroup.WithContext(ctx)
	for i, route := range routes {
		i, route := i, route
		g.Go(func() error {
			rs, err := s.scoreRoute(gctx, route, snap, req)
			if err != nil {
				var insufficient t.InsufficientDataError
				if errors.As(err, &insufficient) {
					if req.OnNoData == OnNoDataExclude {
						logger.Warnw("route excluded, no environment coverage", "route", route.ID)
						return nil
					}
					rs = neutralScore(route)
					logger.Warnw("route scored neutral, no environment coverage", "route", route.ID)
				} else {
					return err
				}
			}
			results[i] = &rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores := make([]t.RouteScore, 0, len(results))
	for _, rs := range results {
		if rs != nil {
			scores = append(scores, *rs)
			totalSamples += rs.Samples
		}
	}
	metrics.SamplesEvaluated.Observe(float64(totalSamples))

	ranked := score.Rank(scores)
	logger.Infow("plan complete",
		"candidates", len(routes), "ranked", len(ranked.Routes), "samples", totalSamples)
	return &ranked, nil
}

func (s *Service) tripCoordinates(ctx context.Context, req *PlanRequest) (*t.Trip, error) {
	var fromCoord, toCoord *t.Coordinates
	g := new(errgroup.Group)

	g.Go(func() error {
		var err error
		fromCoord, err = s.geoCode(ctx, req.From)
		return err
	})
	g.Go(func() error {
		var err error
		toCoord, err = s.geoCode(ctx, req.To)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &t.Trip{
		From: fromCoord,
		To:   toCoord,
	}, nil
}

func (s *Service) geoCode(ctx context.Context, address string) (*t.Coordinates, error) {
	// "lat,lon" literals skip the geocoder entirely.
	if coord, ok := parseLatLon(address); ok {
		return coord, nil
	}

	coord, err := s.geo.GeoCode(ctx, address)
	if err != nil {
		s.Logger.Errorw(err.Error(),
			"address", address, "action", "GeoCode")
		metrics.UpstreamErrors.WithLabelValues("positionstack").Inc()
		return nil, err
	} else if coord == nil {
		return nil, CodeError{code: 400, msg: fmt.Sprintf("Unrecognized address '%v'. Check spelling or be more specific.", address)}
	}
	return coord, nil
}

func parseLatLon(address string) (*t.Coordinates, bool) {
	parts := strings.Split(address, ",")
	if len(parts) != 2 {
		return nil, false
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLon != nil {
		return nil, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, false
	}
	return &t.Coordinates{Latitude: lat, Longitude: lon}, true
}

// scoreRoute samples a route's geometry and classifies each sample at the
// wall-clock time the walker would reach it. Cancellation is honored at
// sample boundaries.
func (s *Service) scoreRoute(ctx context.Context, route t.CandidateRoute, snap *t.EnvironmentSnapshot, req *PlanRequest) (t.RouteScore, error) {
	samples, err := sample.Along(route.Geometry, req.IntervalM)
	if err != nil {
		return t.RouteScore{}, err
	}

	for i := range samples {
		select {
		case <-ctx.Done():
			return t.RouteScore{}, ctx.Err()
		default:
		}

		at := req.DepartAt
		if route.Geometry.LengthM > 0 {
			progress := samples[i].DistanceM / route.Geometry.LengthM
			at = at.Add(time.Duration(progress * route.DurationS * float64(time.Second)))
		}
		samples[i].Exposure = s.est.Estimate(samples[i].Coordinates, at, snap)
	}

	return score.Score(route, samples)
}

func neutralScore(route t.CandidateRoute) t.RouteScore {
	return t.RouteScore{
		RouteID:          route.ID,
		Score:            score.NeutralScore,
		DistanceM:        route.DistanceM,
		DurationS:        route.DurationS,
		InsufficientData: true,
	}
}

// snapshotRegion is the union of all candidate geometries, padded so
// shadows cast from just outside the corridor still count.
func snapshotRegion(routes []t.CandidateRoute, padM float64) orb.Bound {
	var bound orb.Bound
	first := true
	for _, route := range routes {
		for _, p := range route.Geometry.Points {
			if first {
				bound = orb.Bound{Min: p.Point(), Max: p.Point()}
				first = false
				continue
			}
			bound = bound.Extend(p.Point())
		}
	}

	// Degrees per meter of latitude; stretch by the mid-latitude cosine for
	// longitude so the pad is roughly square on the ground.
	padLat := padM / 111320
	midLat := (bound.Min.Lat() + bound.Max.Lat()) / 2
	cos := math.Cos(midLat * math.Pi / 180)
	if cos < 0.1 {
		cos = 0.1
	}
	padLon := padLat / cos

	return orb.Bound{
		Min: orb.Point{bound.Min.Lon() - padLon, bound.Min.Lat() - padLat},
		Max: orb.Point{bound.Max.Lon() + padLon, bound.Max.Lat() + padLat},
	}
}

func (s *Service) writeError(w http.ResponseWriter, err error) int {
	status := statusOf(err)
	body, _ := json.Marshal(PlanResponse{Error: err.Error(), Routes: []t.RouteScore{}})

	if status == 500 {
		w.WriteHeader(500)
		io.WriteString(w, "Internal server error")
		return 500
	}
	w.WriteHeader(status)
	io.WriteString(w, string(body))
	return status
}

func statusOf(err error) int {
	var codeErr CodeError
	if errors.As(err, &codeErr) {
		return codeErr.code
	}
	var invalid t.InvalidParameterError
	if errors.As(err, &invalid) {
		return 400
	}
	var noRoute t.NoRouteFoundError
	if errors.As(err, &noRoute) {
		return 404
	}
	var upstream t.UpstreamUnavailableError
	if errors.As(err, &upstream) {
		return 502
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return 504
	}
	return 500
}

func (s *Service) writeResponse(w http.ResponseWriter, resp *PlanResponse) {
	body, _ := json.Marshal(resp)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, string(body))
}
