package types

import "fmt"

// InvalidParameterError rejects malformed input before any network or
// compute work happens.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %v: %v", e.Param, e.Reason)
}

// UpstreamUnavailableError wraps a routing or environment collaborator
// failure. Safe for the caller to retry with backoff.
type UpstreamUnavailableError struct {
	Upstream string
	Err      error
}

func (e UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream %v unavailable: %v", e.Upstream, e.Err)
}

func (e UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

// NoRouteFoundError is a legitimate empty result, not a failure: the routing
// collaborator found no walking route between the endpoints.
type NoRouteFoundError struct {
	From Coordinates
	To   Coordinates
}

func (e NoRouteFoundError) Error() string {
	return fmt.Sprintf("no walking route found between (%v,%v) and (%v,%v)",
		e.From.Latitude, e.From.Longitude, e.To.Latitude, e.To.Longitude)
}

// InsufficientDataError means every sample on a route evaluated to unknown
// exposure. The caller decides the fallback policy.
type InsufficientDataError struct {
	RouteID string
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("no environment coverage for any sample on route %v", e.RouteID)
}
