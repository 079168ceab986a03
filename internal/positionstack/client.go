package positionstack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/mansikatarey/Umbra/internal/common"
	t "github.com/mansikatarey/Umbra/internal/types"
)

type ClientOption func(*Client)

func ApiKeyOption(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

func BaseUrlOption(baseUrl string) ClientOption {
	return func(c *Client) {
		c.baseUrl = baseUrl
	}
}

// RateLimitOption caps outbound geocode requests per second.
func RateLimitOption(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type Client struct {
	apiKey  string
	baseUrl string
	limiter *rate.Limiter
}

func New(opts ...ClientOption) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		panic("Missing apikey in positionstack client")
	}
	if c.baseUrl == "" {
		panic("Missing baseUrl in positionstack client")
	}
	if c.limiter == nil {
		c.limiter = rate.NewLimiter(rate.Limit(10), 2)
	}
	return c
}

// GeoCode resolves a free-text address to coordinates. Returns nil without
// error when the address is unrecognized.
func (c *Client) GeoCode(ctx context.Context, location string) (*t.Coordinates, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := url.Parse(fmt.Sprintf("%v/forward", c.baseUrl))
	if err != nil {
		return nil, errors.New(fmt.Sprintf("failed to parse positionstack baseUrl %s: %s", c.baseUrl, err.Error()))
	}

	q := req.Query()
	q.Add("access_key", c.apiKey)
	q.Add("query", location)
	q.Add("limit", "1")
	req.RawQuery = q.Encode()

	ctxReq, _ := http.NewRequestWithContext(ctx, "GET", req.String(), nil)
	resp, err := common.GetWithRetry(ctxReq, "positionstack")
	if err != nil {
		return nil, t.UpstreamUnavailableError{Upstream: "positionstack", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(fmt.Sprintf("error reading positionstack response body: %s", err.Error()))
	}

	var respObj forwardResponse
	err = json.Unmarshal(body, &respObj)
	if err != nil {
		return nil, errors.New(fmt.Sprintf("error unmarshalling response from positionstack: %s", err.Error()))
	} else if len(respObj.Data) == 0 {
		return nil, nil
	}
	return &t.Coordinates{
		Latitude:  respObj.Data[0].Latitude,
		Longitude: respObj.Data[0].Longitude,
	}, nil
}
