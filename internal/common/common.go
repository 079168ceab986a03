package common

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// GetWithRetry performs the request, retrying transient failures (transport
// errors, non-2xx responses) with exponential backoff. The request context
// bounds the whole attempt chain.
func GetWithRetry(req *http.Request, name string) (*http.Response, error) {
	const maxAttempts = 3
	backoff := 200 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := req.Context().Err(); err != nil {
			return nil, err
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			lastErr = errors.New(fmt.Sprintf("error on %v api request: %s", name, err.Error()))
		} else if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			lastErr = errors.New(fmt.Sprintf("error code %v returned from %v", resp.StatusCode, name))
		} else {
			return resp, nil
		}

		if attempt == maxAttempts {
			break
		}
		timer := time.NewTimer(backoff)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}
