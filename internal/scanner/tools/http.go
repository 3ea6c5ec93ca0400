package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "phishguard/1.0 (Safety Scanner)"

// maxBodyBytes bounds how much of an upstream response is decoded.
const maxBodyBytes = 4 << 20

// StatusError is returned when an upstream answers with an unexpected status.
type StatusError struct {
	Service string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Service, e.Code)
}

// NewHTTPClient returns the client shared by every HTTP adapter.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// getJSON performs a GET and decodes the body into v when the status is 200.
// The status code is returned in every case where a response was received.
func getJSON(ctx context.Context, client *http.Client, service, rawURL string, headers map[string]string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: request creation failed: %w", service, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: request failed: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return resp.StatusCode, &StatusError{Service: service, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("%s: decode failed: %w", service, err)
	}

	return resp.StatusCode, nil
}
