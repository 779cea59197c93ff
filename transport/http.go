// Package transport implements the outbound HTTP collaborator consumed by
// the relay. It owns connection pooling, timeouts, and cancellation; the
// relay treats it strictly as a black box. Do returns an error only when no
// response was obtained at all — non-2xx answers come back as responses so
// the relay can preserve the raw status.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/votis/wallet-relay/interfaces"
)

// DefaultTimeout bounds one upstream call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// HTTPClient implements interfaces.TransportClient over net/http.
type HTTPClient struct {
	client *http.Client
}

// New creates an HTTPClient with the given per-request timeout. A zero
// timeout falls back to DefaultTimeout.
func New(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Do executes one HTTP call and reads the full response body. Context
// cancellation aborts the call.
func (c *HTTPClient) Do(ctx context.Context, req *interfaces.TransportRequest) (*interfaces.TransportResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("could not initialize request: %w", err)
	}

	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("could not reach provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read provider response: %w", err)
	}

	return &interfaces.TransportResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
