package interfaces

import "context"

// TransportRequest describes one outbound HTTP call to the custody provider.
type TransportRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// TransportResponse is the provider's answer. Body is the fully-read
// response body; the relay decides how to decode it.
type TransportResponse struct {
	StatusCode int
	Body       []byte
}

// TransportClient executes outbound HTTP calls. It is a black box to the
// relay: timeout, cancellation, and connection pooling live behind this
// interface. Do returns an error only when no response was obtained at all;
// a non-2xx answer is a response, not an error.
type TransportClient interface {
	Do(ctx context.Context, req *TransportRequest) (*TransportResponse, error)
}

// ActivityExecutor submits a stamped request and returns the decoded
// activity envelope. Implemented by relay.Relay; consumed by the session
// negotiator and the HTTP handlers so both can be tested against fakes.
type ActivityExecutor interface {
	Execute(ctx context.Context, stamped StampedRequest) (*ActivityEnvelope, error)
}
