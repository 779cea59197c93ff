package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/votis/wallet-relay/interfaces"
	"github.com/votis/wallet-relay/metrics"
)

// StampHeader carries the client signature in api_key mode. The name must
// match the provider's expectation exactly; a mismatch fails authentication
// upstream, not decoding.
const StampHeader = "X-Stamp"

// Relay forwards opaque client-signed requests to the custody provider. It
// is stateless: every Execute call is independent and may run concurrently
// with any other. It performs exactly one attempt per call; retries and
// timeouts belong to the transport collaborator and the caller.
type Relay struct {
	transport interfaces.TransportClient
	baseURL   string
	log       *slog.Logger
	metrics   *metrics.Metrics
}

// New creates a Relay submitting to the provider at baseURL (no trailing
// slash) through the given transport.
func New(transport interfaces.TransportClient, baseURL string, log *slog.Logger, m *metrics.Metrics) *Relay {
	return &Relay{
		transport: transport,
		baseURL:   baseURL,
		log:       log,
		metrics:   m,
	}
}

// signedBodyEnvelope wraps the raw client body for the auth modes that embed
// the signature in the request instead of a header. The body is carried
// verbatim as raw JSON.
type signedBodyEnvelope struct {
	Request         json.RawMessage `json:"request"`
	ClientSignature string          `json:"clientSignature"`
}

// activityResponse is the provider's top-level response shape.
type activityResponse struct {
	Activity *interfaces.ActivityEnvelope `json:"activity"`
}

// Execute submits one stamped request and returns the decoded activity
// envelope.
//
// The outbound packaging depends on the auth mode: api_key attaches the
// stamp as the X-Stamp request-signing header over the body; webauthn and
// oauth embed the stamp as a client-signature field inside a body envelope.
// The three schemes must stay bit-compatible with the provider — a wrong
// header name or field placement fails authentication silently upstream.
//
// Error mapping: invalid input never reaches the network; a transport-level
// failure maps to KindTransportUnreachable; a non-2xx provider status maps
// to KindUpstreamRejected with the raw status and body preserved; a 2xx body
// that does not decode maps to KindMalformedResponse.
func (r *Relay) Execute(ctx context.Context, stamped interfaces.StampedRequest) (*interfaces.ActivityEnvelope, error) {
	if err := stamped.Validate(); err != nil {
		r.record(stamped.ActivityType, string(interfaces.KindInvalidInput))
		return nil, interfaces.WrapError(interfaces.KindInvalidInput, err, "stamped request rejected")
	}

	path, err := stamped.ActivityType.SubmitPath()
	if err != nil {
		r.record(stamped.ActivityType, string(interfaces.KindInvalidInput))
		return nil, interfaces.WrapError(interfaces.KindInvalidInput, err, "cannot route activity")
	}

	req := &interfaces.TransportRequest{
		Method: http.MethodPost,
		URL:    r.baseURL + path,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}

	switch stamped.AuthMode {
	case interfaces.AuthModeAPIKey:
		req.Body = stamped.Body
		req.Headers[StampHeader] = stamped.Stamp
	case interfaces.AuthModeWebauthn, interfaces.AuthModeOAuth:
		wrapped, err := json.Marshal(signedBodyEnvelope{
			Request:         json.RawMessage(stamped.Body),
			ClientSignature: stamped.Stamp,
		})
		if err != nil {
			r.record(stamped.ActivityType, string(interfaces.KindInvalidInput))
			return nil, interfaces.WrapError(interfaces.KindInvalidInput, err, "stamped body is not valid JSON")
		}
		req.Body = wrapped
	default:
		r.record(stamped.ActivityType, string(interfaces.KindInvalidInput))
		return nil, interfaces.Errorf(interfaces.KindInvalidInput, "unknown auth mode %q", stamped.AuthMode)
	}

	start := time.Now()
	resp, err := r.transport.Do(ctx, req)
	if err != nil {
		r.log.Info("provider unreachable", "activityType", stamped.ActivityType, "err", err)
		r.record(stamped.ActivityType, string(interfaces.KindTransportUnreachable))
		return nil, interfaces.WrapError(interfaces.KindTransportUnreachable, err, "provider unreachable")
	}
	r.metrics.ObserveRelayLatency(string(stamped.ActivityType), float64(time.Since(start).Milliseconds()))
	r.metrics.RecordUpstreamStatus(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.log.Info("provider rejected activity",
			"activityType", stamped.ActivityType, "status", resp.StatusCode)
		r.record(stamped.ActivityType, string(interfaces.KindUpstreamRejected))
		return nil, interfaces.UpstreamError(resp.StatusCode, string(resp.Body))
	}

	var decoded activityResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		r.record(stamped.ActivityType, string(interfaces.KindMalformedResponse))
		return nil, interfaces.WrapError(interfaces.KindMalformedResponse, err, "could not decode provider response")
	}

	r.record(stamped.ActivityType, "ok")

	// Pending and failed activities may carry no activity payload at all;
	// surface an empty envelope and let normalization null the record.
	if decoded.Activity == nil {
		return &interfaces.ActivityEnvelope{}, nil
	}

	r.log.Debug("activity relayed",
		"activityType", stamped.ActivityType,
		"activityID", decoded.Activity.ID,
		"status", decoded.Activity.Status)

	return decoded.Activity, nil
}

func (r *Relay) record(activityType interfaces.ActivityType, outcome string) {
	r.metrics.RecordActivity(string(activityType), outcome)
}
