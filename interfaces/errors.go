package interfaces

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies relay failures. Every component boundary returns a
// tagged *Error so callers can distinguish transport trouble from provider
// rejections from shape mismatches without string matching.
type ErrorKind string

const (
	// KindTransportUnreachable means no response was obtained at all.
	// Callers may retry these.
	KindTransportUnreachable ErrorKind = "transport_unreachable"

	// KindUpstreamRejected means the provider answered with a non-2xx
	// status. The original status and body are preserved verbatim.
	KindUpstreamRejected ErrorKind = "upstream_rejected"

	// KindMalformedResponse means the provider body failed to decode into
	// the expected envelope.
	KindMalformedResponse ErrorKind = "malformed_response"

	// KindMissingExpectedField means a required nested key was absent from
	// an otherwise well-formed result.
	KindMissingExpectedField ErrorKind = "missing_expected_field"

	// KindDecryptionFailed means a credential bundle could not be opened:
	// wrong key, tampering, or malformed ciphertext.
	KindDecryptionFailed ErrorKind = "decryption_failed"

	// KindInvalidInput means the caller passed empty or invalid material.
	// No network call is made for these.
	KindInvalidInput ErrorKind = "invalid_input"
)

// Error is the tagged failure type returned across component boundaries.
type Error struct {
	Kind ErrorKind

	// UpstreamStatus is the raw provider HTTP status for
	// KindUpstreamRejected, zero otherwise.
	UpstreamStatus int

	// Message is a human-readable detail. For upstream rejections it
	// carries the provider body or message unmodified.
	Message string

	cause error
}

// NewError creates a tagged error with a message.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a tagged error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError tags an underlying error. The cause remains reachable through
// errors.Is / errors.As.
func WrapError(kind ErrorKind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// UpstreamError preserves a provider rejection with its raw status code so
// the caller can re-map it to its own error vocabulary.
func UpstreamError(status int, message string) *Error {
	return &Error{Kind: KindUpstreamRejected, UpstreamStatus: status, Message: message}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Kind == KindUpstreamRejected:
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.UpstreamStatus, e.Message)
	case e.cause != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	case e.cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf returns the error kind of err if it is a tagged *Error, or an
// empty kind otherwise.
func KindOf(err error) ErrorKind {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		return relayErr.Kind
	}
	return ""
}

// HTTPStatus maps an error kind to the status the inbound API responds with.
// Unknown kinds map to 500.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindTransportUnreachable:
		return http.StatusServiceUnavailable
	case KindUpstreamRejected:
		return http.StatusBadGateway
	case KindMalformedResponse, KindMissingExpectedField:
		return http.StatusBadGateway
	case KindDecryptionFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
