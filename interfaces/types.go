// Package interfaces defines the core types and contracts for the wallet
// relay. It provides the boundary between components without implementation
// details: the stamped request that clients produce, the activity envelope
// the custody provider returns, the decrypted session credentials, and the
// collaborator interfaces (transport, stamper) the relay consumes.
package interfaces

import (
	"errors"
	"fmt"
)

// AuthMode selects how a stamped request authenticates against the custody
// provider. It is a closed enum; payload construction switches on it
// exhaustively so a new mode is a compile-time-visible change.
type AuthMode string

const (
	// AuthModeAPIKey attaches the stamp as a request-signing header over
	// the stamped body.
	AuthModeAPIKey AuthMode = "api_key"

	// AuthModeWebauthn embeds the stamp as a client-signature field inside
	// the body envelope.
	AuthModeWebauthn AuthMode = "webauthn"

	// AuthModeOAuth embeds the stamp the same way as webauthn but is
	// tracked separately for auditing.
	AuthModeOAuth AuthMode = "oauth"
)

// NewAuthMode validates a raw string against the known modes.
func NewAuthMode(s string) (AuthMode, error) {
	switch AuthMode(s) {
	case AuthModeAPIKey, AuthModeWebauthn, AuthModeOAuth:
		return AuthMode(s), nil
	}
	return "", fmt.Errorf("unknown auth mode %q", s)
}

// ActivityType tags one atomic operation submitted to the custody provider.
type ActivityType string

// Activity types the relay knows how to route. The provider versions its
// activity types; the tag carries the version.
const (
	ActivityTypeCreateReadOnlySession  ActivityType = "ACTIVITY_TYPE_CREATE_READ_ONLY_SESSION"
	ActivityTypeCreateReadWriteSession ActivityType = "ACTIVITY_TYPE_CREATE_READ_WRITE_SESSION_V2"
	ActivityTypeCreateSubOrganization  ActivityType = "ACTIVITY_TYPE_CREATE_SUB_ORGANIZATION_V7"
	ActivityTypeCreateWallet           ActivityType = "ACTIVITY_TYPE_CREATE_WALLET"
	ActivityTypeSignTransaction        ActivityType = "ACTIVITY_TYPE_SIGN_TRANSACTION_V2"
	ActivityTypeSignRawPayload         ActivityType = "ACTIVITY_TYPE_SIGN_RAW_PAYLOAD_V2"
)

// submitPaths maps each activity type to its provider endpoint. A wrong path
// fails authentication upstream rather than decoding, so the table is kept
// explicit instead of derived from the tag.
var submitPaths = map[ActivityType]string{
	ActivityTypeCreateReadOnlySession:  "/public/v1/submit/create_read_only_session",
	ActivityTypeCreateReadWriteSession: "/public/v1/submit/create_read_write_session",
	ActivityTypeCreateSubOrganization:  "/public/v1/submit/create_sub_organization",
	ActivityTypeCreateWallet:           "/public/v1/submit/create_wallet",
	ActivityTypeSignTransaction:        "/public/v1/submit/sign_transaction",
	ActivityTypeSignRawPayload:         "/public/v1/submit/sign_raw_payload",
}

// SubmitPath returns the provider endpoint path for the activity type.
func (t ActivityType) SubmitPath() (string, error) {
	path, ok := submitPaths[t]
	if !ok {
		return "", fmt.Errorf("unknown activity type %q", t)
	}
	return path, nil
}

// ActivityStatus is the provider-reported lifecycle state of an activity.
type ActivityStatus string

const (
	ActivityStatusCreated         ActivityStatus = "ACTIVITY_STATUS_CREATED"
	ActivityStatusPending         ActivityStatus = "ACTIVITY_STATUS_PENDING"
	ActivityStatusCompleted       ActivityStatus = "ACTIVITY_STATUS_COMPLETED"
	ActivityStatusFailed          ActivityStatus = "ACTIVITY_STATUS_FAILED"
	ActivityStatusConsensusNeeded ActivityStatus = "ACTIVITY_STATUS_CONSENSUS_NEEDED"
	ActivityStatusRejected        ActivityStatus = "ACTIVITY_STATUS_REJECTED"
)

// StampedRequest is an opaque client-signed request. The body and stamp are
// computed by the client and never inspected or mutated here; the relay only
// selects routing and packaging from the activity type and auth mode.
type StampedRequest struct {
	// Body is the raw signed request body, forwarded verbatim.
	Body []byte

	// Stamp is the client-produced signature over Body.
	Stamp string

	// ActivityType selects the provider endpoint.
	ActivityType ActivityType

	// AuthMode selects header vs. embedded-signature packaging.
	AuthMode AuthMode
}

// Validate checks that the request carries the material the provider needs.
func (r StampedRequest) Validate() error {
	if len(r.Body) == 0 {
		return errors.New("stamped request body is empty")
	}
	if r.Stamp == "" {
		return errors.New("stamped request signature is empty")
	}
	if _, err := NewAuthMode(string(r.AuthMode)); err != nil {
		return err
	}
	return nil
}

// ActivityEnvelope is the raw decoded activity from a provider response.
// Result is left as an opaque nested structure; the normalize package
// extracts canonical records from it. Envelopes are created per call and
// discarded after normalization.
type ActivityEnvelope struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organizationId,omitempty"`
	Status         ActivityStatus `json:"status"`
	Type           ActivityType   `json:"type"`
	TimestampMS    string         `json:"timestampMs,omitempty"`
	Result         map[string]any `json:"result"`
}

// Credentials are the decrypted contents of a provider credential bundle.
// Sensitive: returned to the caller once, never cached or logged.
type Credentials struct {
	APIKeyID       string `json:"apiKeyId"`
	APIKey         string `json:"apiKey"`
	PrivateKey     string `json:"privateKey"`
	OrganizationID string `json:"organizationId"`
	UserID         string `json:"userId"`
}

// SessionMetadata is the informational record stamped alongside negotiated
// credentials. Expiry (15 min read-write, 1 hr read-only) is enforced by the
// caller's session store; the relay only stamps creation time.
type SessionMetadata struct {
	APIKeyID  string `json:"api_key_id"`
	CreatedAt int64  `json:"created_at"`
}

// Stamper produces a signature stamp over an outbound activity body. The
// negotiator uses it for session activities it authors itself; client-signed
// requests arrive with the stamp already computed and never pass through a
// Stamper.
type Stamper interface {
	Stamp(body []byte) (string, error)
}
