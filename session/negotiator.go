package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/votis/wallet-relay/cryptoutils"
	"github.com/votis/wallet-relay/interfaces"
	"github.com/votis/wallet-relay/metrics"
)

// Extraction failures are kept distinct so callers can tell "provider
// returned nothing" from "provider returned garbage".
var (
	// ErrMissingResult means the expected session result key was absent
	// from the activity result.
	ErrMissingResult = errors.New("session result missing from activity")

	// ErrMissingBundle means the session result carried no credential
	// bundle field.
	ErrMissingBundle = errors.New("credential bundle missing from session result")

	// ErrInvalidBundleType means the credential bundle field was present
	// but not a string.
	ErrInvalidBundleType = errors.New("credential bundle has unexpected type")
)

// SessionBundle is the outcome of a read-write negotiation: the decrypted
// credentials plus informational metadata. Credentials are returned to the
// caller once and never cached here.
type SessionBundle struct {
	Credentials interfaces.Credentials
	Metadata    interfaces.SessionMetadata
}

// Negotiator drives session creation against the custody provider. Each
// negotiation is a fresh, independent call; the negotiator keeps no state
// across invocations and is safe for concurrent use.
type Negotiator struct {
	executor interfaces.ActivityExecutor
	stamper  interfaces.Stamper
	clock    Clock
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// New creates a Negotiator submitting session activities through executor,
// signing them with stamper.
func New(executor interfaces.ActivityExecutor, stamper interfaces.Stamper, log *slog.Logger, m *metrics.Metrics) *Negotiator {
	return &Negotiator{
		executor: executor,
		stamper:  stamper,
		clock:    NewRealClock(),
		log:      log,
		metrics:  m,
	}
}

// WithClock returns a copy of the negotiator using the given clock.
func (n *Negotiator) WithClock(clock Clock) *Negotiator {
	copied := *n
	copied.clock = clock
	return &copied
}

// activityBody is the provider's activity submission shape.
type activityBody struct {
	Type           interfaces.ActivityType `json:"type"`
	OrganizationID string                  `json:"organizationId"`
	Parameters     map[string]any          `json:"parameters"`
	TimestampMS    string                  `json:"timestampMs"`
}

// CreateReadOnly negotiates a read-only session for the organization and
// optionally a specific user. On success it returns the provider's nested
// read-only-session result untouched; the caller owns token storage and the
// one-hour expiry.
func (n *Negotiator) CreateReadOnly(ctx context.Context, orgID, userID string) (map[string]any, error) {
	if orgID == "" {
		return nil, interfaces.NewError(interfaces.KindInvalidInput, "organization id is empty")
	}

	params := map[string]any{}
	if userID != "" {
		params["userId"] = userID
	}

	env, err := n.submit(ctx, interfaces.ActivityTypeCreateReadOnlySession, orgID, params)
	if err != nil {
		n.metrics.RecordSession("read_only", "error")
		return nil, err
	}

	result, ok := env.Result["createReadOnlySessionResult"].(map[string]any)
	if !ok {
		n.metrics.RecordSession("read_only", "unexpected_shape")
		return nil, interfaces.WrapError(interfaces.KindMissingExpectedField, ErrMissingResult,
			"createReadOnlySessionResult absent")
	}

	n.metrics.RecordSession("read_only", "ok")
	return result, nil
}

// CreateReadWrite negotiates a read-write session. The ephemeral keypair is
// generated by the caller via cryptoutils.GenerateKeypair so key generation
// stays explicit and testable; the public key is embedded in the session
// request and the provider binds the returned credential bundle to it. The
// private key exists only for the duration of this call: its decoded copies
// are wiped as soon as decryption completes, successfully or not.
func (n *Negotiator) CreateReadWrite(ctx context.Context, orgID, userID, targetPublicKeyHex, ephemeralPrivateKeyHex string) (*SessionBundle, error) {
	if orgID == "" {
		return nil, interfaces.NewError(interfaces.KindInvalidInput, "organization id is empty")
	}
	if targetPublicKeyHex == "" {
		return nil, interfaces.NewError(interfaces.KindInvalidInput, "target public key is empty")
	}
	if ephemeralPrivateKeyHex == "" {
		return nil, interfaces.NewError(interfaces.KindInvalidInput, "ephemeral private key is empty")
	}

	params := map[string]any{"targetPublicKey": targetPublicKeyHex}
	if userID != "" {
		params["userId"] = userID
	}

	env, err := n.submit(ctx, interfaces.ActivityTypeCreateReadWriteSession, orgID, params)
	if err != nil {
		n.metrics.RecordSession("read_write", "error")
		return nil, err
	}

	result, ok := env.Result["createReadWriteSessionResultV2"].(map[string]any)
	if !ok {
		n.metrics.RecordSession("read_write", "missing_result")
		return nil, interfaces.WrapError(interfaces.KindMissingExpectedField, ErrMissingResult,
			"createReadWriteSessionResultV2 absent")
	}

	rawBundle, ok := result["credentialBundle"]
	if !ok {
		n.metrics.RecordSession("read_write", "missing_bundle")
		return nil, interfaces.WrapError(interfaces.KindMissingExpectedField, ErrMissingBundle,
			"credentialBundle absent from session result")
	}

	bundleHex, ok := rawBundle.(string)
	if !ok {
		n.metrics.RecordSession("read_write", "invalid_bundle")
		return nil, interfaces.WrapError(interfaces.KindMalformedResponse, ErrInvalidBundleType,
			fmt.Sprintf("credentialBundle is %T, expected string", rawBundle))
	}

	credentials, err := n.DecryptBundle(bundleHex, ephemeralPrivateKeyHex)
	if err != nil {
		n.metrics.RecordSession("read_write", "decrypt_failed")
		return nil, err
	}

	n.metrics.RecordSession("read_write", "ok")
	return &SessionBundle{
		Credentials: *credentials,
		Metadata: interfaces.SessionMetadata{
			APIKeyID:  credentials.APIKeyID,
			CreatedAt: n.clock.Now().UnixMilli(),
		},
	}, nil
}

// DecryptBundle opens a previously-issued credential bundle outside the
// create flow, e.g. to retry after a dropped response. Both arguments are
// hex strings.
func (n *Negotiator) DecryptBundle(ciphertextHex, privateKeyHex string) (*interfaces.Credentials, error) {
	if ciphertextHex == "" {
		return nil, interfaces.NewError(interfaces.KindInvalidInput, "credential bundle is empty")
	}
	if privateKeyHex == "" {
		return nil, interfaces.NewError(interfaces.KindInvalidInput, "private key is empty")
	}

	plaintext, err := cryptoutils.Decrypt(ciphertextHex, privateKeyHex)
	if err != nil {
		if errors.Is(err, cryptoutils.ErrAuthenticationFailed) {
			// Tag failure can indicate tampering, not just a glitch.
			n.log.Warn("credential bundle failed authentication")
		}
		return nil, interfaces.WrapError(interfaces.KindDecryptionFailed, err, "could not open credential bundle")
	}
	defer cryptoutils.ZeroBytes(plaintext)

	var credentials interfaces.Credentials
	if err := json.Unmarshal(plaintext, &credentials); err != nil {
		return nil, interfaces.WrapError(interfaces.KindMalformedResponse, err, "decrypted bundle is not valid JSON")
	}

	return &credentials, nil
}

// submit builds, stamps, and relays one session activity in api_key mode.
func (n *Negotiator) submit(ctx context.Context, activityType interfaces.ActivityType, orgID string, params map[string]any) (*interfaces.ActivityEnvelope, error) {
	body, err := json.Marshal(activityBody{
		Type:           activityType,
		OrganizationID: orgID,
		Parameters:     params,
		TimestampMS:    strconv.FormatInt(n.clock.Now().UnixMilli(), 10),
	})
	if err != nil {
		return nil, interfaces.WrapError(interfaces.KindInvalidInput, err, "could not encode activity")
	}

	stampValue, err := n.stamper.Stamp(body)
	if err != nil {
		return nil, interfaces.WrapError(interfaces.KindInvalidInput, err, "could not stamp activity")
	}

	return n.executor.Execute(ctx, interfaces.StampedRequest{
		Body:         body,
		Stamp:        stampValue,
		ActivityType: activityType,
		AuthMode:     interfaces.AuthModeAPIKey,
	})
}
