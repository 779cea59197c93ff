package session

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votis/wallet-relay/cryptoutils"
	"github.com/votis/wallet-relay/interfaces"
)

// fakeExecutor returns a canned envelope and records the stamped request it
// received.
type fakeExecutor struct {
	envelope *interfaces.ActivityEnvelope
	err      error
	received *interfaces.StampedRequest
}

func (f *fakeExecutor) Execute(ctx context.Context, stamped interfaces.StampedRequest) (*interfaces.ActivityEnvelope, error) {
	f.received = &stamped
	if f.err != nil {
		return nil, f.err
	}
	return f.envelope, nil
}

type fakeStamper struct{}

func (fakeStamper) Stamp(body []byte) (string, error) { return "test-stamp", nil }

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func newNegotiator(executor *fakeExecutor) *Negotiator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n := New(executor, fakeStamper{}, logger, nil)
	return n.WithClock(fixedClock{at: time.UnixMilli(1724668800000)})
}

func TestCreateReadOnly(t *testing.T) {
	executor := &fakeExecutor{
		envelope: &interfaces.ActivityEnvelope{
			ID:     "act-ro",
			Status: interfaces.ActivityStatusCompleted,
			Result: map[string]any{
				"createReadOnlySessionResult": map[string]any{
					"apiKeyId": "ro-key-1",
					"session":  "token-abc",
				},
			},
		},
	}

	result, err := newNegotiator(executor).CreateReadOnly(context.Background(), "org-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ro-key-1", result["apiKeyId"])
	assert.Equal(t, "token-abc", result["session"])

	// The negotiator authored and stamped the activity itself.
	require.NotNil(t, executor.received)
	assert.Equal(t, interfaces.AuthModeAPIKey, executor.received.AuthMode)
	assert.Equal(t, "test-stamp", executor.received.Stamp)
	assert.Equal(t, interfaces.ActivityTypeCreateReadOnlySession, executor.received.ActivityType)

	var body struct {
		Type           string         `json:"type"`
		OrganizationID string         `json:"organizationId"`
		Parameters     map[string]any `json:"parameters"`
		TimestampMS    string         `json:"timestampMs"`
	}
	require.NoError(t, json.Unmarshal(executor.received.Body, &body))
	assert.Equal(t, "ACTIVITY_TYPE_CREATE_READ_ONLY_SESSION", body.Type)
	assert.Equal(t, "org-1", body.OrganizationID)
	assert.Equal(t, "user-1", body.Parameters["userId"])
	assert.Equal(t, "1724668800000", body.TimestampMS)
}

func TestCreateReadOnlyEmptyOrg(t *testing.T) {
	executor := &fakeExecutor{}
	_, err := newNegotiator(executor).CreateReadOnly(context.Background(), "", "")
	assert.Equal(t, interfaces.KindInvalidInput, interfaces.KindOf(err))
	assert.Nil(t, executor.received)
}

func TestCreateReadOnlyUnexpectedShape(t *testing.T) {
	executor := &fakeExecutor{
		envelope: &interfaces.ActivityEnvelope{
			Result: map[string]any{"somethingElse": map[string]any{}},
		},
	}

	_, err := newNegotiator(executor).CreateReadOnly(context.Background(), "org-1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingResult)
	assert.Equal(t, interfaces.KindMissingExpectedField, interfaces.KindOf(err))
}

// readWriteEnvelope builds a provider answer whose credential bundle is
// encrypted for the given public key, simulating the provider side.
func readWriteEnvelope(t *testing.T, publicKeyHex string, credentials interfaces.Credentials) *interfaces.ActivityEnvelope {
	t.Helper()
	plaintext, err := json.Marshal(credentials)
	require.NoError(t, err)

	bundle, err := cryptoutils.EncryptWithPublicKey(publicKeyHex, plaintext)
	require.NoError(t, err)

	return &interfaces.ActivityEnvelope{
		ID:     "act-rw",
		Status: interfaces.ActivityStatusCompleted,
		Result: map[string]any{
			"createReadWriteSessionResultV2": map[string]any{
				"apiKeyId":         credentials.APIKeyID,
				"credentialBundle": hex.EncodeToString(bundle),
			},
		},
	}
}

func TestCreateReadWriteEndToEnd(t *testing.T) {
	keypair, err := cryptoutils.GenerateKeypair()
	require.NoError(t, err)
	defer keypair.Zero()

	issued := interfaces.Credentials{
		APIKeyID:       "rw-key-1",
		APIKey:         "api-secret",
		PrivateKey:     "aa11",
		OrganizationID: "org-1",
		UserID:         "user-1",
	}
	executor := &fakeExecutor{envelope: readWriteEnvelope(t, keypair.PublicKeyHex, issued)}

	bundle, err := newNegotiator(executor).CreateReadWrite(
		context.Background(), "org-1", "", keypair.PublicKeyHex, keypair.PrivateKeyHex())
	require.NoError(t, err)

	assert.Equal(t, issued, bundle.Credentials)
	assert.Equal(t, "rw-key-1", bundle.Metadata.APIKeyID)
	assert.Equal(t, int64(1724668800000), bundle.Metadata.CreatedAt)

	// The public key rode along in the activity parameters.
	var body struct {
		Parameters map[string]any `json:"parameters"`
	}
	require.NoError(t, json.Unmarshal(executor.received.Body, &body))
	assert.Equal(t, keypair.PublicKeyHex, body.Parameters["targetPublicKey"])
}

func TestCreateReadWriteValidatesInput(t *testing.T) {
	executor := &fakeExecutor{}
	n := newNegotiator(executor)

	_, err := n.CreateReadWrite(context.Background(), "", "", "pub", "priv")
	assert.Equal(t, interfaces.KindInvalidInput, interfaces.KindOf(err))

	_, err = n.CreateReadWrite(context.Background(), "org-1", "", "", "priv")
	assert.Equal(t, interfaces.KindInvalidInput, interfaces.KindOf(err))

	_, err = n.CreateReadWrite(context.Background(), "org-1", "", "pub", "")
	assert.Equal(t, interfaces.KindInvalidInput, interfaces.KindOf(err))

	assert.Nil(t, executor.received)
}

func TestCreateReadWriteMissingResult(t *testing.T) {
	executor := &fakeExecutor{
		envelope: &interfaces.ActivityEnvelope{Result: map[string]any{}},
	}

	_, err := newNegotiator(executor).CreateReadWrite(context.Background(), "org-1", "", "ab", "cd")
	assert.ErrorIs(t, err, ErrMissingResult)
}

func TestCreateReadWriteMissingBundle(t *testing.T) {
	executor := &fakeExecutor{
		envelope: &interfaces.ActivityEnvelope{
			Result: map[string]any{
				"createReadWriteSessionResultV2": map[string]any{"apiKeyId": "rw-key-1"},
			},
		},
	}

	_, err := newNegotiator(executor).CreateReadWrite(context.Background(), "org-1", "", "ab", "cd")
	assert.ErrorIs(t, err, ErrMissingBundle)
	assert.Equal(t, interfaces.KindMissingExpectedField, interfaces.KindOf(err))
}

func TestCreateReadWriteInvalidBundleType(t *testing.T) {
	executor := &fakeExecutor{
		envelope: &interfaces.ActivityEnvelope{
			Result: map[string]any{
				"createReadWriteSessionResultV2": map[string]any{
					"credentialBundle": 12345,
				},
			},
		},
	}

	_, err := newNegotiator(executor).CreateReadWrite(context.Background(), "org-1", "", "ab", "cd")
	assert.ErrorIs(t, err, ErrInvalidBundleType)
	assert.Equal(t, interfaces.KindMalformedResponse, interfaces.KindOf(err))
}

func TestCreateReadWriteWrongKeyDecryptFails(t *testing.T) {
	keypair, err := cryptoutils.GenerateKeypair()
	require.NoError(t, err)
	other, err := cryptoutils.GenerateKeypair()
	require.NoError(t, err)

	executor := &fakeExecutor{
		envelope: readWriteEnvelope(t, keypair.PublicKeyHex, interfaces.Credentials{APIKeyID: "k"}),
	}

	_, err = newNegotiator(executor).CreateReadWrite(
		context.Background(), "org-1", "", keypair.PublicKeyHex, other.PrivateKeyHex())
	require.Error(t, err)
	assert.Equal(t, interfaces.KindDecryptionFailed, interfaces.KindOf(err))
	assert.ErrorIs(t, err, cryptoutils.ErrAuthenticationFailed)
}

func TestDecryptBundleStandalone(t *testing.T) {
	keypair, err := cryptoutils.GenerateKeypair()
	require.NoError(t, err)

	plaintext, err := json.Marshal(interfaces.Credentials{APIKeyID: "standalone-key", APIKey: "s"})
	require.NoError(t, err)
	bundle, err := cryptoutils.EncryptWithPublicKey(keypair.PublicKeyHex, plaintext)
	require.NoError(t, err)

	n := newNegotiator(&fakeExecutor{})
	credentials, err := n.DecryptBundle(hex.EncodeToString(bundle), keypair.PrivateKeyHex())
	require.NoError(t, err)
	assert.Equal(t, "standalone-key", credentials.APIKeyID)

	_, err = n.DecryptBundle("", keypair.PrivateKeyHex())
	assert.Equal(t, interfaces.KindInvalidInput, interfaces.KindOf(err))

	_, err = n.DecryptBundle(hex.EncodeToString(bundle), "")
	assert.Equal(t, interfaces.KindInvalidInput, interfaces.KindOf(err))
}

func TestCreateReadWritePropagatesUpstreamError(t *testing.T) {
	executor := &fakeExecutor{err: interfaces.UpstreamError(500, "provider exploded")}

	_, err := newNegotiator(executor).CreateReadWrite(context.Background(), "org-1", "", "ab", "cd")
	require.Error(t, err)

	var relayErr *interfaces.Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, 500, relayErr.UpstreamStatus)
	assert.Equal(t, "provider exploded", relayErr.Message)
}
