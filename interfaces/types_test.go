package interfaces

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthMode(t *testing.T) {
	for _, valid := range []string{"api_key", "webauthn", "oauth"} {
		mode, err := NewAuthMode(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(mode))
	}

	_, err := NewAuthMode("basic")
	assert.Error(t, err)
	_, err = NewAuthMode("")
	assert.Error(t, err)
}

func TestSubmitPath(t *testing.T) {
	path, err := ActivityTypeCreateReadWriteSession.SubmitPath()
	require.NoError(t, err)
	assert.Equal(t, "/public/v1/submit/create_read_write_session", path)

	_, err = ActivityType("ACTIVITY_TYPE_UNKNOWN").SubmitPath()
	assert.Error(t, err)
}

func TestStampedRequestValidate(t *testing.T) {
	valid := StampedRequest{
		Body:         []byte(`{}`),
		Stamp:        "stamp",
		ActivityType: ActivityTypeCreateWallet,
		AuthMode:     AuthModeAPIKey,
	}
	assert.NoError(t, valid.Validate())

	noBody := valid
	noBody.Body = nil
	assert.Error(t, noBody.Validate())

	noStamp := valid
	noStamp.Stamp = ""
	assert.Error(t, noStamp.Validate())

	badMode := valid
	badMode.AuthMode = "telnet"
	assert.Error(t, badMode.Validate())
}

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("tcp reset")
	err := WrapError(KindTransportUnreachable, cause, "provider unreachable")

	assert.Equal(t, KindTransportUnreachable, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "provider unreachable")

	upstream := UpstreamError(429, "rate limited")
	assert.Equal(t, 429, upstream.UpstreamStatus)
	assert.Contains(t, upstream.Error(), "429")
	assert.Contains(t, upstream.Error(), "rate limited")

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindInvalidInput))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(KindTransportUnreachable))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(KindUpstreamRejected))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(KindMalformedResponse))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(KindMissingExpectedField))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(KindDecryptionFailed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrorKind("mystery")))
}
