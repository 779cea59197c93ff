package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votis/wallet-relay/interfaces"
)

func TestDoPassesMethodHeadersAndBody(t *testing.T) {
	var gotMethod, gotStamp, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotStamp = r.Header.Get("X-Stamp")
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"activity":{}}`))
	}))
	defer srv.Close()

	client := New(0)
	resp, err := client.Do(context.Background(), &interfaces.TransportRequest{
		Method:  http.MethodPost,
		URL:     srv.URL + "/public/v1/submit/create_wallet",
		Headers: map[string]string{"X-Stamp": "stamp-1", "Content-Type": "application/json"},
		Body:    []byte(`{"type":"ACTIVITY_TYPE_CREATE_WALLET"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "stamp-1", gotStamp)
	assert.Equal(t, `{"type":"ACTIVITY_TYPE_CREATE_WALLET"}`, gotBody)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"activity":{}}`, string(resp.Body))
}

func TestDoReturnsNon2xxAsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := New(0)
	resp, err := client.Do(context.Background(), &interfaces.TransportRequest{
		Method: http.MethodPost,
		URL:    srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "nope")
}

func TestDoConnectionRefused(t *testing.T) {
	// Grab a port that is guaranteed closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := New(time.Second)
	resp, err := client.Do(context.Background(), &interfaces.TransportRequest{
		Method: http.MethodPost,
		URL:    url,
	})
	require.Error(t, err)
	assert.Nil(t, resp)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := New(time.Minute)
	_, err := client.Do(ctx, &interfaces.TransportRequest{
		Method: http.MethodGet,
		URL:    srv.URL,
	})
	assert.Error(t, err)
}
