package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashrig/hashrig/parts"
)

// flakyTransport drops the first failBefore requests on the floor, then
// delegates to the real transport. Models a connection that comes back.
type flakyTransport struct {
	calls      int32
	failBefore int32
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if atomic.AddInt32(&f.calls, 1) <= f.failBefore {
		return nil, errors.New("connection refused")
	}
	return http.DefaultTransport.RoundTrip(req)
}

func TestClientRetriesTransportFailures(t *testing.T) {
	var loads int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&loads, 1)
		state := validState(parts.DefaultCatalog())
		json.NewEncoder(w).Encode(loadResponse{OK: true, GameState: &state})
	}))
	defer srv.Close()

	transport := &flakyTransport{failBefore: 2}
	client := NewClient(srv.URL)
	client.SetRetry(3, time.Millisecond)
	client.SetHTTPClient(&http.Client{Transport: transport})

	state, err := client.LoadState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), state.Version)
	assert.Equal(t, int32(3), atomic.LoadInt32(&transport.calls), "two failures then one success")
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

func TestClientRetryExhaustionIsTransient(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	client.SetRetry(3, time.Millisecond)

	_, err := client.LoadState(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestClientDoesNotRetryServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(saveResponse{OK: false, Error: "INTERNAL_ERROR"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetRetry(3, time.Millisecond)

	_, err := client.SaveState(context.Background(), validState(parts.DefaultCatalog()), "req-1")
	require.Error(t, err)
	assert.False(t, IsTransient(err), "a response the server produced is final")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestSaveStateSendsConditionalHeaders(t *testing.T) {
	var gotIfMatch, gotRequestID, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIfMatch = r.Header.Get("If-Match")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(saveResponse{OK: true, Version: 4})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetToken("tok-abc")

	version, err := client.SaveState(context.Background(), validState(parts.DefaultCatalog()), "req-42")
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)
	assert.Equal(t, "3", gotIfMatch)
	assert.Equal(t, "req-42", gotRequestID)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestSaveStateConflictCarriesServerVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(saveResponse{OK: false, Error: "VERSION_CONFLICT", Version: 9})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.SaveState(context.Background(), validState(parts.DefaultCatalog()), "req-1")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(9), conflict.Version)
}

func TestLoginStoresSessionToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["password"] != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(authResponse{OK: false, Error: "INVALID_CREDENTIALS"})
			return
		}
		json.NewEncoder(w).Encode(authResponse{
			OK:    true,
			Token: "session-token",
			User:  &User{Username: creds["username"]},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	user, err := client.Login(context.Background(), "miner9000", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "miner9000", user.Username)
	assert.Equal(t, "session-token", client.Token())

	bad := NewClient(srv.URL)
	_, err = bad.Login(context.Background(), "miner9000", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, bad.Token())
}
