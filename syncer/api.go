// Package syncer reconciles local optimistic game state with the remote
// store: it loads with a durable-cache fallback, debounces saves, queues
// mutations while disconnected, and replays them in order on reconnect.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashrig/hashrig/game"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
	maxRetryDelay      = 5 * time.Second
)

// ErrUnauthorized marks an authentication failure. It is never retried and
// never falls back to the cache.
var ErrUnauthorized = errors.New("authentication required")

// ConflictError is returned when the remote store rejects a save because the
// If-Match version no longer matches. Version carries the authoritative
// server-side version so the caller can reload without guessing.
type ConflictError struct {
	Version int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict, server at version %d", e.Version)
}

// User is the account identity returned by the auth endpoints.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type authResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Token string `json:"token,omitempty"`
	User  *User  `json:"user,omitempty"`
}

type loadResponse struct {
	OK        bool        `json:"ok"`
	Error     string      `json:"error,omitempty"`
	GameState *game.State `json:"gameState,omitempty"`
}

type saveRequest struct {
	GameState game.State `json:"gameState"`
}

type saveResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Version int64  `json:"version,omitempty"`
}

// Client talks to the remote game store. Transport-level failures (no
// response received) are retried with a linearly increasing delay; responses
// the server actually produced are not.
type Client struct {
	http        *http.Client
	baseURL     string
	token       string
	maxAttempts int
	retryDelay  time.Duration
}

func NewClient(baseURL string) *Client {
	return &Client{
		http:        &http.Client{Timeout: 15 * time.Second},
		baseURL:     baseURL,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// SetRetry tunes the transport retry policy. Tests shrink the delays.
func (c *Client) SetRetry(attempts int, delay time.Duration) {
	if attempts > 0 {
		c.maxAttempts = attempts
	}
	c.retryDelay = delay
}

// SetHTTPClient swaps the underlying HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.http = client
}

func (c *Client) Token() string {
	return c.token
}

// Register creates an account and signs the client in.
func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	return c.auth(ctx, "/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

// Login authenticates an existing account and stores the session token.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	return c.auth(ctx, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
}

func (c *Client) auth(ctx context.Context, path string, payload map[string]string) (*User, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	res, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var response authResponse
	if err := decodeJSON(res.Body, &response); err != nil {
		return nil, err
	}
	if res.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if !response.OK {
		return nil, errors.New(apiError(response.Error, res.StatusCode))
	}
	c.token = response.Token
	return response.User, nil
}

// LoadState fetches the remote game state.
func (c *Client) LoadState(ctx context.Context) (game.State, error) {
	res, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/game/load", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		return req, nil
	})
	if err != nil {
		return game.State{}, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return game.State{}, ErrUnauthorized
	}

	var response loadResponse
	if err := decodeJSON(res.Body, &response); err != nil {
		return game.State{}, err
	}
	if !response.OK || response.GameState == nil {
		return game.State{}, errors.New(apiError(response.Error, res.StatusCode))
	}
	return *response.GameState, nil
}

// SaveState submits a state conditioned on its version matching server-side
// state. requestID is a per-request identity token echoed into server logs.
// On acceptance it returns the new authoritative version.
func (c *Client) SaveState(ctx context.Context, state game.State, requestID string) (int64, error) {
	body, err := json.Marshal(saveRequest{GameState: state})
	if err != nil {
		return 0, err
	}

	res, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/game/save", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("If-Match", strconv.FormatInt(state.Version, 10))
		req.Header.Set("X-Request-ID", requestID)
		return req, nil
	})
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return 0, ErrUnauthorized
	}

	var response saveResponse
	if err := decodeJSON(res.Body, &response); err != nil {
		return 0, err
	}
	if res.StatusCode == http.StatusConflict {
		return 0, &ConflictError{Version: response.Version}
	}
	if !response.OK {
		return 0, errors.New(apiError(response.Error, res.StatusCode))
	}
	return response.Version, nil
}

// EmitTelemetry ships a client event to the server, best effort.
func (c *Client) EmitTelemetry(ctx context.Context, eventType string, payload interface{}) error {
	raw, err := json.Marshal(map[string]interface{}{
		"eventType": eventType,
		"payload":   payload,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/telemetry", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// Ping checks server reachability. Used as the reconnect probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// do runs a request, retrying only when no response was received at all. The
// request is rebuilt per attempt so bodies can be re-read.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}
		res, err := c.http.Do(req)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if attempt == c.maxAttempts {
			break
		}
		delay := time.Duration(attempt) * c.retryDelay
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, &transportError{err: lastErr}
}

// transportError wraps a connectivity-level failure: the request never got a
// response. These are the only failures the offline queue absorbs.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "network unreachable: " + e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

// IsTransient reports whether err was a connectivity-level failure rather
// than a server-returned error.
func IsTransient(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}

func apiError(code string, status int) string {
	if code != "" {
		return code
	}
	return "unexpected server response: " + strconv.Itoa(status)
}

func decodeJSON(reader io.Reader, target interface{}) error {
	decoder := json.NewDecoder(reader)
	return decoder.Decode(target)
}
