package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/wilt/internal/client/metrics"
	"github.com/dmitrijs2005/wilt/internal/client/models"
	"github.com/dmitrijs2005/wilt/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	loginPath       = "/api/login/"
	requestIDHeader = "X-Request-ID"
)

// TokenStore is the part of the session store the transport relies on.
type TokenStore interface {
	AccessToken(ctx context.Context) string
	Credentials(ctx context.Context) (models.Credentials, bool)
	SaveTokens(ctx context.Context, tokens models.TokenPair) error
	ClearAll(ctx context.Context) error
}

// authorization is the client's own bearer token, used when the store has
// none. It is scoped to one HTTPClient.
type authorization struct {
	mu    sync.RWMutex
	token string
}

func (a *authorization) Set(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

func (a *authorization) Clear() { a.Set("") }

func (a *authorization) Get() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

type retriedKey struct{}

func markRetried(req *http.Request) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), retriedKey{}, true))
}

func isRetried(req *http.Request) bool {
	v, _ := req.Context().Value(retriedKey{}).(bool)
	return v
}

func isLoginRequest(req *http.Request) bool {
	return strings.Contains(req.URL.Path, loginPath)
}

// authTransport attaches the bearer token and recovers from a 401 by
// logging in again with the stored credentials and replaying the request
// once. Concurrent 401s for the same stale token share one login.
type authTransport struct {
	base         http.RoundTripper
	baseURL      string
	store        TokenStore
	authz        *authorization
	group        singleflight.Group
	loginTimeout time.Duration
	onExpired    func()
	logger       logging.Logger
	metrics      *metrics.Metrics
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	token := t.currentToken(ctx)

	resp, err := t.send(req, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || isRetried(req) || isLoginRequest(req) {
		return resp, nil
	}

	replay, err := rewind(req)
	if err != nil {
		t.logger.Warn(ctx, "cannot replay request after 401", "method", req.Method, "path", req.URL.Path, "error", err)
		return resp, nil
	}
	drain(resp)

	fresh, err := t.reauthenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	return t.send(markRetried(replay), fresh)
}

func (t *authTransport) currentToken(ctx context.Context) string {
	if token := t.store.AccessToken(ctx); token != "" {
		return token
	}
	return t.authz.Get()
}

func (t *authTransport) send(req *http.Request, token string) (*http.Response, error) {
	r := req.Clone(req.Context())
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	if r.Header.Get(requestIDHeader) == "" {
		r.Header.Set(requestIDHeader, uuid.NewString())
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(r)

	code := 0
	if resp != nil {
		code = resp.StatusCode
	}
	t.metrics.ObserveRequest(r.Method, code)
	t.logger.Debug(r.Context(), "api request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", code,
		"request_id", r.Header.Get(requestIDHeader),
		"elapsed", time.Since(start),
	)

	return resp, err
}

// reauthenticate obtains a fresh access token to replace stale. A missing
// credential pair or a failed login ends the session.
func (t *authTransport) reauthenticate(ctx context.Context, stale string) (string, error) {
	creds, ok := t.store.Credentials(ctx)
	if !ok {
		t.metrics.ObserveReauth(metrics.ReauthNoCredentials)
		t.expire(ctx, ErrNoStoredCredentials)
		return "", ErrNoStoredCredentials
	}

	v, err, _ := t.group.Do(stale, func() (any, error) {
		for _, current := range []string{t.store.AccessToken(ctx), t.authz.Get()} {
			if current != "" && current != stale {
				t.metrics.ObserveReauth(metrics.ReauthShared)
				return current, nil
			}
		}

		tokens, err := t.login(ctx, creds)
		if err != nil {
			t.metrics.ObserveReauth(metrics.ReauthFailure)
			t.expire(ctx, err)
			return nil, err
		}

		if err := t.store.SaveTokens(ctx, tokens); err != nil {
			t.logger.Warn(ctx, "store refreshed tokens", "error", err)
		}
		t.authz.Set(tokens.Access)
		t.metrics.ObserveReauth(metrics.ReauthSuccess)
		t.logger.Info(ctx, "session renewed", "username", creds.Username)
		return tokens.Access, nil
	})
	if err != nil {
		return "", fmt.Errorf("re-authentication failed: %w", err)
	}

	return v.(string), nil
}

func (t *authTransport) login(ctx context.Context, creds models.Credentials) (models.TokenPair, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.loginTimeout)
	defer cancel()

	body, err := json.Marshal(creds)
	if err != nil {
		return models.TokenPair{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return models.TokenPair{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.send(req, "")
	if err != nil {
		return models.TokenPair{}, err
	}
	defer resp.Body.Close()

	lr, err := decodeLoginResponse(resp)
	if err != nil {
		return models.TokenPair{}, err
	}
	return *lr.Tokens, nil
}

// expire ends the session after an unrecoverable 401.
func (t *authTransport) expire(ctx context.Context, cause error) {
	t.logger.Warn(ctx, "session expired", "reason", cause)

	if err := t.store.ClearAll(ctx); err != nil {
		t.logger.Error(ctx, "clear session store", "error", err)
	}
	t.authz.Clear()

	if t.onExpired != nil {
		t.onExpired()
	}
}

// decodeLoginResponse accepts any 2xx carrying an access token.
func decodeLoginResponse(resp *http.Response) (*models.LoginResponse, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp)
	}

	var lr models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if lr.Tokens == nil || lr.Tokens.Access == "" {
		return nil, fmt.Errorf("%w: no tokens in login response", ErrInvalidResponse)
	}
	return &lr, nil
}

var errNotReplayable = errors.New("request body cannot be replayed")

// rewind returns a copy of req with a fresh body.
func rewind(req *http.Request) (*http.Request, error) {
	r := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return r, nil
	}
	if req.GetBody == nil {
		return nil, errNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	r.Body = body
	return r, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}
