package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/wilt/internal/client/metrics"
	"github.com/dmitrijs2005/wilt/internal/client/models"
	"github.com/dmitrijs2005/wilt/internal/logging"
	"github.com/sony/gobreaker"
)

const (
	registerPath = "/wilt/register/"
	entriesPath  = "/api/entries/"
)

// Options configures an HTTPClient. BaseURL and Store are required.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Store   TokenStore
	Breaker BreakerConfig

	// OnSessionExpired is called after a 401 could not be recovered and the
	// session store has been cleared.
	OnSessionExpired func()

	Logger  logging.Logger
	Metrics *metrics.Metrics

	// Transport is the underlying round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// HTTPClient talks to the WILT REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	auth    *authTransport
	breaker *gobreaker.CircuitBreaker
	logger  logging.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) url", opts.BaseURL)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("token store is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	bcfg := opts.Breaker
	if bcfg.Name == "" {
		bcfg.Name = DefaultBreakerConfig().Name
	}

	baseURL := strings.TrimRight(u.String(), "/")
	cb := newBreaker(bcfg, logger)

	auth := &authTransport{
		base:         &breakerTransport{base: base, cb: cb},
		baseURL:      baseURL,
		store:        opts.Store,
		authz:        &authorization{},
		loginTimeout: timeout,
		onExpired:    opts.OnSessionExpired,
		logger:       logger,
		metrics:      m,
	}

	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Transport: auth, Timeout: timeout},
		auth:    auth,
		breaker: cb,
		logger:  logger,
	}, nil
}

// Register creates an account. On success it returns the server's message.
func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, registerPath, reg, http.StatusCreated, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Login exchanges credentials for a token pair. It does not touch the
// session store or the client's authorization.
func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (models.TokenPair, error) {
	resp, err := c.send(ctx, http.MethodPost, loginPath, creds)
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

func (c *HTTPClient) ListEntries(ctx context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	if err := c.do(ctx, http.MethodGet, entriesPath, nil, http.StatusOK, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

func (c *HTTPClient) CreateEntry(ctx context.Context, draft models.EntryDraft) (*models.Entry, error) {
	var e models.Entry
	if err := c.do(ctx, http.MethodPost, entriesPath, draft, http.StatusCreated, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) GetEntry(ctx context.Context, id int64) (*models.Entry, error) {
	var e models.Entry
	if err := c.do(ctx, http.MethodGet, entryPath(id), nil, http.StatusOK, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) UpdateEntry(ctx context.Context, id int64, draft models.EntryDraft) (*models.Entry, error) {
	var e models.Entry
	if err := c.do(ctx, http.MethodPut, entryPath(id), draft, http.StatusOK, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, entryPath(id), nil, http.StatusNoContent, nil)
}

// SetAuthorization makes token this client's bearer token for requests
// sent while the session store holds none.
func (c *HTTPClient) SetAuthorization(token string) { c.auth.authz.Set(token) }

func (c *HTTPClient) ClearAuthorization() { c.auth.authz.Clear() }

// Authorization returns the client's own bearer token.
func (c *HTTPClient) Authorization() string { return c.auth.authz.Get() }

// State reports the circuit breaker as online, offline or probing.
func (c *HTTPClient) State() string { return breakerState(c.breaker) }

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func entryPath(id int64) string {
	return entriesPath + strconv.FormatInt(id, 10) + "/"
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// do sends a JSON request and decodes the response into out when the
// status is want. Any other status is an error.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, want int, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return fmt.Errorf("%w: %s %s returned %d", ErrInvalidResponse, method, path, resp.StatusCode)
		}
		return newAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrInvalidResponse, method, path, err)
	}
	return nil
}
