package client

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/wilt/internal/client/apitest"
	"github.com/dmitrijs2005/wilt/internal/client/metrics"
	"github.com/dmitrijs2005/wilt/internal/client/models"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory TokenStore.
type memStore struct {
	mu     sync.Mutex
	values map[string]string

	SaveErr error
	Cleared int
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (m *memStore) seed(access, username, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if access != "" {
		m.values["access_token"] = access
	}
	if username != "" {
		m.values["username"] = username
	}
	if password != "" {
		m.values["password"] = password
	}
}

func (m *memStore) get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

func (m *memStore) AccessToken(context.Context) string { return m.get("access_token") }

func (m *memStore) Credentials(context.Context) (models.Credentials, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := models.Credentials{Username: m.values["username"], Password: m.values["password"]}
	return c, c.Username != "" && c.Password != ""
}

func (m *memStore) SaveTokens(_ context.Context, tokens models.TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.values["access_token"] = tokens.Access
	m.values["refresh_token"] = tokens.Refresh
	return nil
}

func (m *memStore) ClearAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	m.Cleared++
	return nil
}

type harness struct {
	srv     *apitest.Server
	store   *memStore
	client  *HTTPClient
	metrics *metrics.Metrics
	expired atomic.Int32
}

func newHarness(t *testing.T, breaker BreakerConfig) *harness {
	t.Helper()

	h := &harness{
		srv:     apitest.New(t),
		store:   newMemStore(),
		metrics: metrics.New(),
	}

	c, err := NewHTTPClient(Options{
		BaseURL:          h.srv.URL,
		Timeout:          5 * time.Second,
		Store:            h.store,
		Breaker:          breaker,
		OnSessionExpired: func() { h.expired.Add(1) },
		Metrics:          h.metrics,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	h.client = c

	return h
}

// loggedIn seeds a user and a stored session for them.
func (h *harness) loggedIn(username, password string) string {
	h.srv.AddUser(username, password)
	token := h.srv.Token(username)
	h.store.seed(token, username, password)
	return token
}
