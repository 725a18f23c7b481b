package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/wilt/internal/logging"
	"github.com/sony/gobreaker"
)

// Connection states reported by State.
const (
	StateOnline  = "online"
	StateOffline = "offline"
	StateProbing = "probing"
)

var errServerFailure = errors.New("server error")

// BreakerConfig controls when the client stops calling a failing server.
type BreakerConfig struct {
	Name string
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
	// Timeout is how long the breaker stays open before letting one probe through.
	Timeout time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:     "wilt-api",
		Failures: 5,
		Timeout:  30 * time.Second,
	}
}

func newBreaker(cfg BreakerConfig, logger logging.Logger) *gobreaker.CircuitBreaker {
	if cfg.Failures == 0 {
		cfg.Failures = DefaultBreakerConfig().Failures
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// breakerTransport counts network errors and 5xx responses against the
// breaker. While the breaker is open requests fail with ErrUnavailable
// without touching the network.
type breakerTransport struct {
	base http.RoundTripper
	cb   *gobreaker.CircuitBreaker
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	v, err := t.cb.Execute(func() (any, error) {
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerFailure
		}
		return resp, nil
	})

	switch {
	case err == nil, errors.Is(err, errServerFailure):
		return v.(*http.Response), nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

func breakerState(cb *gobreaker.CircuitBreaker) string {
	switch cb.State() {
	case gobreaker.StateOpen:
		return StateOffline
	case gobreaker.StateHalfOpen:
		return StateProbing
	default:
		return StateOnline
	}
}
