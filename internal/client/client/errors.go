package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidResponse = errors.New("invalid response from server")
	ErrNotFound        = errors.New("not found")

	// ErrNoStoredCredentials is returned when a 401 cannot be recovered
	// because the session store holds no username/password.
	ErrNoStoredCredentials = fmt.Errorf("%w: no stored credentials", ErrUnauthorized)
)

// APIError is a non-success response of the WILT API. Message and Detail
// hold the server's "message" and "error" (or DRF "detail") fields; Fields
// holds per-field validation errors.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if reason := e.Reason(); reason != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, reason)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// Unwrap maps the status onto the package sentinels so callers can use
// errors.Is(err, ErrUnauthorized) and friends.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusBadGateway ||
		e.StatusCode == http.StatusServiceUnavailable ||
		e.StatusCode == http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return nil
	}
}

// Reason returns the most specific explanation the server gave: Detail,
// then Message, then the first field error.
func (e *APIError) Reason() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Message != "" {
		return e.Message
	}
	return e.FieldSummary()
}

// FieldSummary renders the first field error as "field: problem", fields
// taken in name order.
func (e *APIError) FieldSummary() string {
	if len(e.Fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if problems := e.Fields[name]; len(problems) > 0 {
			return name + ": " + problems[0]
		}
	}
	return ""
}

const maxErrorBody = 64 << 10

// newAPIError builds an APIError from resp. The body is read but not closed.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Detail = strings.TrimSpace(string(body))
		if len(apiErr.Detail) > 200 {
			apiErr.Detail = apiErr.Detail[:200]
		}
		return apiErr
	}

	for key, value := range raw {
		switch key {
		case "message":
			apiErr.Message = decodeString(value)
		case "error":
			apiErr.Detail = decodeString(value)
		case "detail":
			if apiErr.Detail == "" {
				apiErr.Detail = decodeString(value)
			}
		default:
			var problems []string
			if err := json.Unmarshal(value, &problems); err == nil && len(problems) > 0 {
				if apiErr.Fields == nil {
					apiErr.Fields = make(map[string][]string)
				}
				apiErr.Fields[key] = problems
			}
		}
	}
	return apiErr
}

func decodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
