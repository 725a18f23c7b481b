package cli

import (
	"errors"

	"github.com/dmitrijs2005/wilt/internal/client/client"
	"github.com/dmitrijs2005/wilt/internal/client/models"
	"github.com/dmitrijs2005/wilt/internal/client/services"
)

const (
	msgRegistered           = "Registration successful! Please login."
	msgRegisterFailed       = "Registration failed"
	msgLoginInvalidResponse = "Login failed - Invalid response from server"
	msgInvalidCredentials   = "Invalid credentials"
	msgUnavailable          = "Server unavailable, try again later"
	msgSessionExpired       = "Session expired, please login again."
	msgNotLoggedIn          = "Please login first."
)

// registerFailure prefers the server's message, then its error, then the
// first field error.
func registerFailure(err error) string {
	if msg, ok := commonFailure(err); ok {
		return msg
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		for _, s := range []string{apiErr.Message, apiErr.Detail, apiErr.FieldSummary()} {
			if s != "" {
				return s
			}
		}
	}
	return msgRegisterFailed
}

func loginFailure(err error) string {
	if msg, ok := commonFailure(err); ok {
		return msg
	}
	if errors.Is(err, client.ErrInvalidResponse) {
		return msgLoginInvalidResponse
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return msgInvalidCredentials
}

// entryFailure renders errors of the entry commands.
func entryFailure(err error) string {
	if msg, ok := commonFailure(err); ok {
		return msg
	}

	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		return msgNotLoggedIn
	case errors.Is(err, client.ErrUnauthorized):
		return msgSessionExpired
	case errors.Is(err, client.ErrNotFound):
		return "Entry not found"
	case errors.Is(err, client.ErrForbidden):
		return "Not allowed to access this entry"
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if reason := apiErr.Reason(); reason != "" {
			return reason
		}
	}
	return "Request failed: " + err.Error()
}

func commonFailure(err error) (string, bool) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error(), true
	case errors.Is(err, client.ErrUnavailable) && !isAPIError(err):
		return msgUnavailable, true
	}
	return "", false
}

func isAPIError(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr)
}
