// Package services contains application services for the WILT client.
// This file defines the authentication service: register, login, logout and
// the read side of the current session.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/wilt/internal/client/client"
	"github.com/dmitrijs2005/wilt/internal/client/models"
	"github.com/dmitrijs2005/wilt/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a new account; it does not log in.
//   - Login: authenticate, persist tokens and credentials, authorize the client.
//   - Logout: wipe the session store and the client's authorization.
//   - IsLoggedIn, Username, AccessExpiry, StoredKeys: read the stored session.
//
// Input is validated before any request is sent.
type AuthService interface {
	Register(ctx context.Context, reg models.Registration) (string, error)
	Login(ctx context.Context, creds models.Credentials) error
	Logout(ctx context.Context) error
	IsLoggedIn(ctx context.Context) bool
	Username(ctx context.Context) string
	AccessExpiry(ctx context.Context) (time.Time, bool)
	StoredKeys(ctx context.Context) []string
	Close(ctx context.Context) error
}

type authService struct {
	client  client.Client
	session Session
	logger  logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and session.
func NewAuthService(client client.Client, session Session, logger logging.Logger) AuthService {
	return &authService{client: client, session: session, logger: logger}
}

// Register returns the server's confirmation message.
func (a *authService) Register(ctx context.Context, reg models.Registration) (string, error) {
	if err := models.Validate(reg); err != nil {
		return "", err
	}

	msg, err := a.client.Register(ctx, reg)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}

	a.logger.Info(ctx, "user registered", "username", reg.Username)
	return msg, nil
}

// Login authenticates against the server and stores the token pair together
// with the credentials used for later re-authentication.
func (a *authService) Login(ctx context.Context, creds models.Credentials) error {
	if err := models.Validate(creds); err != nil {
		return err
	}

	tokens, err := a.client.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if tokens.Access == "" {
		return fmt.Errorf("login: %w", client.ErrInvalidResponse)
	}

	if err := a.session.SaveLogin(ctx, creds, tokens); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.client.SetAuthorization(tokens.Access)

	a.logger.Info(ctx, "logged in", "username", creds.Username)
	return nil
}

// Logout clears the client's authorization even if the store cannot be wiped.
func (a *authService) Logout(ctx context.Context) error {
	a.client.ClearAuthorization()

	if err := a.session.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	a.logger.Info(ctx, "logged out")
	return nil
}

func (a *authService) IsLoggedIn(ctx context.Context) bool {
	return a.session.IsLoggedIn(ctx)
}

func (a *authService) Username(ctx context.Context) string {
	return a.session.Username(ctx)
}

func (a *authService) AccessExpiry(ctx context.Context) (time.Time, bool) {
	return a.session.AccessExpiry(ctx)
}

func (a *authService) StoredKeys(ctx context.Context) []string {
	return a.session.StoredKeys(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
