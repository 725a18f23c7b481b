// Package session keeps the client's login state: the current token pair and
// the credentials used to renew it. Values live in the local metadata table,
// so a session survives restarts of the CLI.
package session

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/dmitrijs2005/wilt/internal/client/models"
	"github.com/dmitrijs2005/wilt/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/wilt/internal/dbx"
	"github.com/dmitrijs2005/wilt/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Persisted keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUsername     = "username"
	KeyPassword     = "password"
)

// Keys lists every key that belongs to a session.
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyUsername, KeyPassword}

type Store struct {
	db     *sql.DB
	repo   metadata.Repository
	logger logging.Logger
}

func NewStore(db *sql.DB, logger logging.Logger) *Store {
	return &Store{db: db, repo: metadata.NewSQLiteRepository(db), logger: logger}
}

// Set overwrites key with value. The value is not validated.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.repo.Set(ctx, key, value)
}

// Get returns the stored value and whether it exists. A failed read is
// logged and reported as absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "session read failed", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

// ClearAll removes every stored key in one statement.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

// Forget removes the session keys and nothing else.
func (s *Store) Forget(ctx context.Context) error {
	return s.repo.Delete(ctx, Keys...)
}

// SaveLogin stores a fresh token pair together with the credentials that
// produced it.
func (s *Store) SaveLogin(ctx context.Context, creds models.Credentials, tokens models.TokenPair) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := writeTokens(ctx, repo, tokens); err != nil {
			return err
		}
		if err := repo.Set(ctx, KeyUsername, creds.Username); err != nil {
			return err
		}
		return repo.Set(ctx, KeyPassword, creds.Password)
	})
}

// SaveTokens replaces the token pair and leaves the credentials untouched.
func (s *Store) SaveTokens(ctx context.Context, tokens models.TokenPair) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return writeTokens(ctx, metadata.NewSQLiteRepository(tx), tokens)
	})
}

func writeTokens(ctx context.Context, repo metadata.Repository, tokens models.TokenPair) error {
	if err := repo.Set(ctx, KeyAccessToken, tokens.Access); err != nil {
		return err
	}
	return repo.Set(ctx, KeyRefreshToken, tokens.Refresh)
}

// Credentials returns the stored username and password. ok is false unless
// both are present and non-empty.
func (s *Store) Credentials(ctx context.Context) (models.Credentials, bool) {
	username, _ := s.Get(ctx, KeyUsername)
	password, _ := s.Get(ctx, KeyPassword)
	if username == "" || password == "" {
		return models.Credentials{}, false
	}
	return models.Credentials{Username: username, Password: password}, true
}

// Tokens returns the stored pair; ok is false without an access token.
func (s *Store) Tokens(ctx context.Context) (models.TokenPair, bool) {
	access, _ := s.Get(ctx, KeyAccessToken)
	if access == "" {
		return models.TokenPair{}, false
	}
	refresh, _ := s.Get(ctx, KeyRefreshToken)
	return models.TokenPair{Access: access, Refresh: refresh}, true
}

// AccessToken returns the stored access token or "".
func (s *Store) AccessToken(ctx context.Context) string {
	v, _ := s.Get(ctx, KeyAccessToken)
	return v
}

// IsLoggedIn is derived from the presence of an access token; it is never
// stored on its own.
func (s *Store) IsLoggedIn(ctx context.Context) bool {
	return s.AccessToken(ctx) != ""
}

// Username returns the stored username or "".
func (s *Store) Username(ctx context.Context) string {
	v, _ := s.Get(ctx, KeyUsername)
	return v
}

// StoredKeys returns the names of the keys present in the store, sorted.
// Values are never returned. A storage failure is logged and reads as empty.
func (s *Store) StoredKeys(ctx context.Context) []string {
	all, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Warn(ctx, "list session keys", "error", err)
		return nil
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AccessExpiry reads the exp claim of the stored access token.
func (s *Store) AccessExpiry(ctx context.Context) (time.Time, bool) {
	return TokenExpiry(s.AccessToken(ctx))
}

// TokenExpiry decodes the exp claim of a JWT without verifying its
// signature. It is for display only and never gates a request.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
