package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/wilt/internal/client/models"
)

// Session is the part of the session store the services use.
// *session.Store implements it.
type Session interface {
	SaveLogin(ctx context.Context, creds models.Credentials, tokens models.TokenPair) error
	ClearAll(ctx context.Context) error
	Forget(ctx context.Context) error
	AccessToken(ctx context.Context) string
	IsLoggedIn(ctx context.Context) bool
	Username(ctx context.Context) string
	AccessExpiry(ctx context.Context) (time.Time, bool)
	StoredKeys(ctx context.Context) []string
}
