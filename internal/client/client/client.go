package client

import (
	"context"

	"github.com/dmitrijs2005/wilt/internal/client/models"
)

type Client interface {
	Close() error
	Register(ctx context.Context, reg models.Registration) (string, error)
	Login(ctx context.Context, creds models.Credentials) (models.TokenPair, error)
	ListEntries(ctx context.Context) ([]models.Entry, error)
	CreateEntry(ctx context.Context, draft models.EntryDraft) (*models.Entry, error)
	GetEntry(ctx context.Context, id int64) (*models.Entry, error)
	UpdateEntry(ctx context.Context, id int64, draft models.EntryDraft) (*models.Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
	SetAuthorization(token string)
	ClearAuthorization()
	State() string
}
