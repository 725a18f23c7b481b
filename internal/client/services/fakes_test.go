package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/wilt/internal/client/models"
)

// fakeClient implements client.Client for unit tests.
type fakeClient struct {
	RegisterMsg string
	RegisterErr error

	LoginRet models.TokenPair
	LoginErr error

	ListRet []models.Entry
	ListErr error

	CreateErr error
	GetRet    *models.Entry
	GetErr    error
	UpdateErr error
	DeleteErr error

	LastRegistration models.Registration
	LastCredentials  models.Credentials
	LastDraft        models.EntryDraft
	LastID           int64
	Authorization    string

	Calls []string
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Register(_ context.Context, reg models.Registration) (string, error) {
	f.Calls = append(f.Calls, "register")
	f.LastRegistration = reg
	return f.RegisterMsg, f.RegisterErr
}

func (f *fakeClient) Login(_ context.Context, creds models.Credentials) (models.TokenPair, error) {
	f.Calls = append(f.Calls, "login")
	f.LastCredentials = creds
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) ListEntries(context.Context) ([]models.Entry, error) {
	f.Calls = append(f.Calls, "list")
	return f.ListRet, f.ListErr
}

func (f *fakeClient) CreateEntry(_ context.Context, draft models.EntryDraft) (*models.Entry, error) {
	f.Calls = append(f.Calls, "create")
	f.LastDraft = draft
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return &models.Entry{ID: 1, Title: draft.Title, Content: draft.Content}, nil
}

func (f *fakeClient) GetEntry(_ context.Context, id int64) (*models.Entry, error) {
	f.Calls = append(f.Calls, "get")
	f.LastID = id
	return f.GetRet, f.GetErr
}

func (f *fakeClient) UpdateEntry(_ context.Context, id int64, draft models.EntryDraft) (*models.Entry, error) {
	f.Calls = append(f.Calls, "update")
	f.LastID = id
	f.LastDraft = draft
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	return &models.Entry{ID: id, Title: draft.Title, Content: draft.Content}, nil
}

func (f *fakeClient) DeleteEntry(_ context.Context, id int64) error {
	f.Calls = append(f.Calls, "delete")
	f.LastID = id
	return f.DeleteErr
}

func (f *fakeClient) SetAuthorization(token string) { f.Authorization = token }
func (f *fakeClient) ClearAuthorization()           { f.Authorization = "" }
func (f *fakeClient) State() string                 { return "online" }

// fakeSession implements Session in memory.
type fakeSession struct {
	Creds  models.Credentials
	Tokens models.TokenPair

	SaveErr  error
	ClearErr error

	Cleared   int
	Forgotten int
}

func (f *fakeSession) SaveLogin(_ context.Context, creds models.Credentials, tokens models.TokenPair) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.Creds = creds
	f.Tokens = tokens
	return nil
}

func (f *fakeSession) ClearAll(context.Context) error {
	f.Cleared++
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.Creds = models.Credentials{}
	f.Tokens = models.TokenPair{}
	return nil
}

func (f *fakeSession) Forget(context.Context) error {
	f.Forgotten++
	f.Creds = models.Credentials{}
	f.Tokens = models.TokenPair{}
	return nil
}

func (f *fakeSession) AccessToken(context.Context) string { return f.Tokens.Access }
func (f *fakeSession) IsLoggedIn(context.Context) bool    { return f.Tokens.Access != "" }
func (f *fakeSession) Username(context.Context) string    { return f.Creds.Username }

func (f *fakeSession) StoredKeys(context.Context) []string {
	var keys []string
	if f.Tokens.Access != "" {
		keys = append(keys, "access_token")
	}
	if f.Creds.Username != "" {
		keys = append(keys, "username")
	}
	return keys
}

func (f *fakeSession) AccessExpiry(context.Context) (time.Time, bool) {
	return time.Time{}, false
}
