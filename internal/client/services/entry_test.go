package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/wilt/internal/client/client"
	"github.com/dmitrijs2005/wilt/internal/client/models"
	"github.com/dmitrijs2005/wilt/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggedInSession() *fakeSession {
	return &fakeSession{
		Creds:  models.Credentials{Username: "ann", Password: "pw1"},
		Tokens: models.TokenPair{Access: "A1", Refresh: "R1"},
	}
}

func TestEntryService_Fetch_NoTokenSendsNothing(t *testing.T) {
	fc := &fakeClient{}
	svc := NewEntryService(fc, &fakeSession{}, logging.Nop())

	list, err := svc.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Nil(t, list)
	assert.Empty(t, fc.Calls)
}

func TestEntryService_Fetch(t *testing.T) {
	want := []models.Entry{{ID: 2, Title: "B"}, {ID: 1, Title: "A"}}
	fc := &fakeClient{ListRet: want}
	svc := NewEntryService(fc, loggedInSession(), logging.Nop())

	got, err := svc.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEntryService_Fetch_UnauthorizedForgetsSession(t *testing.T) {
	fc := &fakeClient{ListErr: &client.APIError{StatusCode: 401}, Authorization: "A1"}
	fs := loggedInSession()
	svc := NewEntryService(fc, fs, logging.Nop())

	_, err := svc.Fetch(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, 1, fs.Forgotten)
	assert.False(t, fs.IsLoggedIn(context.Background()))
	assert.Empty(t, fc.Authorization)
}

func TestEntryService_Fetch_OtherErrorsKeepSession(t *testing.T) {
	fc := &fakeClient{ListErr: client.ErrUnavailable}
	fs := loggedInSession()
	svc := NewEntryService(fc, fs, logging.Nop())

	_, err := svc.Fetch(context.Background())
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, 0, fs.Forgotten)
	assert.True(t, fs.IsLoggedIn(context.Background()))
}

func TestEntryService_Fetch_ForbiddenKeepsSession(t *testing.T) {
	fc := &fakeClient{ListErr: &client.APIError{StatusCode: 403}, Authorization: "A1"}
	fs := loggedInSession()
	svc := NewEntryService(fc, fs, logging.Nop())

	_, err := svc.Fetch(context.Background())
	assert.ErrorIs(t, err, client.ErrForbidden)
	assert.NotErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, 0, fs.Forgotten)
	assert.True(t, fs.IsLoggedIn(context.Background()))
	assert.Equal(t, "A1", fc.Authorization)
}

func TestEntryService_Create_RefetchesCollection(t *testing.T) {
	fc := &fakeClient{ListRet: []models.Entry{{ID: 1, Title: "T", Content: "C"}}}
	svc := NewEntryService(fc, loggedInSession(), logging.Nop())

	list, err := svc.Create(context.Background(), models.EntryDraft{Title: "T", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "list"}, fc.Calls)
	assert.Equal(t, models.EntryDraft{Title: "T", Content: "C"}, fc.LastDraft)
	require.Len(t, list, 1)
}

func TestEntryService_Create_Invalid(t *testing.T) {
	fc := &fakeClient{}
	svc := NewEntryService(fc, loggedInSession(), logging.Nop())

	_, err := svc.Create(context.Background(), models.EntryDraft{Title: "T"})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, fc.Calls)
}

func TestEntryService_Create_FailureSkipsRefetch(t *testing.T) {
	fc := &fakeClient{CreateErr: &client.APIError{StatusCode: 400, Fields: map[string][]string{"title": {"bad"}}}}
	svc := NewEntryService(fc, loggedInSession(), logging.Nop())

	_, err := svc.Create(context.Background(), models.EntryDraft{Title: "T", Content: "C"})
	require.Error(t, err)
	assert.Equal(t, []string{"create"}, fc.Calls)
}

func TestEntryService_Get(t *testing.T) {
	fc := &fakeClient{GetRet: &models.Entry{ID: 7, Title: "T"}}
	svc := NewEntryService(fc, loggedInSession(), logging.Nop())

	e, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), e.ID)

	fc.GetErr = &client.APIError{StatusCode: 404}
	_, err = svc.Get(context.Background(), 8)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestEntryService_UpdateAndDelete(t *testing.T) {
	fc := &fakeClient{}
	svc := NewEntryService(fc, loggedInSession(), logging.Nop())

	_, err := svc.Update(context.Background(), 3, models.EntryDraft{Title: "T2", Content: "C2"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), fc.LastID)

	_, err = svc.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"update", "list", "delete", "list"}, fc.Calls)
}

func TestEntryService_Delete_Error(t *testing.T) {
	fc := &fakeClient{DeleteErr: errors.New("boom")}
	svc := NewEntryService(fc, loggedInSession(), logging.Nop())

	_, err := svc.Delete(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete entry")
	assert.Equal(t, []string{"delete"}, fc.Calls)
}
