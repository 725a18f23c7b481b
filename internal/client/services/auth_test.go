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

func TestAuthService_Login_PersistsSessionAndAuthorizes(t *testing.T) {
	fc := &fakeClient{LoginRet: models.TokenPair{Access: "A1", Refresh: "R1"}}
	fs := &fakeSession{}
	svc := NewAuthService(fc, fs, logging.Nop())

	err := svc.Login(context.Background(), models.Credentials{Username: "ann", Password: "pw1"})
	require.NoError(t, err)

	assert.Equal(t, models.Credentials{Username: "ann", Password: "pw1"}, fc.LastCredentials)
	assert.Equal(t, models.TokenPair{Access: "A1", Refresh: "R1"}, fs.Tokens)
	assert.Equal(t, "ann", fs.Creds.Username)
	assert.Equal(t, "pw1", fs.Creds.Password)
	assert.Equal(t, "A1", fc.Authorization)
	assert.True(t, svc.IsLoggedIn(context.Background()))
	assert.Equal(t, "ann", svc.Username(context.Background()))
}

func TestAuthService_Login_ValidatesBeforeRequest(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, &fakeSession{}, logging.Nop())

	err := svc.Login(context.Background(), models.Credentials{Username: "ann"})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"password is required"}, verr.Problems)
	assert.Empty(t, fc.Calls)
}

func TestAuthService_Login_ServerRejects(t *testing.T) {
	apiErr := &client.APIError{StatusCode: 401, Detail: "Invalid credentials"}
	fc := &fakeClient{LoginErr: apiErr}
	fs := &fakeSession{}
	svc := NewAuthService(fc, fs, logging.Nop())

	err := svc.Login(context.Background(), models.Credentials{Username: "ann", Password: "bad"})
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Empty(t, fs.Tokens.Access)
	assert.Empty(t, fc.Authorization)
}

func TestAuthService_Login_MissingToken(t *testing.T) {
	fc := &fakeClient{LoginRet: models.TokenPair{}}
	fs := &fakeSession{}
	svc := NewAuthService(fc, fs, logging.Nop())

	err := svc.Login(context.Background(), models.Credentials{Username: "ann", Password: "pw1"})
	assert.ErrorIs(t, err, client.ErrInvalidResponse)
	assert.Empty(t, fs.Creds.Username)
}

func TestAuthService_Login_SaveFails(t *testing.T) {
	fc := &fakeClient{LoginRet: models.TokenPair{Access: "A1"}}
	fs := &fakeSession{SaveErr: errors.New("disk full")}
	svc := NewAuthService(fc, fs, logging.Nop())

	err := svc.Login(context.Background(), models.Credentials{Username: "ann", Password: "pw1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save session")
	assert.Empty(t, fc.Authorization)
}

func TestAuthService_Register(t *testing.T) {
	fc := &fakeClient{RegisterMsg: "User registered successfully"}
	fs := &fakeSession{}
	svc := NewAuthService(fc, fs, logging.Nop())

	msg, err := svc.Register(context.Background(), models.Registration{Username: "bob", Password: "pw", Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", msg)
	assert.Equal(t, "bob@example.com", fc.LastRegistration.Email)
	assert.False(t, svc.IsLoggedIn(context.Background()))
}

func TestAuthService_Register_InvalidEmail(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, &fakeSession{}, logging.Nop())

	_, err := svc.Register(context.Background(), models.Registration{Username: "bob", Password: "pw", Email: "nope"})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"email must be a valid email"}, verr.Problems)
	assert.Empty(t, fc.Calls)
}

func TestAuthService_Logout(t *testing.T) {
	fc := &fakeClient{Authorization: "A1"}
	fs := &fakeSession{Tokens: models.TokenPair{Access: "A1"}, Creds: models.Credentials{Username: "ann", Password: "pw1"}}
	svc := NewAuthService(fc, fs, logging.Nop())

	require.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, 1, fs.Cleared)
	assert.Empty(t, fc.Authorization)
	assert.False(t, svc.IsLoggedIn(context.Background()))
}

func TestAuthService_Logout_ClearFails(t *testing.T) {
	fc := &fakeClient{Authorization: "A1"}
	fs := &fakeSession{ClearErr: errors.New("locked")}
	svc := NewAuthService(fc, fs, logging.Nop())

	require.Error(t, svc.Logout(context.Background()))
	assert.Empty(t, fc.Authorization)
}

func TestAuthService_StoredKeys(t *testing.T) {
	fs := &fakeSession{}
	svc := NewAuthService(&fakeClient{}, fs, logging.Nop())
	assert.Empty(t, svc.StoredKeys(context.Background()))

	fs.Tokens = models.TokenPair{Access: "A1"}
	fs.Creds = models.Credentials{Username: "ann"}
	assert.Equal(t, []string{"access_token", "username"}, svc.StoredKeys(context.Background()))
}
