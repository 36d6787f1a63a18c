package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"event-rest-api/cmd/event-api/model"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) Authenticate(ctx context.Context, username, password string) (model.Account, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *MockAccounts) LoadByUsername(ctx context.Context, username string) (model.Account, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.Account), args.Error(1)
}

var keesun = model.Account{
	ID:    1,
	Email: "keesun@email.com",
	Roles: pq.StringArray{"ADMIN", "USER"},
}

func newTestServer(t *testing.T, accounts AccountAuthenticator) (*Server, *JWTManager) {
	client, err := NewClient(ClientConfig{
		ID:              "myApp",
		Secret:          "pass",
		AccessTokenTTL:  10 * time.Minute,
		RefreshTokenTTL: 60 * time.Minute,
	}, bcrypt.MinCost)
	require.NoError(t, err)

	tokens := NewJWTManager("secret", "event-api")
	return NewServer(NewClientRegistry(client), accounts, tokens, NewMemoryTokenStore(), zerolog.Nop()), tokens
}

func oauthError(t *testing.T, err error) *OAuthError {
	t.Helper()
	var oerr *OAuthError
	require.True(t, errors.As(err, &oerr), "expected OAuthError, got %v", err)
	return oerr
}

func TestServer_PasswordGrant(t *testing.T) {
	accounts := new(MockAccounts)
	server, tokens := newTestServer(t, accounts)

	accounts.On("Authenticate", mock.Anything, "keesun@email.com", "keesun").Return(keesun, nil)

	resp, err := server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "pass",
		GrantType:    GrantPassword,
		Username:     "keesun@email.com",
		Password:     "keesun",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 600, resp.ExpiresIn)
	assert.Equal(t, "all", resp.Scope)

	claims, err := tokens.Validate(resp.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_USER"}, claims.Authorities)
	accounts.AssertExpectations(t)
}

func TestServer_BadClientCredentials(t *testing.T) {
	server, _ := newTestServer(t, new(MockAccounts))

	_, err := server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "wrong",
		GrantType:    GrantPassword,
	})

	oerr := oauthError(t, err)
	assert.Equal(t, http.StatusUnauthorized, oerr.Status)
	assert.Equal(t, "invalid_client", oerr.Code)
}

func TestServer_BadUserCredentials(t *testing.T) {
	accounts := new(MockAccounts)
	server, _ := newTestServer(t, accounts)

	accounts.On("Authenticate", mock.Anything, "keesun@email.com", "nope").
		Return(model.Account{}, ErrBadCredentials)

	_, err := server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "pass",
		GrantType:    GrantPassword,
		Username:     "keesun@email.com",
		Password:     "nope",
	})

	oerr := oauthError(t, err)
	assert.Equal(t, http.StatusUnauthorized, oerr.Status)
	assert.Equal(t, "invalid_grant", oerr.Code)
}

func TestServer_UnsupportedGrant(t *testing.T) {
	server, _ := newTestServer(t, new(MockAccounts))

	_, err := server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "pass",
		GrantType:    "client_credentials",
	})

	oerr := oauthError(t, err)
	assert.Equal(t, http.StatusBadRequest, oerr.Status)
	assert.Equal(t, "unsupported_grant_type", oerr.Code)
}

func TestServer_InvalidScope(t *testing.T) {
	server, _ := newTestServer(t, new(MockAccounts))

	_, err := server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "pass",
		GrantType:    GrantPassword,
		Username:     "keesun@email.com",
		Password:     "keesun",
		Scope:        "write",
	})

	assert.Equal(t, "invalid_scope", oauthError(t, err).Code)
}

func TestServer_RefreshTokenGrant(t *testing.T) {
	accounts := new(MockAccounts)
	server, tokens := newTestServer(t, accounts)

	accounts.On("Authenticate", mock.Anything, "keesun@email.com", "keesun").Return(keesun, nil)
	accounts.On("LoadByUsername", mock.Anything, "keesun@email.com").Return(keesun, nil)

	first, err := server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "pass",
		GrantType:    GrantPassword,
		Username:     "keesun@email.com",
		Password:     "keesun",
	})
	require.NoError(t, err)

	refreshed, err := server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "pass",
		GrantType:    GrantRefreshToken,
		RefreshToken: first.RefreshToken,
	})

	require.NoError(t, err)
	assert.Equal(t, first.RefreshToken, refreshed.RefreshToken)
	assert.NotEqual(t, first.JTI, refreshed.JTI)
	_, err = tokens.Validate(refreshed.AccessToken, TokenTypeAccess)
	assert.NoError(t, err)
	accounts.AssertExpectations(t)
}

func TestServer_RefreshTokenGrant_UnknownToken(t *testing.T) {
	server, tokens := newTestServer(t, new(MockAccounts))

	// signed correctly but never stored
	orphan, _, err := tokens.Generate(TokenTypeRefresh, "keesun@email.com", time.Hour, Claims{ClientID: "myApp"})
	require.NoError(t, err)

	_, err = server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "pass",
		GrantType:    GrantRefreshToken,
		RefreshToken: orphan,
	})

	assert.Equal(t, "invalid_grant", oauthError(t, err).Code)
}

func TestServer_RefreshTokenGrant_AccessTokenRejected(t *testing.T) {
	server, tokens := newTestServer(t, new(MockAccounts))

	access, _, err := tokens.Generate(TokenTypeAccess, "keesun@email.com", time.Hour, Claims{ClientID: "myApp"})
	require.NoError(t, err)

	_, err = server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "pass",
		GrantType:    GrantRefreshToken,
		RefreshToken: access,
	})

	assert.Equal(t, "invalid_grant", oauthError(t, err).Code)
}

func TestServer_PasswordGrant_UserRolesOnly(t *testing.T) {
	accounts := new(MockAccounts)
	server, tokens := newTestServer(t, accounts)

	user := model.Account{ID: 2, Email: "user@email.com", Roles: pq.StringArray{"USER"}}
	accounts.On("Authenticate", mock.Anything, "user@email.com", "user").Return(user, nil)

	resp, err := server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "pass",
		GrantType:    GrantPassword,
		Username:     "user@email.com",
		Password:     "user",
	})
	require.NoError(t, err)

	claims, err := tokens.Validate(resp.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_USER"}, claims.Authorities)
}

func issueFor(t *testing.T, server *Server, accounts *MockAccounts) TokenResponse {
	t.Helper()
	accounts.On("Authenticate", mock.Anything, "keesun@email.com", "keesun").Return(keesun, nil).Once()
	resp, err := server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "pass",
		GrantType:    GrantPassword,
		Username:     "keesun@email.com",
		Password:     "keesun",
	})
	require.NoError(t, err)
	return resp
}

func TestServer_RefreshTokenGrant_AccountRemoved(t *testing.T) {
	accounts := new(MockAccounts)
	server, _ := newTestServer(t, accounts)
	first := issueFor(t, server, accounts)

	accounts.On("LoadByUsername", mock.Anything, "keesun@email.com").
		Return(model.Account{}, fmt.Errorf("%w: keesun@email.com", ErrAccountNotFound))

	_, err := server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "pass",
		GrantType:    GrantRefreshToken,
		RefreshToken: first.RefreshToken,
	})

	oerr := oauthError(t, err)
	assert.Equal(t, "invalid_grant", oerr.Code)
	assert.Equal(t, http.StatusUnauthorized, oerr.Status)
}

func TestServer_RefreshTokenGrant_StorageErrorIsNotInvalidGrant(t *testing.T) {
	accounts := new(MockAccounts)
	server, _ := newTestServer(t, accounts)
	first := issueFor(t, server, accounts)

	dbErr := errors.New("database connection failed")
	accounts.On("LoadByUsername", mock.Anything, "keesun@email.com").Return(model.Account{}, dbErr)

	_, err := server.Token(context.Background(), TokenRequest{
		ClientID:     "myApp",
		ClientSecret: "pass",
		GrantType:    GrantRefreshToken,
		RefreshToken: first.RefreshToken,
	})

	require.Error(t, err)
	var oerr *OAuthError
	assert.False(t, errors.As(err, &oerr))
	assert.ErrorIs(t, err, dbErr)
}
