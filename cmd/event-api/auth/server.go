package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"event-rest-api/cmd/event-api/model"

	"github.com/rs/zerolog"
)

// OAuthError is rendered as the RFC 6749 error response body.
type OAuthError struct {
	Status      int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *OAuthError) Error() string {
	return e.Code + ": " + e.Description
}

func invalidClient() *OAuthError {
	return &OAuthError{Status: http.StatusUnauthorized, Code: "invalid_client", Description: "Bad client credentials"}
}

func invalidGrant(description string) *OAuthError {
	return &OAuthError{Status: http.StatusUnauthorized, Code: "invalid_grant", Description: description}
}

func unsupportedGrant(grant string) *OAuthError {
	return &OAuthError{Status: http.StatusBadRequest, Code: "unsupported_grant_type", Description: "Unsupported grant type: " + grant}
}

func invalidRequest(description string) *OAuthError {
	return &OAuthError{Status: http.StatusBadRequest, Code: "invalid_request", Description: description}
}

type AccountAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) (model.Account, error)
	LoadByUsername(ctx context.Context, username string) (model.Account, error)
}

var (
	ErrBadCredentials  = errors.New("bad credentials")
	ErrAccountNotFound = errors.New("account not found")
)

type TokenRequest struct {
	ClientID     string
	ClientSecret string
	GrantType    string
	Username     string
	Password     string
	RefreshToken string
	Scope        string
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	JTI          string `json:"jti"`
}

// Server issues tokens for the password and refresh_token grants.
type Server struct {
	clients  *ClientRegistry
	accounts AccountAuthenticator
	tokens   *JWTManager
	store    TokenStore
	logger   zerolog.Logger
}

func NewServer(clients *ClientRegistry, accounts AccountAuthenticator, tokens *JWTManager, store TokenStore, logger zerolog.Logger) *Server {
	return &Server{
		clients:  clients,
		accounts: accounts,
		tokens:   tokens,
		store:    store,
		logger:   logger.With().Str("component", "oauth").Logger(),
	}
}

func (s *Server) Token(ctx context.Context, req TokenRequest) (TokenResponse, error) {
	client, err := s.clients.Authenticate(req.ClientID, req.ClientSecret)
	if err != nil {
		s.logger.Warn().Str("client_id", req.ClientID).Msg("client authentication failed")
		return TokenResponse{}, invalidClient()
	}

	if req.GrantType == "" {
		return TokenResponse{}, invalidRequest("Missing grant type")
	}
	if !client.AllowsGrant(req.GrantType) {
		return TokenResponse{}, unsupportedGrant(req.GrantType)
	}

	scope, oerr := resolveScope(client, req.Scope)
	if oerr != nil {
		return TokenResponse{}, oerr
	}

	switch req.GrantType {
	case GrantPassword:
		return s.passwordGrant(ctx, client, req, scope)
	case GrantRefreshToken:
		return s.refreshGrant(ctx, client, req)
	default:
		return TokenResponse{}, unsupportedGrant(req.GrantType)
	}
}

func (s *Server) passwordGrant(ctx context.Context, client Client, req TokenRequest, scope []string) (TokenResponse, error) {
	if req.Username == "" || req.Password == "" {
		return TokenResponse{}, invalidRequest("username and password are required")
	}

	account, err := s.accounts.Authenticate(ctx, req.Username, req.Password)
	if errors.Is(err, ErrBadCredentials) {
		return TokenResponse{}, invalidGrant("Bad credentials")
	}
	if err != nil {
		return TokenResponse{}, fmt.Errorf("authenticate %s: %w", req.Username, err)
	}

	return s.issue(ctx, client, account, scope)
}

func (s *Server) refreshGrant(ctx context.Context, client Client, req TokenRequest) (TokenResponse, error) {
	claims, err := s.tokens.Validate(req.RefreshToken, TokenTypeRefresh)
	if err != nil {
		return TokenResponse{}, invalidGrant("Invalid refresh token")
	}
	if claims.ClientID != client.ID {
		return TokenResponse{}, invalidGrant("Refresh token was issued to another client")
	}

	record, err := s.store.FindRefreshToken(ctx, claims.ID)
	if errors.Is(err, ErrTokenNotFound) {
		return TokenResponse{}, invalidGrant("Invalid refresh token")
	}
	if err != nil {
		return TokenResponse{}, err
	}

	account, err := s.accounts.LoadByUsername(ctx, record.Username)
	if errors.Is(err, ErrAccountNotFound) {
		return TokenResponse{}, invalidGrant("Account no longer available")
	}
	if err != nil {
		return TokenResponse{}, fmt.Errorf("load account: %w", err)
	}

	access, accessClaims, err := s.tokens.Generate(TokenTypeAccess, account.Email, client.AccessTokenTTL, Claims{
		ClientID:    client.ID,
		Scope:       record.Scope,
		Authorities: account.RoleNames(),
		AccountID:   account.ID,
	})
	if err != nil {
		return TokenResponse{}, fmt.Errorf("sign access token: %w", err)
	}

	// refresh tokens are reused until they expire
	return TokenResponse{
		AccessToken:  access,
		TokenType:    "bearer",
		RefreshToken: req.RefreshToken,
		ExpiresIn:    int(client.AccessTokenTTL.Seconds()),
		Scope:        strings.Join(record.Scope, " "),
		JTI:          accessClaims.ID,
	}, nil
}

func (s *Server) issue(ctx context.Context, client Client, account model.Account, scope []string) (TokenResponse, error) {
	base := Claims{
		ClientID:    client.ID,
		Scope:       scope,
		Authorities: account.RoleNames(),
		AccountID:   account.ID,
	}

	access, accessClaims, err := s.tokens.Generate(TokenTypeAccess, account.Email, client.AccessTokenTTL, base)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, refreshClaims, err := s.tokens.Generate(TokenTypeRefresh, account.Email, client.RefreshTokenTTL, Claims{
		ClientID: client.ID,
		Scope:    scope,
	})
	if err != nil {
		return TokenResponse{}, fmt.Errorf("sign refresh token: %w", err)
	}

	err = s.store.SaveRefreshToken(ctx, refreshClaims.ID, RefreshRecord{
		ClientID: client.ID,
		Username: account.Email,
		Scope:    scope,
		Expires:  refreshClaims.ExpiresAt.Time,
	})
	if err != nil {
		return TokenResponse{}, err
	}

	s.logger.Info().
		Str("client_id", client.ID).
		Int("account_id", account.ID).
		Msg("access token issued")

	return TokenResponse{
		AccessToken:  access,
		TokenType:    "bearer",
		RefreshToken: refresh,
		ExpiresIn:    int(client.AccessTokenTTL.Seconds()),
		Scope:        strings.Join(scope, " "),
		JTI:          accessClaims.ID,
	}, nil
}

// resolveScope returns the client's scopes when none are requested and
// rejects scopes the client was not granted.
func resolveScope(client Client, requested string) ([]string, *OAuthError) {
	fields := strings.Fields(requested)
	if len(fields) == 0 {
		return client.Scopes, nil
	}
	for _, f := range fields {
		if !slices.Contains(client.Scopes, f) {
			return nil, &OAuthError{Status: http.StatusBadRequest, Code: "invalid_scope", Description: "Invalid scope: " + f}
		}
	}
	return fields, nil
}
