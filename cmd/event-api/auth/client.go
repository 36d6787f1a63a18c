package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	GrantPassword     = "password"
	GrantRefreshToken = "refresh_token"
)

var ErrInvalidClient = errors.New("invalid client")

// Client is a statically registered OAuth2 client.
type Client struct {
	ID              string
	SecretHash      []byte
	Scopes          []string
	GrantTypes      []string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func (c Client) AllowsGrant(grant string) bool {
	return slices.Contains(c.GrantTypes, grant)
}

// ClientConfig describes the single client declared at startup.
type ClientConfig struct {
	ID              string
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// NewClient builds the password/refresh_token client with scope "all",
// hashing its secret. Access tokens carry the account's roles only.
func NewClient(cfg ClientConfig, cost int) (Client, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Secret), cost)
	if err != nil {
		return Client{}, fmt.Errorf("hash client secret: %w", err)
	}
	return Client{
		ID:              cfg.ID,
		SecretHash:      hash,
		Scopes:          []string{"all"},
		GrantTypes:      []string{GrantPassword, GrantRefreshToken},
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}, nil
}

// ClientRegistry is an in-memory, read-only set of clients.
type ClientRegistry struct {
	clients map[string]Client
}

func NewClientRegistry(clients ...Client) *ClientRegistry {
	r := &ClientRegistry{clients: make(map[string]Client, len(clients))}
	for _, c := range clients {
		r.clients[c.ID] = c
	}
	return r
}

func (r *ClientRegistry) Authenticate(id, secret string) (Client, error) {
	client, ok := r.clients[id]
	if !ok {
		return Client{}, ErrInvalidClient
	}
	if err := bcrypt.CompareHashAndPassword(client.SecretHash, []byte(secret)); err != nil {
		return Client{}, ErrInvalidClient
	}
	return client, nil
}
