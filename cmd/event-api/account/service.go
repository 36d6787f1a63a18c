package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"event-rest-api/cmd/event-api/auth"
	"event-rest-api/cmd/event-api/model"
	"event-rest-api/cmd/event-api/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCredentials = auth.ErrBadCredentials
	ErrUserNotFound   = auth.ErrAccountNotFound
	ErrEmailTaken     = errors.New("email already registered")
	ErrInvalidAccount = errors.New("email and password are required")
)

type IAccountRepo interface {
	FindByEmail(ctx context.Context, email string) (model.Account, error)
	CreateAccount(ctx context.Context, account *model.Account) error
}

// Service is the account lookup used by the token endpoint.
type Service struct {
	repo   IAccountRepo
	logger zerolog.Logger
	cost   int
}

func NewService(repo IAccountRepo, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "accounts").Logger(),
		cost:   bcrypt.DefaultCost,
	}
}

// WithCost overrides the bcrypt work factor. Tests use bcrypt.MinCost.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

// SaveAccount hashes the plaintext password and stores the account.
func (s *Service) SaveAccount(ctx context.Context, account model.Account) (model.Account, error) {
	account.Email = strings.TrimSpace(account.Email)
	if account.Email == "" || account.Password == "" {
		return model.Account{}, ErrInvalidAccount
	}

	if _, err := s.repo.FindByEmail(ctx, account.Email); err == nil {
		return model.Account{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.Account{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(account.Password), s.cost)
	if err != nil {
		return model.Account{}, fmt.Errorf("hash password: %w", err)
	}
	account.Password = string(hashed)

	if err := s.repo.CreateAccount(ctx, &account); err != nil {
		return model.Account{}, err
	}

	s.logger.Info().
		Int("account_id", account.ID).
		Str("email", account.Email).
		Strs("roles", account.Roles).
		Msg("account created")

	return account, nil
}

func (s *Service) LoadByUsername(ctx context.Context, username string) (model.Account, error) {
	account, err := s.repo.FindByEmail(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Account{}, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return account, err
}

// Authenticate verifies the username/password pair. Unknown users and wrong
// passwords both yield ErrBadCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (model.Account, error) {
	account, err := s.LoadByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return model.Account{}, ErrBadCredentials
	}
	if err != nil {
		return model.Account{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		s.logger.Warn().Str("email", username).Msg("password mismatch")
		return model.Account{}, ErrBadCredentials
	}

	return account, nil
}

// EnsureAccount creates the account unless the email is already registered.
func (s *Service) EnsureAccount(ctx context.Context, account model.Account) error {
	_, err := s.SaveAccount(ctx, account)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	return err
}
