package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/Geek-Mradul/mintern/internal/auth"
	"github.com/Geek-Mradul/mintern/internal/database"
	"github.com/Geek-Mradul/mintern/internal/platform/user"
)

// CredentialStore is the slice of the user store that identity flows need.
type CredentialStore interface {
	Create(ctx context.Context, u *database.User) error
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
	UpsertFederated(ctx context.Context, email, name string) (*database.User, error)
}

// Service turns credentials and federated assertions into session tokens.
type Service struct {
	store     CredentialStore
	codec     *auth.Codec
	federated *FederatedVerifier
}

func NewService(store CredentialStore, codec *auth.Codec, allowedDomain string) *Service {
	return &Service{
		store:     store,
		codec:     codec,
		federated: NewFederatedVerifier(store, allowedDomain),
	}
}

// Signup registers an ORDINARY password account. It does not log the user in.
func (s *Service) Signup(ctx context.Context, email, password, name string) (*database.User, error) {
	if email == "" || password == "" || strings.TrimSpace(name) == "" {
		return nil, ErrValidation
	}
	if len(password) > auth.MaxPasswordLength {
		return nil, ErrPasswordTooLong
	}

	_, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, user.ErrUserNotFound):
		return nil, dependency("lookup user", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &database.User{
		Email:        email,
		Name:         name,
		PasswordHash: &hash,
		Role:         auth.RoleOrdinary,
	}
	if err := s.store.Create(ctx, u); err != nil {
		// A concurrent signup may win between the lookup and the insert.
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, dependency("create user", err)
	}
	return u, nil
}

// Login checks a password against the stored hash. Unknown emails, accounts
// without a password and wrong passwords all fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrValidation
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", dependency("lookup user", err)
	}
	if !u.HasPassword() || !auth.ComparePassword(password, *u.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.codec.Issue(u.ID, u.Email, u.Role)
}

// LoginWithAssertion completes a federated login and issues a token for the
// upserted account.
func (s *Service) LoginWithAssertion(ctx context.Context, a Assertion) (string, error) {
	u, err := s.federated.Verify(ctx, a)
	if err != nil {
		return "", err
	}
	return s.codec.Issue(u.ID, u.Email, u.Role)
}

// Codec exposes the token codec so guards and diagnostics share one secret.
func (s *Service) Codec() *auth.Codec {
	return s.codec
}
