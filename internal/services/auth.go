package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"faithconnect/internal/domain"
)

const sessionExpiry = 24 * time.Hour

type authService struct {
	registry domain.AdminRegistry
	hasher   domain.PasswordHasher
	issuer   domain.TokenIssuer
}

// NewAuthService creates the AuthService boundary over the admin registry.
// Credentials are checked against the registry's bcrypt hashes; successful
// sign-in yields an Identity carrying a signed session token.
func NewAuthService(registry domain.AdminRegistry, hasher domain.PasswordHasher, issuer domain.TokenIssuer) domain.AuthService {
	return &authService{
		registry: registry,
		hasher:   hasher,
		issuer:   issuer,
	}
}

func (s *authService) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	admin, err := s.registry.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Identity{}, domain.ErrInvalidCredentials
		}
		return domain.Identity{}, fmt.Errorf("sign in: %w", err)
	}
	if err := s.hasher.Compare(admin.PasswordHash, password); err != nil {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(admin.ID, admin.Email, sessionExpiry)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("issue session token: %w", err)
	}
	return domain.Identity{ID: admin.ID, Email: admin.Email, Token: token}, nil
}

// SignOut ends the provider-side session. Session tokens are self-expiring,
// so there is nothing to invalidate remotely; callers are responsible for
// discarding the identity and its persisted copy.
func (s *authService) SignOut(ctx context.Context, identity domain.Identity) error {
	return nil
}

func (s *authService) IsAdmin(ctx context.Context, identity domain.Identity) (bool, error) {
	if identity.ID == "" {
		return false, nil
	}
	ok, err := s.registry.IsAdmin(ctx, identity.ID)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return ok, nil
}
