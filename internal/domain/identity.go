package domain

import (
	"context"
	"time"
)

// Identity is the authenticated admin identity returned by the auth service.
// Token is an opaque bearer token; it is what gets persisted across restarts.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// Admin is a record in the admin allow-list collection.
type Admin struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// AdminRegistry defines the interface for the admin allow-list store.
type AdminRegistry interface {
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	// IsAdmin reports whether the identity id is present in the registry.
	IsAdmin(ctx context.Context, id string) (bool, error)
}

// AuthService is the narrow boundary to the identity provider. SignIn
// authenticates credentials only; admin gating is the caller's concern.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignOut(ctx context.Context, identity Identity) error
	IsAdmin(ctx context.Context, identity Identity) (bool, error)
}

// SessionStore is a single key-value slot holding the serialized Identity of
// the current admin session. Load returns ok=false when the slot is empty.
type SessionStore interface {
	Save(identity Identity) error
	Load() (identity Identity, ok bool, err error)
	Clear() error
}

// PasswordHasher handles hashing and verification of admin passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues bearer tokens for an authenticated identity.
type TokenIssuer interface {
	Issue(id, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the identity id it was issued to.
type TokenVerifier interface {
	Verify(token string) (id string, err error)
}
