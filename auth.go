package tutor

import "context"

// TokenStore persists the bearer token between runs.
// Load returns ErrNoToken when nothing is stored.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// TokenStatus is the backend's verdict on a bearer token. Token holds the
// refreshed token to store in place of the old one; it may be empty when the
// backend does not rotate tokens.
type TokenStatus struct {
	Valid bool
	Token string
}

// TokenValidator checks a bearer token against the backend.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (TokenStatus, error)
}
