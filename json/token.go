package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/tutor"
)

// Interface compliance check.
var _ tutor.TokenStore = (*TokenFile)(nil)

// tokenDTO is the on-disk form of a stored bearer token.
type tokenDTO struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// TokenFile stores the bearer token in a JSON file readable only by the
// current user.
type TokenFile struct {
	path string
	now  func() time.Time
}

// NewTokenFile returns a TokenFile backed by path.
func NewTokenFile(path string) *TokenFile {
	return &TokenFile{path: path, now: time.Now}
}

// Path returns the backing file path.
func (f *TokenFile) Path() string { return f.path }

// Load returns the stored token, or tutor.ErrNoToken when the file is
// missing or holds an empty token.
func (f *TokenFile) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", tutor.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	var dto tokenDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return "", fmt.Errorf("unmarshal token file: %w", err)
	}
	if dto.Token == "" {
		return "", tutor.ErrNoToken
	}
	return dto.Token, nil
}

// Save replaces the stored token. An empty token clears the store.
func (f *TokenFile) Save(token string) error {
	if token == "" {
		return f.Clear()
	}
	data, err := json.MarshalIndent(tokenDTO{Token: token, SavedAt: f.now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	return writeFile(f.path, data)
}

// Clear removes the token file. A missing file is not an error.
func (f *TokenFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
