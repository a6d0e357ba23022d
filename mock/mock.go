// Package mock provides test doubles for tutor interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/tutor"
)

// Interface compliance checks.
var (
	_ tutor.ChatService    = (*ChatService)(nil)
	_ tutor.Catalog        = (*Catalog)(nil)
	_ tutor.TokenValidator = (*TokenValidator)(nil)
	_ tutor.TokenStore     = (*TokenStore)(nil)
)

// ChatService is a test double for tutor.ChatService.
// Set ChatFn before calling Chat.
type ChatService struct {
	ChatFn func(ctx context.Context, req tutor.ChatRequest) (tutor.Stream, error)
}

// Chat delegates to ChatFn.
func (c *ChatService) Chat(ctx context.Context, req tutor.ChatRequest) (tutor.Stream, error) {
	return c.ChatFn(ctx, req)
}

// Catalog is a test double for tutor.Catalog.
type Catalog struct {
	SearchBooksFn func(ctx context.Context, filter tutor.BookFilter) ([]tutor.Book, error)
}

// SearchBooks delegates to SearchBooksFn.
func (c *Catalog) SearchBooks(ctx context.Context, filter tutor.BookFilter) ([]tutor.Book, error) {
	return c.SearchBooksFn(ctx, filter)
}

// TokenValidator is a test double for tutor.TokenValidator.
type TokenValidator struct {
	ValidateTokenFn func(ctx context.Context, token string) (tutor.TokenStatus, error)
}

// ValidateToken delegates to ValidateTokenFn.
func (v *TokenValidator) ValidateToken(ctx context.Context, token string) (tutor.TokenStatus, error) {
	return v.ValidateTokenFn(ctx, token)
}

// TokenStore is a test double for tutor.TokenStore.
type TokenStore struct {
	LoadFn  func() (string, error)
	SaveFn  func(token string) error
	ClearFn func() error
}

// Load delegates to LoadFn.
func (s *TokenStore) Load() (string, error) {
	return s.LoadFn()
}

// Save delegates to SaveFn.
func (s *TokenStore) Save(token string) error {
	return s.SaveFn(token)
}

// Clear delegates to ClearFn.
func (s *TokenStore) Clear() error {
	return s.ClearFn()
}
