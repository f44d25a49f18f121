package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// ErrNoCredential means the request did not carry the credential a resolver
// looks for, so the next resolver should be tried.
var ErrNoCredential = errors.New("no credential presented")

// Credential identifies the user behind a request and how they proved it
type Credential struct {
	UserID         string
	Transport      string
	Token          string
	TokenExpiresAt time.Time
	SessionID      string
}

// Resolver extracts and verifies one kind of credential from a request
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, r *http.Request) (*Credential, error)
}

// BearerResolver accepts "Authorization: Bearer <jwt>"
type BearerResolver struct {
	Secret    string
	Blacklist *TokenBlacklist
}

// Name implements Resolver
func (b *BearerResolver) Name() string { return "bearer" }

// Resolve implements Resolver
func (b *BearerResolver) Resolve(ctx context.Context, r *http.Request) (*Credential, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrNoCredential
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.New("authorization header must be 'Bearer {token}'")
	}

	claims, err := ValidateJWTWithBlacklist(ctx, parts[1], b.Secret, b.Blacklist)
	if err != nil {
		return nil, err
	}

	cred := &Credential{UserID: claims.UserID, Transport: b.Name(), Token: parts[1]}
	if claims.ExpiresAt != nil {
		cred.TokenExpiresAt = claims.ExpiresAt.Time
	}
	return cred, nil
}

// SessionResolver accepts a session cookie backed by a SessionStore
type SessionResolver struct {
	Store      *SessionStore
	CookieName string
}

// Name implements Resolver
func (s *SessionResolver) Name() string { return "session" }

// Resolve implements Resolver
func (s *SessionResolver) Resolve(ctx context.Context, r *http.Request) (*Credential, error) {
	cookie, err := r.Cookie(s.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoCredential
	}

	userID, err := s.Store.Lookup(ctx, cookie.Value)
	if err != nil {
		return nil, err
	}
	return &Credential{UserID: userID, Transport: s.Name(), SessionID: cookie.Value}, nil
}
