// Package auth implements the gateway's single-user login and bearer token
// verification.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("missing authorization header")
	// ErrInvalidToken is returned for malformed, expired or forged tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidCredentials is returned by Login on a username/password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Identity is the authenticated principal carried by a token.
type Identity struct {
	Subject string
	TokenID string
}

// Authenticator verifies a bearer credential.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (Identity, error)
}

// IsUnauthorized reports whether err is a credential problem rather than an
// internal fault of the auth subsystem.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrMissingToken) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrInvalidCredentials)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Service combines credential checking and token handling.
type Service struct {
	creds  *Credentials
	tokens *Tokens
}

// NewService creates a Service.
func NewService(creds *Credentials, tokens *Tokens) *Service {
	return &Service{creds: creds, tokens: tokens}
}

// Login verifies username/password and returns a signed access token.
func (s *Service) Login(username, password string) (string, error) {
	if !s.creds.Verify(username, password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(username)
}

// Authenticate implements Authenticator.
func (s *Service) Authenticate(_ context.Context, bearer string) (Identity, error) {
	if bearer == "" {
		return Identity{}, ErrMissingToken
	}
	return s.tokens.Verify(bearer)
}
