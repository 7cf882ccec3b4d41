// Package auth verifies access tokens for the validation API. Token
// issuance lives with the identity provider; this service only checks
// signatures and expiry against the shared signing secret.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Config groups Service dependencies.
type Config struct {
	Secret string
	// Issuer, when set, must match the token iss claim.
	Issuer string
}

// Service validates JWT access tokens.
type Service struct {
	secret []byte
	issuer string
}

// NewService constructs a Service instance.
func NewService(cfg Config) (*Service, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	return &Service{secret: []byte(secret), issuer: strings.TrimSpace(cfg.Issuer)}, nil
}

// ParseAccessToken verifies the token and returns the subject user ID.
func (s *Service) ParseAccessToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", errors.New("auth: empty token")
	}
	options := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(true),
	}
	if s.issuer != "" {
		options = append(options, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseString(trimmed, options...)
	if err != nil {
		return "", fmt.Errorf("parse access token: %w", err)
	}
	subject := strings.TrimSpace(parsed.Subject())
	if subject == "" {
		return "", errors.New("auth: token missing subject")
	}
	return subject, nil
}

// SignAccessToken mints a token for the given user. Production tokens come
// from the identity provider; this exists for tooling and tests that share
// the secret.
func (s *Service) SignAccessToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	builder := jwt.NewBuilder().
		Subject(userID).
		IssuedAt(now).
		Expiration(now.Add(ttl))
	if s.issuer != "" {
		builder = builder.Issuer(s.issuer)
	}
	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("build access token: %w", err)
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return string(signed), nil
}
