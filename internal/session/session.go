// Package session reads the signed-in user's bearer token.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Key is the fixed name the session document is stored under.
const Key = "userInfo"

var (
	// ErrNoToken means no session token is stored.
	ErrNoToken = errors.New("session: no token stored")
	// ErrTokenExpired means the stored token carries an exp claim in the past.
	ErrTokenExpired = errors.New("session: token expired")
)

// UserInfo is the stored session document.
type UserInfo struct {
	Token string `json:"token"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Provider returns the current bearer token.
// Implementations return ErrNoToken when nothing is stored.
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f ProviderFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Static returns a provider that always yields token.
func Static(token string) Provider {
	return ProviderFunc(func(context.Context) (string, error) {
		if strings.TrimSpace(token) == "" {
			return "", ErrNoToken
		}
		return token, nil
	})
}

// EnvProvider reads the token from an environment variable.
type EnvProvider struct {
	Var string
}

// Token implements Provider.
func (e EnvProvider) Token(context.Context) (string, error) {
	v := strings.TrimSpace(os.Getenv(e.Var))
	if v == "" {
		return "", ErrNoToken
	}
	return v, nil
}

// Chain tries providers in order and returns the first token found.
type Chain []Provider

// Token implements Provider.
func (c Chain) Token(ctx context.Context) (string, error) {
	for _, p := range c {
		tok, err := p.Token(ctx)
		if errors.Is(err, ErrNoToken) {
			continue
		}
		if err != nil {
			return "", err
		}
		return tok, nil
	}
	return "", ErrNoToken
}

// CheckExpiry rejects JWTs whose exp claim is before now.
// Tokens that are not JWTs, or carry no exp, are passed through; the
// backend remains the authority on whether they are valid.
func CheckExpiry(token string, now time.Time) error {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return fmt.Errorf("%w at %s", ErrTokenExpired, claims.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
