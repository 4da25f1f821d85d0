// ABOUTME: Auth provider interface and startup factory for verifying caller identity
// ABOUTME: Clerk is the production variant; development mode gets a static insecure provider
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/tripcortex/trip-cortex/internal/config"
)

// Claims are the verified facts extracted from a session token.
type Claims struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

// User is the profile behind a verified token.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// Provider verifies session tokens and resolves user profiles.
type Provider interface {
	VerifyToken(ctx context.Context, token string) (*Claims, error)
	GetUser(ctx context.Context, userID string) (*User, error)
}

// NewProvider selects the auth variant at startup. A configured Clerk secret
// key wins; without one, only local and development environments get a
// fallback.
func NewProvider(cfg *config.Config) (Provider, error) {
	if cfg.ClerkSecretKey != "" {
		return NewClerkProvider(cfg.ClerkSecretKey), nil
	}
	if cfg.Environment == "local" || cfg.Environment == "development" {
		return NewInsecureProvider(), nil
	}
	return nil, fmt.Errorf("CLERK_SECRET_KEY is required outside local development")
}

// InsecureProvider accepts every token, including none at all, and returns a
// fixed development user. Never selected outside local development.
type InsecureProvider struct{}

// NewInsecureProvider creates the development-only provider
func NewInsecureProvider() *InsecureProvider {
	return &InsecureProvider{}
}

// VerifyToken accepts any token
func (p *InsecureProvider) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	return &Claims{
		UserID:    "dev-user",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// GetUser returns the fixed development user
func (p *InsecureProvider) GetUser(ctx context.Context, userID string) (*User, error) {
	return &User{
		ID:        userID,
		Email:     "dev@example.com",
		FirstName: "Dev",
		LastName:  "User",
	}, nil
}
