package repositories

import (
	"context"
	"time"
)

// TokenRepository tracks revoked API session tokens until they expire
type TokenRepository interface {
	// Revoke marks the token id as signed out for ttl
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsRevoked reports whether the token id has been signed out
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
