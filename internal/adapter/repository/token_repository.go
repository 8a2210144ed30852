package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/johnquangdev/minutes360/internal/infrastructure/cache"
)

const revokedTokenPrefix = "auth:revoked:"

// TokenRepository records signed-out session tokens in a key-value store
type TokenRepository struct {
	store cache.Store
}

// NewTokenRepository creates a token repository backed by store
func NewTokenRepository(store cache.Store) *TokenRepository {
	return &TokenRepository{store: store}
}

// Revoke marks the token id as signed out until ttl elapses
func (r *TokenRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return fmt.Errorf("token id is empty")
	}
	if ttl <= 0 {
		// already expired, nothing to remember
		return nil
	}
	if err := r.store.Set(ctx, revokedTokenPrefix+tokenID, "revoked", ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id was signed out
func (r *TokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok, err := r.store.Get(ctx, revokedTokenPrefix+tokenID)
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return ok, nil
}
