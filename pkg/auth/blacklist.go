package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jordanlanch/printfast/pkg/cache"
)

// TokenBlacklist manages revoked JWT tokens
type TokenBlacklist struct {
	cache *cache.Client
}

// NewTokenBlacklist creates a new token blacklist
func NewTokenBlacklist(cache *cache.Client) *TokenBlacklist {
	return &TokenBlacklist{cache: cache}
}

// Add revokes a token until expiration. Tokens already past expiry are ignored.
func (b *TokenBlacklist) Add(ctx context.Context, token string, expiration time.Duration) error {
	if expiration <= 0 {
		return nil
	}
	return b.cache.Set(ctx, b.key(token), "revoked", expiration)
}

// IsBlacklisted checks if a token is blacklisted
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return b.cache.Exists(ctx, b.key(token))
}

// key hashes the token so raw tokens never reach Redis
func (b *TokenBlacklist) key(token string) string {
	hash := sha256.Sum256([]byte(token))
	return fmt.Sprintf("jwt:blacklist:%s", hex.EncodeToString(hash[:]))
}
