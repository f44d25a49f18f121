package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jordanlanch/printfast/pkg/authz"
)

// Claims represents JWT claims
type Claims struct {
	UserID string     `json:"user_id"`
	Email  string     `json:"email"`
	Role   authz.Role `json:"role"`
	jwt.RegisteredClaims
}

// ErrTokenRevoked is returned for tokens found in the blacklist
var ErrTokenRevoked = errors.New("token has been revoked")

// GenerateJWT signs a new HS256 token and returns it with its expiry
func GenerateJWT(userID, email string, role authz.Role, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// ValidateJWTWithBlacklist validates a JWT token and checks if it's blacklisted
func ValidateJWTWithBlacklist(ctx context.Context, tokenString, secret string, blacklist *TokenBlacklist) (*Claims, error) {
	claims, err := ValidateJWT(tokenString, secret)
	if err != nil {
		return nil, err
	}

	if blacklist != nil {
		isBlacklisted, err := blacklist.IsBlacklisted(ctx, tokenString)
		if err != nil {
			return nil, fmt.Errorf("failed to check blacklist: %w", err)
		}
		if isBlacklisted {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}
