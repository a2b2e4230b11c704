// Package auth issues and checks unlock tokens: HS256 JWTs stating that a
// client has proven knowledge of the secret guarding one resource.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// UnlockClaims binds a client (subject) to the resource key it unlocked.
type UnlockClaims struct {
	jwt.RegisteredClaims
	ResourceKey string `json:"rk"`
}

// GenerateUnlockToken signs an unlock token. A non-positive validity
// issues a token without expiry.
func GenerateUnlockToken(clientID, resourceKey string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	claims := UnlockClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  clientID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		ResourceKey: resourceKey,
	}
	if validityDuration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(validityDuration))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// ParseUnlockToken verifies tokenString and returns its claims.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// verification yields common.ErrInvalidToken.
func ParseUnlockToken(tokenString string, secretKey []byte) (*UnlockClaims, error) {
	claims := &UnlockClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.ResourceKey == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
