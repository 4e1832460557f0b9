// Package auth issues and verifies the HS256 access tokens used by the
// backend API.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkuznecovs/billfold/internal/common"
)

// Claims carries the standard registered claims plus the authenticated
// user's id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
