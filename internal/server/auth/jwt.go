// Package auth issues and verifies the HS256 session tokens handed out on
// login, and hashes admin passwords.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/trophyshop/internal/common"
)

// Claims carries the standard registered claims plus the caller identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID  int64 `json:"uid"`
	IsAdmin bool  `json:"adm"`
}

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID  int64
	IsAdmin bool
}

func GenerateToken(id Identity, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:  id.UserID,
		IsAdmin: id.IsAdmin,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString and returns the identity it carries.
// Expired tokens yield common.ErrTokenExpired; any other defect yields
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return &Identity{UserID: claims.UserID, IsAdmin: claims.IsAdmin}, nil
}
