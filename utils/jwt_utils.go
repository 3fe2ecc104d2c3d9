package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// AdminClaims identifies the back office user a token was issued to.
type AdminClaims struct {
	AdminID string `json:"admin_id"`
	Login   string `json:"login"`
	jwt.RegisteredClaims
}

func IssueToken(secret, adminID, login string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		AdminID: adminID,
		Login:   login,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return token, nil
}

func ParseToken(secret, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.AdminID == "" {
		return nil, fmt.Errorf("%w: missing admin id", ErrInvalidToken)
	}
	return claims, nil
}
