package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Bearer-token protection of the command surface. Enabled only when a
// JWT secret is configured; the surface stays open otherwise.

var jwtSecret []byte

const accessTokenTTL = 24 * time.Hour

func InitAuthConfig(secret string) {
	jwtSecret = []byte(secret)
}

func AuthEnabled() bool {
	return len(jwtSecret) > 0
}

type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateAccessToken mints a token for a caller that presented the
// configured API key.
func GenerateAccessToken(name string) (string, error) {
	if !AuthEnabled() {
		return "", errors.New("auth is not configured")
	}

	claims := &Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
