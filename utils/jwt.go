package utils

import (
	"errors"
	"time"

	"github.com/gabrielbaute/octopus-photos/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ScopeAccess = "access"
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Scope  string `json:"scope"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid or expired token")

func GenerateToken(userID uint) (string, error) {
	return generateScopedToken(userID, ScopeAccess,
		time.Duration(config.AppConfig.JWT.ExpireHours)*time.Hour)
}

func generateScopedToken(userID uint, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWT.Secret))
}

func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(config.AppConfig.JWT.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Scope != ScopeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
