package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.StandardClaims
}

// TokenManager issues and validates HS256 tokens.
type TokenManager struct {
	secret   []byte
	lifespan time.Duration
}

func NewTokenManager(secret string, lifespan time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), lifespan: lifespan}
}

func (m *TokenManager) Generate(userID int64, username string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:   userID,
		Username: username,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(m.lifespan).Unix(),
			IssuedAt:  now.Unix(),
		},
	})
	return t.SignedString(m.secret)
}

func (m *TokenManager) Validate(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
