package auth

import (
	"errors"
	"time"

	"garden-ai/internal/domain/users"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs the app session tokens AuthMiddleware accepts.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret string, lifetime time.Duration) *TokenIssuer {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), lifetime: lifetime, now: time.Now}
}

func (i *TokenIssuer) Issue(user users.User) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	now := i.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(i.lifetime).Unix(),
	})
	return t.SignedString(i.secret)
}
