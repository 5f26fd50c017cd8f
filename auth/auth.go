// Package auth issues and verifies the HS256 tokens that scope API access.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// DefaultTTL is the lifetime of tokens issued by CreateJWT.
const DefaultTTL = time.Hour * 24 * 7

var ErrDisabled = errors.New("auth: no JWT secret configured")

var (
	mu        sync.RWMutex
	jwtSecret []byte
)

// AppClaims represents the custom claims for the JWT.
type AppClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// Init sets the signing secret. An empty secret disables token checks.
func Init(secret string) {
	mu.Lock()
	defer mu.Unlock()
	jwtSecret = []byte(secret)
	if secret == "" {
		logrus.Warn("JWT_SECRET not set, API runs without authentication")
		return
	}
	logrus.Info("JWT authentication enabled")
}

func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return len(jwtSecret) > 0
}

func secret() []byte {
	mu.RLock()
	defer mu.RUnlock()
	return jwtSecret
}

// CreateJWT signs a token for subject valid for ttl.
func CreateJWT(subject, name string, ttl time.Duration) (string, error) {
	key := secret()
	if len(key) == 0 {
		return "", ErrDisabled
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	claims := AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name: name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

func ParseJWT(tokenString string) (*AppClaims, error) {
	key := secret()
	if len(key) == 0 {
		return nil, ErrDisabled
	}
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AppClaims); ok && token.Valid && claims.Subject != "" {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
