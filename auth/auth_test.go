package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestCreateAndParseJWT(t *testing.T) {
	Init("test-secret")
	defer Init("")

	token, err := CreateJWT("user-1", "Ada", time.Hour)
	if err != nil {
		t.Fatalf("CreateJWT() failed: %v", err)
	}
	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT() failed: %v", err)
	}
	if claims.Subject != "user-1" || claims.Name != "Ada" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	Init("one")
	token, _ := CreateJWT("user-1", "", time.Hour)
	Init("two")
	defer Init("")

	if _, err := ParseJWT(token); err == nil {
		t.Error("ParseJWT() accepted a token signed with another secret")
	}
}

func TestParseJWT_Expired(t *testing.T) {
	Init("test-secret")
	defer Init("")

	claims := AppClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))

	if _, err := ParseJWT(token); err == nil {
		t.Error("ParseJWT() accepted an expired token")
	}
}

func TestDisabled(t *testing.T) {
	Init("")
	if Enabled() {
		t.Error("Enabled() = true without a secret")
	}
	if _, err := CreateJWT("user-1", "", 0); !errors.Is(err, ErrDisabled) {
		t.Errorf("CreateJWT() error = %v, want ErrDisabled", err)
	}
}
