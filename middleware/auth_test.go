package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"canva-clone/auth"
)

func ownerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(Owner(r)))
	})
}

func TestAuthJWT_Disabled(t *testing.T) {
	auth.Init("")
	rec := httptest.NewRecorder()
	AuthJWT(ownerEcho()).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != AnonymousOwner {
		t.Errorf("got %d %q, want 200 %q", rec.Code, rec.Body.String(), AnonymousOwner)
	}
}

func TestAuthJWT_Enabled(t *testing.T) {
	auth.Init("test-secret")
	defer auth.Init("")
	token, _ := auth.CreateJWT("user-7", "", time.Hour)

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"bad format", "Token " + token, http.StatusUnauthorized, ""},
		{"bad token", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid", "Bearer " + token, http.StatusOK, "user-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			AuthJWT(ownerEcho()).ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("owner = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}
