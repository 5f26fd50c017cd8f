package kv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"canva-clone/auth"
	"canva-clone/core"
	"canva-clone/middleware"
	"canva-clone/stores/memory"

	"github.com/go-chi/chi/v5"
)

func newRouter(store core.KeyValueStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.AuthJWT)
	r.Get("/", HandleList(store))
	r.Route("/{key}", func(r chi.Router) {
		r.Get("/", HandleGet(store))
		r.Put("/", HandlePut(store))
		r.Delete("/", HandleDelete(store))
	})
	return r
}

func request(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestKV_RoundTrip(t *testing.T) {
	auth.Init("")
	store := memory.NewStore()
	h := newRouter(store)

	if rec := request(h, http.MethodPut, "/draft/", `{"a":1}`, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("put: status %d", rec.Code)
	}
	rec := request(h, http.MethodGet, "/draft/", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"a":1}` {
		t.Errorf("get: %d %q", rec.Code, rec.Body.String())
	}

	// values live under the caller's prefix
	if _, err := store.Get(context.Background(), "users/anonymous/draft"); err != nil {
		t.Errorf("stored key not scoped: %v", err)
	}

	var keys []string
	json.NewDecoder(request(h, http.MethodGet, "/", "", "").Body).Decode(&keys)
	if len(keys) != 1 || keys[0] != "draft" {
		t.Errorf("list = %v, want [draft]", keys)
	}

	request(h, http.MethodDelete, "/draft/", "", "")
	if rec := request(h, http.MethodGet, "/draft/", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: %d, want 404", rec.Code)
	}
}

func TestKV_UsersAreIsolated(t *testing.T) {
	auth.Init("test-secret")
	defer auth.Init("")
	alice, _ := auth.CreateJWT("alice", "", time.Hour)
	bob, _ := auth.CreateJWT("bob", "", time.Hour)
	h := newRouter(memory.NewStore())

	request(h, http.MethodPut, "/note/", "secret", alice)

	if rec := request(h, http.MethodGet, "/note/", "", bob); rec.Code != http.StatusNotFound {
		t.Errorf("bob read alice's key: %d", rec.Code)
	}
	if rec := request(h, http.MethodGet, "/note/", "", alice); rec.Body.String() != "secret" {
		t.Errorf("alice get = %q", rec.Body.String())
	}
	if rec := request(h, http.MethodGet, "/note/", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated get: %d, want 401", rec.Code)
	}
}

func TestKV_ValueTooLarge(t *testing.T) {
	auth.Init("")
	h := newRouter(memory.NewStore())
	big := strings.Repeat("x", MaxValueSize+1)
	if rec := request(h, http.MethodPut, "/big/", big, ""); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}
