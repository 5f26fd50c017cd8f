package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by a KeyValueStore when a key holds no value.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound is returned when no editing session has the given id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidKey is returned for keys that would escape their owner's scope.
	ErrInvalidKey = errors.New("invalid key")
)

// UserScope is the key prefix holding everything stored on behalf of owner.
func UserScope(owner string) string {
	return "users/" + owner + "/"
}

// ScopedKey maps a key relative to owner's scope onto a backend key.
func ScopedKey(owner, key string) (string, error) {
	if owner == "" || owner == "." || owner == ".." || strings.Contains(owner, "/") {
		return "", fmt.Errorf("%w: owner %q", ErrInvalidKey, owner)
	}
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return UserScope(owner) + key, nil
}

type (
	// KeyValueStore is the persistence backend for design records, the
	// recent-designs registry and captured thumbnails.
	KeyValueStore interface {
		// Get returns the value stored under key, or ErrNotFound.
		Get(ctx context.Context, key string) ([]byte, error)

		// Set creates or replaces the value stored under key.
		Set(ctx context.Context, key string, value []byte) error

		// Remove deletes key. Removing a missing key is not an error.
		Remove(ctx context.Context, key string) error

		// List returns the keys starting with prefix, sorted.
		List(ctx context.Context, prefix string) ([]string, error)

		Close() error
	}
)
