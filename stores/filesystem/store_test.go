package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"canva-clone/core"
	"canva-clone/stores/storetest"
)

func TestNewStore_CreatesDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "data")

	if _, err := NewStore(base); err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	if info, err := os.Stat(base); err != nil || !info.IsDir() {
		t.Errorf("base directory not created: %v", err)
	}
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.KeyValueStore {
		store, err := NewStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewStore() failed: %v", err)
		}
		return store
	})
}

func TestSet_KeysStayInsideBasePath(t *testing.T) {
	base := t.TempDir()
	store, _ := NewStore(base)
	ctx := context.Background()

	if err := store.Set(ctx, "../escape", []byte("x")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(base), "escape")); !os.IsNotExist(err) {
		t.Error("key with .. was written outside the base path")
	}
	got, err := store.Get(ctx, "../escape")
	if err != nil || string(got) != "x" {
		t.Errorf("Get() = %s, %v", got, err)
	}
}

func TestSet_RejectsDotKeys(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	for _, key := range []string{"", ".", ".."} {
		if err := store.Set(context.Background(), key, []byte("x")); !errors.Is(err, errInvalidKey) {
			t.Errorf("Set(%q) error = %v, want errInvalidKey", key, err)
		}
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	base := t.TempDir()
	ctx := context.Background()

	first, _ := NewStore(base)
	if err := first.Set(ctx, "recentDesigns", []byte("[]")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	second, _ := NewStore(base)
	got, err := second.Get(ctx, "recentDesigns")
	if err != nil || string(got) != "[]" {
		t.Errorf("Get() = %s, %v; want [] from disk", got, err)
	}
}
