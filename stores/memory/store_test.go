package memory

import (
	"context"
	"testing"

	"canva-clone/core"
	"canva-clone/stores/storetest"
)

func TestNewStore(t *testing.T) {
	store := NewStore()
	if store == nil {
		t.Fatal("NewStore() returned nil")
	}
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.KeyValueStore { return NewStore() })
}

func TestGet_ReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	store.Set(ctx, "k", []byte("abc"))
	got, _ := store.Get(ctx, "k")
	got[0] = 'z'

	again, _ := store.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("Get() = %s, want abc", again)
	}
}
