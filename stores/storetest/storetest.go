// Package storetest holds the behaviour every core.KeyValueStore must share.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"canva-clone/core"
)

// Run exercises a fresh store returned by open.
func Run(t *testing.T, open func(t *testing.T) core.KeyValueStore) {
	t.Run("GetMissing", func(t *testing.T) {
		s := open(t)
		if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("SetGet", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		if err := s.Set(ctx, "currentDesign", []byte(`{"elements":[]}`)); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		got, err := s.Get(ctx, "currentDesign")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if string(got) != `{"elements":[]}` {
			t.Errorf("Get() = %s, want the stored value", got)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		s.Set(ctx, "k", []byte("first"))
		if err := s.Set(ctx, "k", []byte("second")); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		got, _ := s.Get(ctx, "k")
		if string(got) != "second" {
			t.Errorf("Get() = %s, want second", got)
		}
	})

	t.Run("BinaryValue", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		value := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 255}

		if err := s.Set(ctx, "thumbnails/a.png", value); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		got, err := s.Get(ctx, "thumbnails/a.png")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if !reflect.DeepEqual(got, value) {
			t.Errorf("Get() = %v, want %v", got, value)
		}
	})

	t.Run("RemoveIsIdempotent", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		s.Set(ctx, "k", []byte("v"))
		if err := s.Remove(ctx, "k"); err != nil {
			t.Fatalf("Remove() failed: %v", err)
		}
		if err := s.Remove(ctx, "k"); err != nil {
			t.Errorf("second Remove() error = %v, want nil", err)
		}
		if _, err := s.Get(ctx, "k"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Get() after Remove() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListByPrefix", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		for _, k := range []string{"design_b", "recentDesigns", "design_a", "users/u1/design_c"} {
			if err := s.Set(ctx, k, []byte("x")); err != nil {
				t.Fatalf("Set(%s) failed: %v", k, err)
			}
		}

		got, err := s.List(ctx, "design_")
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if want := []string{"design_a", "design_b"}; !reflect.DeepEqual(got, want) {
			t.Errorf("List() = %v, want %v", got, want)
		}

		got, _ = s.List(ctx, "users/u1/")
		if want := []string{"users/u1/design_c"}; !reflect.DeepEqual(got, want) {
			t.Errorf("List(users/u1/) = %v, want %v", got, want)
		}

		got, _ = s.List(ctx, "")
		if len(got) != 4 {
			t.Errorf("List(\"\") = %v, want 4 keys", got)
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := string(rune('a' + i))
				for j := 0; j < 10; j++ {
					if err := s.Set(ctx, key, []byte{byte(j)}); err != nil {
						t.Errorf("Set() failed: %v", err)
						return
					}
					if _, err := s.Get(ctx, key); err != nil {
						t.Errorf("Get() failed: %v", err)
						return
					}
				}
			}(i)
		}
		wg.Wait()
	})
}
