package recent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"canva-clone/core"
	"canva-clone/stores/memory"
)

func TestAdd_PrependsAndCaps(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(memory.NewStore(), "")

	var last Summary
	for i := 0; i < 15; i++ {
		s, err := r.Add(ctx, SummaryInput{Label: fmt.Sprintf("design %d", i)})
		if err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
		last = s
	}

	list := r.List()
	if len(list) != MaxEntries {
		t.Fatalf("List() length = %d, want %d", len(list), MaxEntries)
	}
	if list[0].ID != last.ID || list[0].Label != "design 14" {
		t.Errorf("List()[0] = %+v, want the newest design", list[0])
	}
	if list[9].Label != "design 5" {
		t.Errorf("List()[9] = %q, want design 5", list[9].Label)
	}
}

func TestAdd_PersistsAndLoads(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()

	r := NewRegistry(kv, "")
	added, _ := r.Add(ctx, SummaryInput{Label: "Poster", Thumbnail: "kv://thumbnails/p.png", DesignID: "d1"})

	reloaded := NewRegistry(kv, "")
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	got, ok := reloaded.Get(added.ID)
	if !ok {
		t.Fatalf("Get(%s) not found after reload", added.ID)
	}
	if got.Label != "Poster" || got.Thumbnail != "kv://thumbnails/p.png" || got.DesignID != "d1" {
		t.Errorf("Get() = %+v", got)
	}
	if !got.CreatedAt.Equal(added.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, added.CreatedAt)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(memory.NewStore(), "")
	s, _ := r.Add(ctx, SummaryInput{Label: "Draft"})

	done := true
	got, err := r.Update(ctx, s.ID, SummaryPatch{IsCompleted: &done})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if !got.IsCompleted || got.Label != "Draft" {
		t.Errorf("Update() = %+v, want completed with label kept", got)
	}

	if _, err := r.Update(ctx, "missing", SummaryPatch{}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(memory.NewStore(), "")
	a, _ := r.Add(ctx, SummaryInput{Label: "a"})
	b, _ := r.Add(ctx, SummaryInput{Label: "b"})

	if err := r.Remove(ctx, a.ID); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if err := r.Remove(ctx, "missing"); err != nil {
		t.Errorf("Remove() of unknown id = %v, want nil", err)
	}
	if list := r.List(); len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("List() = %+v, want only %s", list, b.ID)
	}

	if err := r.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if len(r.List()) != 0 {
		t.Error("List() not empty after Clear()")
	}
}

func TestLoad_CorruptDataStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	kv.Set(ctx, DefaultKey, []byte("not json"))

	r := NewRegistry(kv, "")
	if err := r.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if len(r.List()) != 0 {
		t.Errorf("List() = %+v, want empty", r.List())
	}
}

func TestFindByDesign(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(memory.NewStore(), "")
	r.Add(ctx, SummaryInput{Label: "other", DesignID: "d2"})
	want, _ := r.Add(ctx, SummaryInput{Label: "mine", DesignID: "d1"})

	got, ok := r.FindByDesign("d1")
	if !ok || got.ID != want.ID {
		t.Errorf("FindByDesign() = %+v, %v", got, ok)
	}
	if _, ok := r.FindByDesign(""); ok {
		t.Error("FindByDesign(\"\") matched a summary")
	}
}
