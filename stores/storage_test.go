package stores

import (
	"context"
	"path/filepath"
	"testing"

	"canva-clone/config"
)

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  config.Storage
	}{
		{"default", config.Storage{}},
		{"memory", config.Storage{Type: "memory"}},
		{"filesystem", config.Storage{Type: "filesystem", LocalPath: filepath.Join(dir, "fs")}},
		{"sqlite", config.Storage{Type: "sqlite", DataSourceName: filepath.Join(dir, "kv.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, err := Open(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			defer store.Close()

			if err := store.Set(ctx, "k", []byte("v")); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
			got, err := store.Get(ctx, "k")
			if err != nil || string(got) != "v" {
				t.Errorf("Get() = %s, %v", got, err)
			}
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	for _, cfg := range []config.Storage{
		{Type: "floppy"},
		{Type: "mysql"},
		{Type: "postgres"},
		{Type: "mongo"},
	} {
		if _, err := Open(context.Background(), cfg); err == nil {
			t.Errorf("Open(%+v) succeeded, want error", cfg)
		}
	}
}
