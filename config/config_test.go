package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE_TYPE", "HISTORY_LIMIT", "AUTOSAVE_SCHEDULE", "JWT_SECRET"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.Storage.Type != "memory" {
		t.Errorf("Storage.Type = %q, want memory", cfg.Storage.Type)
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", cfg.HistoryLimit)
	}
	if cfg.AutosaveSchedule != "@every 30s" {
		t.Errorf("AutosaveSchedule = %q", cfg.AutosaveSchedule)
	}
	if cfg.JWTSecret != "" {
		t.Errorf("JWTSecret = %q, want empty", cfg.JWTSecret)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "sqlite")
	t.Setenv("DATA_SOURCE_NAME", "designs.db")
	t.Setenv("HISTORY_LIMIT", "20")
	t.Setenv("S3_BUCKET_NAME", "bucket")

	cfg := Load()

	if cfg.Storage.Type != "sqlite" || cfg.Storage.DataSourceName != "designs.db" || cfg.Storage.S3Bucket != "bucket" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.HistoryLimit != 20 {
		t.Errorf("HistoryLimit = %d, want 20", cfg.HistoryLimit)
	}
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "lots")
	if got := Load().HistoryLimit; got != 50 {
		t.Errorf("HistoryLimit = %d, want 50", got)
	}
}
