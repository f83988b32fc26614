package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.MaxUploadSizeMB != 100 {
		t.Fatalf("expected default upload ceiling, got %d", cfg.Storage.MaxUploadSizeMB)
	}
	if !cfg.Retention.Enabled {
		t.Fatalf("expected retention enabled by default")
	}
}

func TestLoad_PartialFileKeepsDefaultsForRest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 9999\nstorage:\n  maxUploadSizeMB: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Fatalf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Storage.MaxUploadSizeMB != 5 {
		t.Fatalf("expected upload ceiling 5, got %d", cfg.Storage.MaxUploadSizeMB)
	}
	if cfg.Worker.MaxConcurrentJobs != 4 {
		t.Fatalf("expected default worker limit, got %d", cfg.Worker.MaxConcurrentJobs)
	}
	if cfg.MaxUploadBytes() != 5*1024*1024 {
		t.Fatalf("unexpected MaxUploadBytes: %d", cfg.MaxUploadBytes())
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}
