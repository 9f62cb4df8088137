package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"invoizo/internal/config"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port: want 8080, got %d", cfg.Server.Port)
	}
	if cfg.Notifications.PollInterval != 5*time.Minute {
		t.Errorf("poll interval: want 5m, got %s", cfg.Notifications.PollInterval)
	}
	if cfg.Store.Namespace != "default" {
		t.Errorf("namespace: want default, got %q", cfg.Store.Namespace)
	}
}

func TestLoadFile_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte("server:\n  port: 9090\nnotifications:\n  poll_interval: 30s\nstore:\n  namespace: shop-a\n")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("REDIS_ADDR", "localhost:6380")
	t.Setenv("DATABASE_URL", "postgres://x@localhost/invoizo")

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port: want 9090, got %d", cfg.Server.Port)
	}
	if cfg.Notifications.PollInterval != 30*time.Second {
		t.Errorf("poll interval: want 30s, got %s", cfg.Notifications.PollInterval)
	}
	if cfg.Store.Namespace != "shop-a" {
		t.Errorf("namespace: want shop-a, got %q", cfg.Store.Namespace)
	}
	if cfg.Redis.Addr != "localhost:6380" {
		t.Errorf("redis addr: want env override, got %q", cfg.Redis.Addr)
	}
	if cfg.Database.URL != "postgres://x@localhost/invoizo" {
		t.Errorf("database url: want DATABASE_URL, got %q", cfg.Database.URL)
	}
}
