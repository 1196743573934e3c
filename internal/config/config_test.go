package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load defaults failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("default port want 8080 got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadHeaderTimeout() != 5*time.Second || cfg.Server.WriteTimeout() != 30*time.Second || cfg.Server.ShutdownTimeout() != 10*time.Second {
		t.Fatalf("unexpected server timeouts: %+v", cfg.Server)
	}
	if cfg.Checkout.OrderNoPrefix != "AM" || cfg.Checkout.OrderNoMaxAttempts != 5 {
		t.Fatalf("unexpected checkout defaults: %+v", cfg.Checkout)
	}
	if cfg.JWT.AccessTTL() != 5*time.Minute {
		t.Fatalf("access ttl want 5m got %s", cfg.JWT.AccessTTL())
	}
	if cfg.JWT.RefreshTTL() != 8*24*time.Hour {
		t.Fatalf("refresh ttl want 192h got %s", cfg.JWT.RefreshTTL())
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Fatalf("unexpected metrics defaults: %+v", cfg.Metrics)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server:\n  port: \"9090\"\ncheckout:\n  order_no_prefix: \"QA\"\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv("JWT_ACCESS_TTL_SECONDS", "60")

	cfg, err := LoadFrom(viper.New(), dir)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("file port want 9090 got %s", cfg.Server.Port)
	}
	if cfg.Checkout.OrderNoPrefix != "QA" {
		t.Fatalf("file prefix want QA got %s", cfg.Checkout.OrderNoPrefix)
	}
	if cfg.JWT.AccessTTL() != time.Minute {
		t.Fatalf("env access ttl want 1m got %s", cfg.JWT.AccessTTL())
	}
}
