package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SampleIntervalM != 20 {
		t.Fatalf("sample interval = %v, want 20", cfg.SampleIntervalM)
	}
	if cfg.PlanTimeout() != 30*time.Second {
		t.Fatalf("plan timeout = %v, want 30s", cfg.PlanTimeout())
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "umbra.yaml")
	body := "sample_interval_m: 10\ncanopy_threshold: 0.5\nsnapshot_cache_ttl_s: 60\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SampleIntervalM != 10 {
		t.Fatalf("sample interval = %v, want 10", cfg.SampleIntervalM)
	}
	if cfg.CanopyThreshold != 0.5 {
		t.Fatalf("canopy threshold = %v, want 0.5", cfg.CanopyThreshold)
	}
	if cfg.SnapshotCacheTTL() != time.Minute {
		t.Fatalf("cache ttl = %v, want 1m", cfg.SnapshotCacheTTL())
	}
	// Untouched keys keep their defaults.
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("listen addr = %q, want :8080", cfg.ListenAddr)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "umbra.yaml")
	if err := os.WriteFile(path, []byte("sample_interval_m: -1\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative sample interval")
	}
}
