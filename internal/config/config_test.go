package config_test

import (
	"testing"

	"pantryscout-discovery/internal/config"
)

func TestDefaultPassesValidate(t *testing.T) {
	if err := config.Validate(config.Default()); err != nil {
		t.Fatalf("Default() should validate, got: %v", err)
	}
}

func TestValidate_RejectsBadCacheBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Places.CacheBackend = "sqlite"
	if err := config.Validate(cfg); err == nil {
		t.Error("expected error for unsupported cache backend")
	}
}

func TestValidate_RejectsZeroConcurrency(t *testing.T) {
	cfg := config.Default()
	cfg.Worker.Concurrency = 0
	if err := config.Validate(cfg); err == nil {
		t.Error("expected error for zero worker concurrency")
	}
}

func TestNormalize_DedupesVariantsCaseInsensitively(t *testing.T) {
	cfg := config.Default()
	cfg.Places.Variants = []string{"Food Bank", " food bank ", "food pantry", ""}
	out, err := config.Normalize(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Places.Variants) != 2 {
		t.Errorf("expected 2 deduped variants, got %d: %v", len(out.Places.Variants), out.Places.Variants)
	}
}
