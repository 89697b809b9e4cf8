package config

import (
	"testing"

	"github.com/go-osm/osm2pgsql/internal/cache"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() failed Validate: %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]string{
		"-cache-size-mb=200",
		"-cache-strategy=sparse",
		"-lossy-cache",
		"-ignore-invalid-locations",
		"-create-empty-areas",
		"-keep-type-tag",
		"-build-multigeoms=false",
		"-srid=3857",
		"-input=-",
		"-workers=8",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.CacheSizeMB != 200 {
		t.Errorf("CacheSizeMB = %d, want 200", cfg.CacheSizeMB)
	}
	if cfg.CacheStrategy != StrategySparse {
		t.Errorf("CacheStrategy = %q, want sparse", cfg.CacheStrategy)
	}
	if !cfg.LossyCache || !cfg.IgnoreInvalidLocations || !cfg.CreateEmptyAreas || !cfg.KeepTypeTag {
		t.Errorf("boolean flags not all set: %+v", cfg)
	}
	if cfg.BuildMultigeoms {
		t.Errorf("BuildMultigeoms = true, want false")
	}
	if cfg.ProjectionSRID != 3857 {
		t.Errorf("ProjectionSRID = %d, want 3857", cfg.ProjectionSRID)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
}

func TestParseRejectsUnknownStrategy(t *testing.T) {
	_, err := Parse([]string{"-cache-strategy=bogus"})
	if err == nil {
		t.Fatalf("expected an error for an unknown cache strategy")
	}
}

func TestParseRejectsNonPositiveCacheSize(t *testing.T) {
	_, err := Parse([]string{"-cache-size-mb=0"})
	if err == nil {
		t.Fatalf("expected an error for a non-positive cache size")
	}
}

func TestNodeStoreOptionsTranslation(t *testing.T) {
	cases := []struct {
		strategy CacheStrategy
		want     cache.Strategy
	}{
		{StrategyDense, cache.StrategyDense},
		{StrategyChunk, cache.StrategyDense},
		{StrategySparse, cache.StrategySparse},
		{StrategyOptimized, cache.StrategyOptimized},
	}
	for _, c := range cases {
		cfg := Default()
		cfg.CacheStrategy = c.strategy
		cfg.CacheSizeMB = 10
		opts := cfg.NodeStoreOptions()
		if opts.Strategy != c.want {
			t.Errorf("strategy %q -> %v, want %v", c.strategy, opts.Strategy, c.want)
		}
		if opts.BudgetBytes != 10*1024*1024 {
			t.Errorf("BudgetBytes = %d, want %d", opts.BudgetBytes, 10*1024*1024)
		}
	}
}
