// Package config holds the enumerated run options from spec.md §6 and
// a flag-based loader, mirroring the teacher's ParseOptions /
// DefaultParseOptions pattern (pkg/s57/options.go) and the flag-driven
// main() shape used by the retrieval pack's other OSM importer entry
// point (thomersch-imposm3/goposm.go).
package config

import (
	"flag"
	"fmt"

	"github.com/go-osm/osm2pgsql/internal/cache"
)

// CacheStrategy names spec.md §6's cache_strategy values.
type CacheStrategy string

const (
	StrategyDense     CacheStrategy = "dense"
	StrategySparse    CacheStrategy = "sparse"
	StrategyChunk     CacheStrategy = "chunk"
	StrategyOptimized CacheStrategy = "optimized"
)

// Config is the full set of run options spec.md §6 enumerates.
type Config struct {
	// CacheSizeMB is the NodeStore budget B in megabytes. Default 800.
	CacheSizeMB int
	// CacheStrategy selects dense/sparse/chunk/optimized.
	CacheStrategy CacheStrategy
	// LossyCache, if true, drops entries silently on capacity
	// exhaustion instead of failing.
	LossyCache bool
	// IgnoreInvalidLocations, if true, builds a primitive's geometry
	// from the node locations that do resolve, leaving out the missing
	// ones; if false, no geometry is built for a primitive that
	// references a missing node location.
	IgnoreInvalidLocations bool
	// CreateEmptyAreas emits tags-only rows when geometry assembly
	// fails or produces zero rings.
	CreateEmptyAreas bool
	// KeepTypeTag retains a relation's type=multipolygon tag on
	// output instead of stripping it.
	KeepTypeTag bool
	// BuildMultigeoms, if false, collapses a multipolygon relation
	// that assembled down to a single outer ring to a bare POLYGON
	// instead of always emitting MULTIPOLYGON. Has no effect on a
	// standalone closed way (spec.md §4.3 case (i)), which always
	// emits POLYGON regardless of this setting.
	BuildMultigeoms bool
	// ProjectionSRID is the integer SRID stamped into every EWKB
	// header.
	ProjectionSRID int

	// InputPath is the decoder source file; "-" or "" means stdin.
	InputPath string
	// DatabaseURL is the pgx connection string the writer pool
	// connects with.
	DatabaseURL string
	// Workers bounds the writer pool concurrency (spec.md §5). The
	// decoder reads its input on a single goroutine.
	Workers int
}

// Default returns spec.md §6's documented defaults.
func Default() Config {
	return Config{
		CacheSizeMB:            800,
		CacheStrategy:          StrategyOptimized,
		LossyCache:             false,
		IgnoreInvalidLocations: false,
		CreateEmptyAreas:       false,
		KeepTypeTag:            false,
		BuildMultigeoms:        true,
		ProjectionSRID:         4326,
		Workers:                4,
	}
}

// Parse populates a Config from command-line flags, the same shape as
// the teacher's Default*Options()-then-override pattern adapted to
// flag.FlagSet instead of a struct literal, since this package is a
// CLI entry point rather than a library call site.
func Parse(args []string) (Config, error) {
	cfg := Default()
	fs := flag.NewFlagSet("osm2pgsql", flag.ContinueOnError)

	fs.IntVar(&cfg.CacheSizeMB, "cache-size-mb", cfg.CacheSizeMB, "NodeStore memory budget in megabytes")
	strategy := fs.String("cache-strategy", string(cfg.CacheStrategy), "NodeStore strategy: dense, sparse, chunk, or optimized")
	fs.BoolVar(&cfg.LossyCache, "lossy-cache", cfg.LossyCache, "drop entries silently on capacity exhaustion instead of failing")
	fs.BoolVar(&cfg.IgnoreInvalidLocations, "ignore-invalid-locations", cfg.IgnoreInvalidLocations, "build geometry from the resolvable nodes, leaving out unresolved node references")
	fs.BoolVar(&cfg.CreateEmptyAreas, "create-empty-areas", cfg.CreateEmptyAreas, "emit tags-only rows when geometry assembly fails")
	fs.BoolVar(&cfg.KeepTypeTag, "keep-type-tag", cfg.KeepTypeTag, "retain the relation type=multipolygon tag on output")
	fs.BoolVar(&cfg.BuildMultigeoms, "build-multigeoms", cfg.BuildMultigeoms, "always emit MULTIPOLYGON instead of collapsing single-ring results to POLYGON")
	fs.IntVar(&cfg.ProjectionSRID, "srid", cfg.ProjectionSRID, "SRID stamped into every EWKB header")
	fs.StringVar(&cfg.InputPath, "input", "", "input file path, or '-' for stdin")
	fs.StringVar(&cfg.DatabaseURL, "database", "", "PostgreSQL connection string")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "writer pool concurrency")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.CacheStrategy = CacheStrategy(*strategy)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects option combinations spec.md §6 rules out.
func (c Config) Validate() error {
	switch c.CacheStrategy {
	case StrategyDense, StrategySparse, StrategyChunk, StrategyOptimized:
	default:
		return fmt.Errorf("config: unknown cache strategy %q", c.CacheStrategy)
	}
	if c.CacheSizeMB <= 0 {
		return fmt.Errorf("config: cache-size-mb must be positive, got %d", c.CacheSizeMB)
	}
	if c.ProjectionSRID <= 0 {
		return fmt.Errorf("config: srid must be positive, got %d", c.ProjectionSRID)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	}
	return nil
}

// NodeStoreOptions translates the cache_size_mb/cache_strategy/
// lossy_cache trio into internal/cache.Options. StrategyChunk maps
// onto cache.StrategyDense: NodeStore's design note (spec.md §4.1)
// only distinguishes Dense, Sparse, and the Dense|Sparse combination,
// so the "chunk" configuration name is accepted as a synonym for
// fixed-size dense blocks rather than a fourth distinct allocator.
func (c Config) NodeStoreOptions() cache.Options {
	opts := cache.Options{
		BudgetBytes: int64(c.CacheSizeMB) * 1024 * 1024,
		Lossy:       c.LossyCache,
	}
	switch c.CacheStrategy {
	case StrategyDense, StrategyChunk:
		opts.Strategy = cache.StrategyDense
	case StrategySparse:
		opts.Strategy = cache.StrategySparse
	default:
		opts.Strategy = cache.StrategyOptimized
	}
	return opts
}
