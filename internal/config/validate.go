package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate collects every problem with cfg instead of failing on the
// first one, matching the rest of the corpus's config validation shape.
func Validate(cfg Config) error {
	var errs []string

	if cfg.Worker.Concurrency <= 0 {
		errs = append(errs, "worker.concurrency must be > 0")
	}
	if cfg.Places.CacheTTLSecs <= 0 {
		errs = append(errs, "places.cache_ttl_seconds must be > 0")
	}
	if cfg.Places.LatLngRound < 0 || cfg.Places.LatLngRound > 8 {
		errs = append(errs, "places.lat_lng_round must be 0..8")
	}
	if cfg.Places.CacheBackend != "mongo" && cfg.Places.CacheBackend != "redis" {
		errs = append(errs, fmt.Sprintf("places.cache_backend must be 'mongo' or 'redis', got %q", cfg.Places.CacheBackend))
	}
	if len(cfg.Places.Variants) == 0 {
		errs = append(errs, "places.variants must have at least one entry")
	}
	if cfg.Timeouts.Scrape <= 0 || cfg.Timeouts.Extract <= 0 || cfg.Timeouts.Job <= 0 {
		errs = append(errs, "timeouts.scrape, timeouts.extract, and timeouts.job must all be > 0")
	}
	if cfg.Progress.CoalesceMs < 0 {
		errs = append(errs, "progress.coalesce_ms must be >= 0")
	}
	if cfg.RateLimit.Burst <= 0 {
		errs = append(errs, "rate_limit.burst must be > 0")
	}
	if cfg.Mongo.URI == "" || cfg.Mongo.Database == "" {
		errs = append(errs, "mongo.uri and mongo.database must be set")
	}
	if cfg.Places.CacheBackend == "redis" && cfg.Redis.Addr == "" {
		errs = append(errs, "redis.addr must be set when places.cache_backend is 'redis'")
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
}

// Normalize trims/dedupes the list-valued options in place, matching the
// corpus's NormalizeAndValidate pattern, and returns Validate's verdict.
func Normalize(cfg Config) (Config, error) {
	out := cfg
	out.Places.Variants = dedupeTrim(out.Places.Variants)
	if err := Validate(out); err != nil {
		return out, err
	}
	return out, nil
}

func dedupeTrim(xs []string) []string {
	seen := map[string]bool{}
	var ys []string
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		key := strings.ToLower(x)
		if seen[key] {
			continue
		}
		seen[key] = true
		ys = append(ys, x)
	}
	return ys
}
