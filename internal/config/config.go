// Package config loads and validates the discovery core's runtime
// configuration from a YAML file, following the same load/validate/save
// shape used throughout the rest of the corpus this core was built from.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable named in the orchestration spec's
// configuration table.
type Config struct {
	Places struct {
		Variants      []string `yaml:"variants"`
		CacheTTLSecs  int      `yaml:"cache_ttl_seconds"`
		LatLngRound   int      `yaml:"lat_lng_round"`
		CacheBackend  string   `yaml:"cache_backend"` // "mongo" | "redis"
		Timeout       time.Duration `yaml:"timeout"`
	} `yaml:"places"`

	Worker struct {
		Concurrency int `yaml:"concurrency"`
	} `yaml:"worker"`

	Timeouts struct {
		Scrape  time.Duration `yaml:"scrape"`
		Extract time.Duration `yaml:"extract"`
		Job     time.Duration `yaml:"job"`
	} `yaml:"timeouts"`

	Progress struct {
		CoalesceMs int `yaml:"coalesce_ms"`
	} `yaml:"progress"`

	Subscriber struct {
		SlowThreshold time.Duration `yaml:"slow_threshold"`
		Grace         time.Duration `yaml:"grace"`
	} `yaml:"subscriber"`

	Dedupe struct {
		FreshnessHours int `yaml:"freshness_hours"`
	} `yaml:"dedupe"`

	RateLimit struct {
		StartJobPerMinute   float64 `yaml:"start_job_per_minute"`
		SubscribePerMinute  float64 `yaml:"subscribe_per_minute"`
		Burst               int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	ViewportMinPantries int `yaml:"viewport_min_pantries"`

	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Default returns the configuration described by spec.md §6's defaults.
func Default() Config {
	var c Config
	c.Places.Variants = []string{"food bank", "food pantry", "food distribution", "community food"}
	c.Places.CacheTTLSecs = 604800
	c.Places.LatLngRound = 3
	c.Places.CacheBackend = "mongo"
	c.Places.Timeout = 15 * time.Second
	c.Worker.Concurrency = 6
	c.Timeouts.Scrape = 30 * time.Second
	c.Timeouts.Extract = 45 * time.Second
	c.Timeouts.Job = 10 * time.Minute
	c.Progress.CoalesceMs = 250
	c.Subscriber.SlowThreshold = 5 * time.Second
	c.Subscriber.Grace = 30 * time.Second
	c.Dedupe.FreshnessHours = 24
	c.RateLimit.StartJobPerMinute = 10
	c.RateLimit.SubscribePerMinute = 30
	c.RateLimit.Burst = 5
	c.ViewportMinPantries = 0
	c.Mongo.URI = "mongodb://localhost:27017"
	c.Mongo.Database = "pantryscout"
	c.Redis.Addr = "localhost:6379"
	c.Redis.DB = 0
	return c
}

// Load reads a YAML file and overlays it on top of Default(), so a
// partial config file only needs to name what it's overriding.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
