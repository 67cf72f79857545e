// discoveryd wires the discovery core's collaborators together and
// runs one job to completion, narrating it to stdout. It is a
// composition-root smoke test, not the HTTP/SSE surface the core is
// meant to sit behind — that transport is left to a calling service,
// same as this core's design keeps it out of scope.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"pantryscout-discovery/internal/config"
	"pantryscout-discovery/internal/extractor"
	"pantryscout-discovery/internal/ingest"
	"pantryscout-discovery/internal/model"
	"pantryscout-discovery/internal/orchestrator"
	"pantryscout-discovery/internal/places"
	"pantryscout-discovery/internal/scraper"
	"pantryscout-discovery/internal/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("DISCOVERYD_CONFIG"), "path to a YAML config overlay (optional)")
	lat := flag.Float64("lat", 41.8781, "search center latitude")
	lng := flag.Float64("lng", -87.6298, "search center longitude")
	radius := flag.Int("radius", 8000, "search radius in meters")
	query := flag.String("query", "food pantry", "label recorded on the job; actual search uses places.variants")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, closeFns, err := wire(ctx, cfg)
	if err != nil {
		log.Fatalf("wiring failed: %v", err)
	}
	defer closeFns()

	const callerID = "discoveryd-cli"
	jobID, existingCount, err := orch.StartJob(ctx, callerID, *query, model.Point{Lat: *lat, Lng: *lng}, *radius)
	if err != nil {
		log.Fatalf("start job: %v", err)
	}
	log.Printf("started job %s centered on (%.4f, %.4f) radius=%dm, %d pantries already known nearby", jobID, *lat, *lng, *radius, existingCount)

	events, err := orch.Subscribe(callerID, jobID)
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	for ev := range events {
		payload, _ := json.Marshal(ev.Data)
		log.Printf("[%s] %s", ev.Type, payload)
	}
	log.Printf("job %s finished", jobID)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Normalize(config.Default())
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	return config.Normalize(cfg)
}

// wire builds every collaborator the orchestrator needs from cfg and
// environment-provided API keys, matching the engine's main.go shape
// of "load config, build dependencies, hand them to the thing that
// does the work" rather than a DI framework.
func wire(ctx context.Context, cfg config.Config) (*orchestrator.Orchestrator, func(), error) {
	mongoStore, err := store.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() { mongoStore.Close(ctx) }

	placesCache, err := buildPlacesCache(ctx, cfg, mongoStore)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	placesClient := &places.Client{
		Provider:    places.NewGoogleClient(os.Getenv("GOOGLE_PLACES_API_KEY"), cfg.Places.Timeout),
		Cache:       placesCache,
		Variants:    cfg.Places.Variants,
		LatLngRound: cfg.Places.LatLngRound,
		CacheTTL:    time.Duration(cfg.Places.CacheTTLSecs) * time.Second,
	}

	pipeline := &ingest.Pipeline{
		Scraper:   scraper.NewHTTPScraper(cfg.Timeouts.Scrape, 60, 5),
		Extractor: extractor.New(extractor.NewGeminiClient(os.Getenv("GEMINI_API_KEY"), "", cfg.Timeouts.Extract), nil),
	}

	orch := orchestrator.New(cfg, placesClient, pipeline, mongoStore)
	return orch, closeStore, nil
}

func buildPlacesCache(ctx context.Context, cfg config.Config, mongoStore *store.MongoStore) (places.Cache, error) {
	if cfg.Places.CacheBackend == "redis" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		return places.NewRedisCache(redisClient), nil
	}
	return places.NewMongoCache(ctx, mongoStore.Client(), cfg.Mongo.Database)
}
