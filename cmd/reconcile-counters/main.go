// cmd/reconcile-counters/main.go
// Recomputes likes, saves, follower, followee and post counters from row counts
// and tells running AppViews to drop the views showing corrected counters.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"Snapgram/internal/config"
	"Snapgram/internal/core/querycache"
	"Snapgram/internal/core/relationships"
	postgresRepo "Snapgram/internal/db/postgres"
	"Snapgram/internal/events"
)

func main() {
	asJSON := flag.Bool("json", false, "print corrected counters as JSON lines")
	timeout := flag.Duration("timeout", 5*time.Minute, "maximum time for the whole run")
	flag.Parse()

	// The tool never verifies tokens, so a missing JWT_SECRET is fine here.
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrMissingJWTSecret) {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Printf("Connecting to database...")
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }()

	service := relationships.NewService(
		postgresRepo.NewRelationshipRepository(db),
		postgresRepo.NewCounterRepository(db),
		postgresRepo.NewReconcileRepository(db),
		logger,
	)

	// Shared caches are dropped directly; instance-local ones hear about it over NATS.
	var cache querycache.Cache = querycache.NewMemoryCache(1)
	if cfg.CacheBackend == config.CacheRedis {
		client, err := querycache.OpenRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() { _ = client.Close() }()
		cache = querycache.NewRedisCache(client)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.EventsBackend == config.EventsNATS {
		conn, err := events.ConnectNATS(events.NATSConfig{URL: cfg.NATSURL, Name: "reconcile-counters"}, logger)
		if err != nil {
			log.Printf("Warning: NATS unavailable, running AppViews keep stale views until TTL: %v", err)
		} else {
			publisher = conn
		}
	}
	bus := events.NewBus(publisher, "", logger)
	defer func() { _ = bus.Close() }()

	invalidator := querycache.NewInvalidator(cache, nil, bus, logger)
	service = querycache.WrapRelationships(service, invalidator, bus)

	log.Printf("Reconciling counters...")
	drifts, err := service.Reconcile(ctx)
	if err != nil {
		log.Fatalf("Reconcile failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, d := range drifts {
		if *asJSON {
			if err := enc.Encode(d); err != nil {
				log.Fatalf("Failed to write output: %v", err)
			}
			continue
		}
		log.Printf("  %s.%s id=%s stored=%d computed=%d", d.Table, d.Column, d.RowID, d.Stored, d.Computed)
	}
	log.Printf("Done: corrected %d counters", len(drifts))
}
