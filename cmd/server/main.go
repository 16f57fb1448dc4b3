package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	imageproxyhandlers "Snapgram/internal/api/handlers/imageproxy"
	"Snapgram/internal/api/handlers/live"
	"Snapgram/internal/api/middleware"
	"Snapgram/internal/api/routes"
	"Snapgram/internal/config"
	"Snapgram/internal/core/blobs"
	"Snapgram/internal/core/imageproxy"
	"Snapgram/internal/core/posts"
	"Snapgram/internal/core/querycache"
	"Snapgram/internal/core/relationships"
	"Snapgram/internal/core/users"
	"Snapgram/internal/db/migrations"
	postgresRepo "Snapgram/internal/db/postgres"
	"Snapgram/internal/events"
	"Snapgram/internal/storage/s3"
	"Snapgram/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.InstanceID)
	if err != nil {
		log.Fatal("Failed to initialize tracing:", err)
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(c)
	}()

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() { _ = db.Close() }()
	log.Println("Connected to AppView database")

	if err := migrations.Up(db.DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Println("Migrations completed successfully")

	store, err := s3.New(s3.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    cfg.S3.Bucket,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		log.Fatal("Failed to create blob store client:", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to ensure blob bucket:", err)
	}

	// Core services
	blobService := blobs.NewBlobService(store, cfg.PublicBaseURL, logger)
	counterRepo := postgresRepo.NewCounterRepository(db)
	relationshipService := relationships.NewService(
		postgresRepo.NewRelationshipRepository(db),
		counterRepo,
		postgresRepo.NewReconcileRepository(db),
		logger,
	)
	postService := posts.NewPostService(postgresRepo.NewPostRepository(db), blobService, counterRepo, logger)
	userService := users.NewUserService(postgresRepo.NewUserRepository(db), blobService, logger)

	// Query cache, live notices and cross-instance events
	cache, closeCache := openCache(ctx, cfg)
	defer closeCache()

	publisher, natsConn := openPublisher(cfg, logger)
	bus := events.NewBus(publisher, cfg.InstanceID, logger)
	defer func() { _ = bus.Close() }()

	hub := live.NewHub(cfg.AllowedOrigins, logger)
	defer hub.Close()

	invalidator := querycache.NewInvalidator(cache, hub, bus, logger)

	if natsConn != nil {
		listener := events.NewInvalidationListener(invalidator, bus.Origin(), logger)
		sub, err := listener.Listen(ctx, natsConn)
		if err != nil {
			log.Fatal("Failed to subscribe to cache invalidations:", err)
		}
		defer func() { _ = sub.Unsubscribe() }()
	}

	cachedRelationships := querycache.WrapRelationships(relationshipService, invalidator, bus)
	cachedPosts := querycache.WrapPosts(postService, cache, invalidator, bus)
	cachedUsers := querycache.WrapUsers(userService, cache, invalidator, bus)

	if cfg.ReconcileInterval > 0 {
		go runReconciler(ctx, cachedRelationships, cfg.ReconcileInterval)
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting per IP
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, 1*time.Minute)

	auth := middleware.NewJWTAuthMiddleware(cfg.JWTSecret, logger)

	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.Middleware)
		routes.RegisterInteractionRoutes(r, cachedRelationships, auth)
		routes.RegisterPostRoutes(r, cachedPosts, cachedRelationships, auth)
		routes.RegisterUserRoutes(r, cachedUsers, cachedRelationships, auth)
	})

	if cfg.ImageProxy.Enabled {
		previewCache, err := imageproxy.NewMemoryCache(cfg.ImageProxy.CacheEntries)
		if err != nil {
			log.Fatal("Failed to create preview cache:", err)
		}
		fetcher := imageproxy.NewBlobFetcher(blobService, cfg.ImageProxy.FetchTimeout, cfg.ImageProxy.MaxSourceSizeMB)
		previewService, err := imageproxy.NewService(previewCache, imageproxy.NewProcessor(), fetcher)
		if err != nil {
			log.Fatal("Failed to create image proxy:", err)
		}
		routes.RegisterImageProxyRoutes(r, imageproxyhandlers.NewHandler(previewService))
	}

	routes.RegisterLiveRoutes(r, hub)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, "snapgram.appview"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down AppView")
		c, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(c); err != nil {
			log.Printf("Graceful shutdown failed: %v", err)
		}
	}()

	fmt.Printf("Snapgram AppView starting on port %s\n", cfg.Port)
	fmt.Printf("Cache: %s, events: %s, instance: %s\n", cfg.CacheBackend, cfg.EventsBackend, bus.Origin())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// openCache returns the configured query cache and its cleanup
func openCache(ctx context.Context, cfg config.Config) (querycache.Cache, func()) {
	if cfg.CacheBackend != config.CacheRedis {
		return querycache.NewMemoryCache(cfg.CacheSize), func() {}
	}

	client, err := querycache.OpenRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	log.Printf("Using Redis query cache at %s", cfg.RedisAddr)
	return querycache.NewRedisCache(client), func() { _ = client.Close() }
}

// openPublisher returns the events publisher. The NATS connection is also
// returned so peer invalidations can be subscribed to.
func openPublisher(cfg config.Config, logger *slog.Logger) (events.Publisher, *events.NATSPublisher) {
	switch cfg.EventsBackend {
	case config.EventsNATS:
		conn, err := events.ConnectNATS(events.NATSConfig{
			URL:           cfg.NATSURL,
			Name:          cfg.ServiceName,
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		}, logger)
		if err != nil {
			log.Fatal("Failed to connect to NATS:", err)
		}
		log.Printf("Publishing events to NATS at %s", cfg.NATSURL)
		return conn, conn
	case config.EventsKafka:
		log.Printf("Publishing events to Kafka topic %s", cfg.KafkaTopic)
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return events.NoopPublisher{}, nil
	}
}

// runReconciler periodically recomputes the denormalized counters
func runReconciler(ctx context.Context, service relationships.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			drifts, err := service.Reconcile(ctx)
			if err != nil {
				log.Printf("[RECONCILE] failed: %v", err)
				continue
			}
			if len(drifts) > 0 {
				log.Printf("[RECONCILE] corrected %d counters", len(drifts))
			}
		}
	}
}
