package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/listing-api/feed"
	httpapi "github.com/yourorg/listing-api/http"
	"github.com/yourorg/listing-api/internal/config"
	"github.com/yourorg/listing-api/internal/env"
	"github.com/yourorg/listing-api/internal/events"
	"github.com/yourorg/listing-api/internal/ingest"
	"github.com/yourorg/listing-api/internal/logger"
	"github.com/yourorg/listing-api/internal/redisx"
	"github.com/yourorg/listing-api/internal/refresh"
	"github.com/yourorg/listing-api/internal/search"
	"github.com/yourorg/listing-api/internal/store"
)

func main() {
	port := env.GetInt("PORT", 4002)
	cacheTTL := env.GetDuration("LISTING_CACHE_TTL", time.Hour)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pub := events.NewInMemory(256)
	idx := &search.Indexer{Pub: pub}
	go idx.Run(ctx)

	ing := ingest.New(nil, nil, pub)
	ing.CacheTTL = cacheTTL
	listings := httpapi.ListingsDeps{Ingestor: ing, Index: idx, CacheTTL: cacheTTL}

	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		st, err := store.Open(dsn)
		if err != nil {
			log.Fatalf("store open error: %v", err)
		}
		defer st.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := st.Ping(pingCtx); err != nil {
			cancel()
			log.Fatalf("postgres ping error: %v", err)
		}
		if err := st.Migrate(pingCtx); err != nil {
			cancel()
			log.Fatalf("postgres migrate error: %v", err)
		}
		cancel()
		ing.Store = st
		listings.Store = st
	} else {
		log.Printf("[WARN] PG_DSN not set; listings are not persisted")
	}

	var locker ingest.Locker
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rc := redisx.New(addr, os.Getenv("REDIS_PASSWORD"), env.GetInt("REDIS_DB", 0))
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Printf("[WARN] redis ping failed, cache disabled: %v", err)
		} else {
			ing.Cache = rc
			listings.Cache = rc
			locker = rc
		}
	}

	var feeds httpapi.FeedsDeps
	if path := os.Getenv("FEEDS_CONFIG"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			log.Fatalf("feeds config error: %v", err)
		}
		feeds = httpapi.FeedsDeps{Config: cfg, Refresher: newFeedRefresher(cfg, ing, locker)}
		defer feeds.Refresher.Close()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           logger.Middleware(BuildRouter(listings, feeds)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listing-api listening on :%d", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// newFeedRefresher runs out-of-band syncs of a single configured feed.
func newFeedRefresher(cfg *config.Config, ing *ingest.Ingestor, locker ingest.Locker) *refresh.Refresher {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return refresh.New(16, 2, 2*timeout, func(ctx context.Context, j refresh.Job) {
		f, ok := cfg.Find(j.Key)
		if !ok {
			return
		}
		opts := []feed.Option{}
		if cfg.RateLimit > 0 {
			opts = append(opts, feed.WithRateLimit(cfg.RateLimit, 1))
		}
		job := &ingest.FeedJob{
			Client:         feed.NewClient(f.APIKey, opts...),
			Locker:         locker,
			Ingestor:       ing,
			Feeds:          []config.Feed{f},
			RequestTimeout: timeout,
			LockTTL:        cfg.LockTTL,
		}
		if err := job.SyncFeed(ctx, f); err != nil {
			log.Printf("[WARN] feed %s refresh: %v", f.Name, err)
		}
	})
}
