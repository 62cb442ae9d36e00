package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/listing-api/feed"
	"github.com/yourorg/listing-api/internal/config"
	"github.com/yourorg/listing-api/internal/env"
	"github.com/yourorg/listing-api/internal/events"
	"github.com/yourorg/listing-api/internal/ingest"
	"github.com/yourorg/listing-api/internal/redisx"
	"github.com/yourorg/listing-api/internal/search"
	"github.com/yourorg/listing-api/internal/store"
)

func main() {
	dsn := env.Must("PG_DSN")
	cfgPath := env.Get("FEEDS_CONFIG", "feeds.yaml")
	runOnce := env.GetBool("INGESTER_RUN_ONCE", false)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("feeds config error: %v", err)
	}
	if len(cfg.Feeds) == 0 {
		log.Fatal("feeds config must define at least one feed")
	}
	interval := env.GetDuration("INGESTER_INTERVAL", cfg.Interval)
	if interval == 0 {
		interval = 6 * time.Hour
	}

	st, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("store open error: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := st.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("postgres ping error: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("postgres migrate error: %v", err)
	}
	cancel()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pub := events.NewInMemory(256)
	go (&search.Indexer{Pub: pub, Logger: log.Default()}).Run(rootCtx)

	ing := ingest.New(st, nil, pub)
	var locker ingest.Locker
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rc := redisx.New(addr, os.Getenv("REDIS_PASSWORD"), env.GetInt("REDIS_DB", 0))
		defer rc.Close()
		ing.Cache = rc
		locker = rc
	}

	var opts []feed.Option
	if cfg.RateLimit > 0 {
		opts = append(opts, feed.WithRateLimit(cfg.RateLimit, 1))
	}
	// one client per API key
	jobs := map[string]*ingest.FeedJob{}
	for _, f := range cfg.Feeds {
		j, ok := jobs[f.APIKey]
		if !ok {
			j = &ingest.FeedJob{
				Client:         feed.NewClient(f.APIKey, opts...),
				Locker:         locker,
				Ingestor:       ing,
				Interval:       interval,
				RequestTimeout: cfg.RequestTimeout,
				LockTTL:        cfg.LockTTL,
			}
			jobs[f.APIKey] = j
		}
		j.Feeds = append(j.Feeds, f)
	}

	if runOnce {
		var joined error
		for _, j := range jobs {
			if err := j.RunOnce(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
				joined = errors.Join(joined, err)
			}
		}
		if joined != nil {
			log.Fatalf("ingester run failed: %v", joined)
		}
		return
	}

	done := make(chan error, len(jobs))
	for _, j := range jobs {
		go func(j *ingest.FeedJob) { done <- j.Run(rootCtx) }(j)
	}
	for range jobs {
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[WARN] feed job stopped with error: %v", err)
		}
	}
}
