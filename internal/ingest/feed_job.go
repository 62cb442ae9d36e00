package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourorg/listing-api/feed"
	"github.com/yourorg/listing-api/internal/config"
)

// Fetcher downloads a feed document; *feed.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Locker serialises syncs of one feed across processes; *redisx.Client
// satisfies it. AcquireLock returns an empty token when the lock is held
// elsewhere; ReleaseLock only drops a lock still held by token.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

const defaultLockTTL = 15 * time.Minute

type FeedJob struct {
	Client         Fetcher
	Locker         Locker
	Ingestor       *Ingestor
	Logger         *log.Logger
	Feeds          []config.Feed
	Interval       time.Duration
	RequestTimeout time.Duration
	// LockTTL bounds how long a feed lock outlives a crashed sync. It must
	// cover fetch and ingest together; zero means 15 minutes.
	LockTTL time.Duration
}

func (j *FeedJob) logf(format string, args ...any) {
	if j.Logger != nil {
		j.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (j *FeedJob) validate() error {
	if j == nil {
		return errors.New("nil feed job")
	}
	if j.Client == nil {
		return errors.New("feed job missing client")
	}
	if j.Ingestor == nil {
		return errors.New("feed job requires an ingestor")
	}
	if len(j.Feeds) == 0 {
		return errors.New("feed job requires at least one feed")
	}
	return nil
}

func (j *FeedJob) Run(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	interval := j.Interval
	if interval <= 0 {
		return j.RunOnce(ctx)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	j.logf("feed job starting with interval %s (%d feed(s))", interval, len(j.Feeds))
	if err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		j.logf("feed job initial run error: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			j.logf("feed job stopping: %v", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				j.logf("feed job iteration error: %v", err)
			}
		}
	}
}

// RunOnce pulls every feed a single time. A quota error stops the run; other
// per-feed errors are joined.
func (j *FeedJob) RunOnce(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	var joined error
	for _, f := range j.Feeds {
		if err := j.SyncFeed(ctx, f); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, feed.ErrDailyLimitExceeded) {
				return err
			}
			joined = errors.Join(joined, err)
		}
	}
	return joined
}

// SyncFeed fetches one feed and ingests its listings one document at a time so
// a single bad document does not reject the rest.
func (j *FeedJob) SyncFeed(ctx context.Context, f config.Feed) error {
	timeout := j.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if j.Locker != nil {
		ttl := j.LockTTL
		if ttl <= 0 {
			ttl = defaultLockTTL
		}
		if ttl < 2*timeout {
			ttl = 2 * timeout
		}
		key := "feed:" + f.Name
		token, err := j.Locker.AcquireLock(ctx, key, ttl)
		if err != nil {
			j.logf("[WARN] feed %s lock: %v", f.Name, err)
		} else if token == "" {
			j.logf("feed %s is being synced elsewhere; skipping", f.Name)
			return nil
		} else {
			defer func() {
				if err := j.Locker.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
					j.logf("[WARN] feed %s unlock: %v", f.Name, err)
				}
			}()
		}
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	raw, err := j.Client.Fetch(reqCtx, f.URL)
	cancel()
	if err != nil {
		if errors.Is(err, feed.ErrDailyLimitExceeded) {
			return err
		}
		return fmt.Errorf("feed %s fetch: %w", f.Name, err)
	}

	docs, err := documents(raw)
	if err != nil {
		return fmt.Errorf("feed %s decode: %w", f.Name, err)
	}
	var joined error
	stored := 0
	for i, doc := range docs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res, err := j.Ingestor.Ingest(ctx, f.Name, doc)
		if err != nil {
			joined = errors.Join(joined, fmt.Errorf("feed %s document %d: %w", f.Name, i, err))
			continue
		}
		stored += len(res)
	}
	j.logf("feed %s ingested %d/%d listings", f.Name, stored, len(docs))
	return joined
}

func documents(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []json.RawMessage
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}
	return []json.RawMessage{trimmed}, nil
}
