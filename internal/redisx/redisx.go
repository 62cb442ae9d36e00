package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	listingPrefix = "listing:doc:"
	lockPrefix    = "listing:lock:"
)

// ErrMiss is returned when a listing is not in the cache.
var ErrMiss = errors.New("redisx: cache miss")

type Client struct{ Rdb *redis.Client }

func New(addr string, password string, db int) *Client {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	return &Client{Rdb: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.Rdb.Ping(ctx).Err()
}

func (c *Client) Close() error { return c.Rdb.Close() }

// GetListing returns the raw listing document cached under id.
func (c *Client) GetListing(ctx context.Context, id string) ([]byte, error) {
	b, err := c.Rdb.Get(ctx, listingPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (c *Client) SetListing(ctx context.Context, id string, doc []byte, ttl time.Duration) error {
	return c.Rdb.Set(ctx, listingPrefix+id, doc, ttl).Err()
}

// releaseLock deletes KEYS[1] only while it still holds the caller's token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireLock takes a lock on key for ttl and returns the holder token. The
// token is empty when another holder has the lock.
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := c.Rdb.SetNX(ctx, lockPrefix+key, token, ttl).Result()
	if err != nil || !ok {
		return "", err
	}
	return token, nil
}

// ReleaseLock drops the lock on key if token still holds it. A lock that
// expired and was taken by someone else is left alone.
func (c *Client) ReleaseLock(ctx context.Context, key, token string) error {
	return releaseLock.Run(ctx, c.Rdb, []string{lockPrefix + key}, token).Err()
}
