package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "stockdesk:analytics:version"
	// BumpChannel carries the new cache version after every committed sale.
	BumpChannel = "stockdesk:analytics:bump"
)

// Cache stores analytics results in Redis under versioned keys. Bumping the
// version orphans every previously cached entry, which then expires by TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	// SETNX keeps concurrent initialisers from resetting a bumped version.
	if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
		return 0, err
	}
	return c.client.Get(ctx, cacheVersionKey).Int64()
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"stockdesk", "analytics"}, parts...), ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// Load returns the cached payload for key or populates it using the loader.
// The returned bytes are the JSON encoding of the loader result. Redis read
// and write failures are logged and only the loader error is returned.
func (c *Cache) Load(ctx context.Context, key string, loader func(context.Context) (any, error)) ([]byte, error) {
	if loader == nil {
		return nil, errors.New("analytics: cache loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			return payload, nil
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("analytics cache read failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("analytics cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return raw, nil
}

// Bump invalidates the cache by incrementing the version and publishing it.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, BumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// Subscribe delivers published cache versions to fn until ctx is cancelled.
func (c *Cache) Subscribe(ctx context.Context, fn func(version int64)) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, BumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil {
					fn(ver)
				}
			}
		}
	}()
	return nil
}
