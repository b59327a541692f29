// Package storage wraps the Redis-backed result cache used to avoid
// recomputing a block's VerusHash digest on repeated API requests.
package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix = "verushash:"

	keyHash      = keyPrefix + "hash:%s"
	keyCanonical = keyPrefix + "canonical:%s"
)

// Cache wraps a Redis client caching computed VerusHash digests and
// canonicalized header blobs, keyed by the hex-encoded header digest.
type Cache struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

// NewCache creates a new Cache backed by a Redis server at url.
func NewCache(url, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     url,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Cache{client: client, ctx: ctx, ttl: ttl}, nil
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// GetHash returns the cached 32-byte hash for headerDigest, if present.
func (c *Cache) GetHash(headerDigest []byte) ([]byte, bool, error) {
	key := fmt.Sprintf(keyHash, hex.EncodeToString(headerDigest))
	val, err := c.client.Get(c.ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get hash: %w", err)
	}
	return val, true, nil
}

// PutHash stores the computed hash for headerDigest with the configured TTL.
func (c *Cache) PutHash(headerDigest, hash []byte) error {
	key := fmt.Sprintf(keyHash, hex.EncodeToString(headerDigest))
	if err := c.client.Set(c.ctx, key, hash, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put hash: %w", err)
	}
	return nil
}

// GetCanonical returns the cached canonicalized header blob for
// headerDigest, if present.
func (c *Cache) GetCanonical(headerDigest []byte) ([]byte, bool, error) {
	key := fmt.Sprintf(keyCanonical, hex.EncodeToString(headerDigest))
	val, err := c.client.Get(c.ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get canonical: %w", err)
	}
	return val, true, nil
}

// PutCanonical stores the canonicalized header blob for headerDigest.
func (c *Cache) PutCanonical(headerDigest, canonical []byte) error {
	key := fmt.Sprintf(keyCanonical, hex.EncodeToString(headerDigest))
	if err := c.client.Set(c.ctx, key, canonical, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put canonical: %w", err)
	}
	return nil
}
