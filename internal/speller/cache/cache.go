// Package cache keeps best-match results in Redis. Keys embed the dictionary
// generation, so a load or an added word makes older entries unreachable
// without a flush; they age out through the TTL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/dictionary"
	pkgredis "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/resilience"
)

const keyPrefix = "spell:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Entry is a cached BestMatch outcome, including "no match".
type Entry struct {
	Found bool             `json:"found"`
	Match dictionary.Match `json:"match"`
}

type MatchCache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache over store. breaker may be nil.
func New(store Store, ttl time.Duration, breaker *resilience.CircuitBreaker) *MatchCache {
	return &MatchCache{
		store:   store,
		ttl:     ttl,
		breaker: breaker,
		logger:  slog.Default().With("component", "match-cache"),
	}
}

func (c *MatchCache) Get(ctx context.Context, generation uint64, word string, distance int) (Entry, bool) {
	key := buildKey(generation, word, distance)
	var data string
	err := c.do(func() error {
		var err error
		data, err = c.store.Get(ctx, key)
		return err
	})
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return Entry{}, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "key", key)
	return entry, true
}

func (c *MatchCache) Set(ctx context.Context, generation uint64, word string, distance int, entry Entry) {
	key := buildKey(generation, word, distance)
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.do(func() error { return c.store.Set(ctx, key, data, c.ttl) }); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached entry or computes and stores it.
// Concurrent misses for the same key share one computation. The boolean
// reports a cache hit.
func (c *MatchCache) GetOrCompute(
	ctx context.Context,
	generation uint64,
	word string,
	distance int,
	computeFn func() (Entry, error),
) (Entry, bool, error) {
	if entry, ok := c.Get(ctx, generation, word, distance); ok {
		return entry, true, nil
	}
	key := buildKey(generation, word, distance)
	val, err, _ := c.group.Do(key, func() (any, error) {
		entry, err := computeFn()
		if err != nil {
			return Entry{}, err
		}
		c.Set(ctx, generation, word, distance, entry)
		return entry, nil
	})
	if err != nil {
		return Entry{}, false, err
	}
	return val.(Entry), false, nil
}

// Invalidate drops every cached entry and returns how many were removed.
func (c *MatchCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

func (c *MatchCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// do routes a store call through the breaker. A missing key is a normal
// answer and does not count against the store.
func (c *MatchCache) do(fn func() error) error {
	if c.breaker == nil {
		return fn()
	}
	err := c.breaker.Execute(fn, pkgredis.IsNilError)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Debug("cache bypassed", "reason", err)
	}
	return err
}

// buildKey hashes the word so arbitrary bytes stay out of the key space.
func buildKey(generation uint64, word string, distance int) string {
	hash := sha256.Sum256([]byte(word))
	return fmt.Sprintf("%sg%d:d%d:%x", keyPrefix, generation, distance, hash[:16])
}
