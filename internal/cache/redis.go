// Package cache keeps per-user balance views in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/splitledger/internal/ledger"
)

const (
	keyPrefix        = "splitledger:balance:"
	generationPrefix = "splitledger:balance-gen:"
)

// RedisBalanceCache stores balance views as JSON with a TTL.
type RedisBalanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisBalanceCache wraps rdb. A non-positive ttl keeps entries until invalidated.
func NewRedisBalanceCache(rdb *redis.Client, ttl time.Duration) *RedisBalanceCache {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisBalanceCache{rdb: rdb, ttl: ttl}
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func balanceKey(userID string) string {
	return keyPrefix + userID
}

func generationKey(userID string) string {
	return generationPrefix + userID
}

// GetBalance returns the cached view of userID, if any.
func (c *RedisBalanceCache) GetBalance(ctx context.Context, userID string) ([]ledger.BalanceEntry, bool, error) {
	val, err := c.rdb.Get(ctx, balanceKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read balance cache: %w", err)
	}

	var entries []ledger.BalanceEntry
	if err := json.Unmarshal(val, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached balance: %w", err)
	}
	return entries, true, nil
}

// Generation returns the invalidation counter of userID. A missing key is generation 0.
func (c *RedisBalanceCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := getGeneration(ctx, c.rdb, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance generation: %w", err)
	}
	return gen, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getGeneration(ctx context.Context, cmd getter, userID string) (int64, error) {
	gen, err := cmd.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetBalance caches the view of userID while its generation is still gen.
// The generation key is watched so an Invalidate racing the write aborts it.
func (c *RedisBalanceCache) SetBalance(ctx context.Context, userID string, gen int64, entries []ledger.BalanceEntry) error {
	if entries == nil {
		entries = []ledger.BalanceEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode balance: %w", err)
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := getGeneration(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, balanceKey(userID), b, c.ttl)
			return nil
		})
		return err
	}, generationKey(userID))
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write balance cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached views of the given users and bumps their generations.
func (c *RedisBalanceCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = balanceKey(id)
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Incr(ctx, generationKey(id))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate balance cache: %w", err)
	}
	return nil
}
