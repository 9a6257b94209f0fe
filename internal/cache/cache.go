// Package cache stores computed group balances so repeated reads skip the
// ledger computation.
//
// Entries are keyed by group id and the group's ledger version. Every write
// that can change a group's balances bumps the version, so a stale entry is
// never read back; TTL only bounds memory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/splitledger/internal/calculator"
)

// BalanceCache is a read-through store for group balances.
type BalanceCache interface {
	// GetGroupBalances returns the cached balances for the group at version.
	// A miss returns (nil, false, nil).
	GetGroupBalances(ctx context.Context, groupID string, version int64) (*calculator.GroupBalances, bool, error)

	// SetGroupBalances stores balances for the group at version.
	SetGroupBalances(ctx context.Context, groupID string, version int64, balances *calculator.GroupBalances) error
}

// RedisCache implements BalanceCache on Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Config is the Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return NewRedisCacheWithClient(client, cfg.TTL), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Key returns the cache key for a group's balances at version.
func Key(groupID string, version int64) string {
	return fmt.Sprintf("splitledger:group-balances:%s:v%d", groupID, version)
}

// GetGroupBalances implements BalanceCache.
func (c *RedisCache) GetGroupBalances(ctx context.Context, groupID string, version int64) (*calculator.GroupBalances, bool, error) {
	val, err := c.client.Get(ctx, Key(groupID, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached balances for group %s: %w", groupID, err)
	}

	var balances calculator.GroupBalances
	if err := json.Unmarshal(val, &balances); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached balances for group %s: %w", groupID, err)
	}
	return &balances, true, nil
}

// SetGroupBalances implements BalanceCache.
func (c *RedisCache) SetGroupBalances(ctx context.Context, groupID string, version int64, balances *calculator.GroupBalances) error {
	data, err := json.Marshal(balances)
	if err != nil {
		return fmt.Errorf("failed to encode balances for group %s: %w", groupID, err)
	}
	if err := c.client.Set(ctx, Key(groupID, version), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache balances for group %s: %w", groupID, err)
	}
	return nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Nop is a BalanceCache that never stores anything.
type Nop struct{}

// GetGroupBalances always misses.
func (Nop) GetGroupBalances(context.Context, string, int64) (*calculator.GroupBalances, bool, error) {
	return nil, false, nil
}

// SetGroupBalances discards balances.
func (Nop) SetGroupBalances(context.Context, string, int64, *calculator.GroupBalances) error {
	return nil
}
