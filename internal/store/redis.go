// ABOUTME: Redis implementation of the Registry interface using go-redis
// ABOUTME: Identities live in one Redis set; SADD gives insert-or-ignore for free

package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the set key used when none is configured
const DefaultRedisKey = "chatfleet:slaves"

// RedisRegistry implements the Registry interface on a Redis set
type RedisRegistry struct {
	rdb    *redis.Client
	key    string
	logger *slog.Logger
}

// NewRedisRegistry connects to Redis and verifies connectivity.
func NewRedisRegistry(ctx context.Context, opts *redis.Options, key string) (*RedisRegistry, error) {
	if key == "" {
		key = DefaultRedisKey
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}

	logger := slog.Default().With("component", "store")
	logger.Info("Redis registry initialized", "addr", opts.Addr, "key", key)

	return &RedisRegistry{
		rdb:    rdb,
		key:    key,
		logger: logger,
	}, nil
}

// InsertIfAbsent adds identity to the set. Re-adding an existing member is a no-op.
func (r *RedisRegistry) InsertIfAbsent(ctx context.Context, identity string) error {
	if err := validateIdentity(identity); err != nil {
		return err
	}

	added, err := r.rdb.SAdd(ctx, r.key, identity).Result()
	if err != nil {
		return fmt.Errorf("adding slave %q: %w", identity, err)
	}

	r.logger.Debug("slave registered", "identity", identity, "new", added == 1)
	return nil
}

// ListAll returns every member of the set, sorted.
func (r *RedisRegistry) ListAll(ctx context.Context) ([]string, error) {
	members, err := r.rdb.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("listing slaves: %w", err)
	}
	sort.Strings(members)
	return members, nil
}

// Close closes the Redis connection.
func (r *RedisRegistry) Close() error {
	return r.rdb.Close()
}
