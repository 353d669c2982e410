// Package redis implements the index Store on Redis: each prefix key is a
// sorted set (ZADD/ZREM/ZREVRANGE) and the metadata map is a hash
// (HSET/HDEL/HMGET). Batches run as MULTI/EXEC transactions so every
// Add/Del lands atomically.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/config"
)

// Store is a Redis-backed index store.
type Store struct {
	rdb *goredis.Client
}

// New connects to Redis using the given config and verifies the connection
// with a PING.
func New(cfg config.RedisConfig) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

// Wrap builds a Store around an already-established client. The caller
// remains responsible for the client's lifecycle.
func Wrap(rdb *goredis.Client) *Store {
	return &Store{rdb: rdb}
}

// Batch starts a MULTI/EXEC transaction pipeline.
func (s *Store) Batch() index.Batch {
	return &batch{pipe: s.rdb.TxPipeline()}
}

// TopN returns up to limit members of the sorted set at key by descending
// score. Redis orders equal scores lexicographically by member.
func (s *Store) TopN(ctx context.Context, key string, limit int) ([]index.Member, error) {
	zs, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("ZREVRANGE %s: %w", key, err)
	}
	members := make([]index.Member, 0, len(zs))
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			return nil, fmt.Errorf("ZREVRANGE %s: unexpected member type %T", key, z.Member)
		}
		members = append(members, index.Member{ID: id, Score: z.Score})
	}
	return members, nil
}

// MapGet fetches hash fields with a single HMGET. Missing fields come back
// as nil elements.
func (s *Store) MapGet(ctx context.Context, key string, fields ...string) ([][]byte, error) {
	vals, err := s.rdb.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("HMGET %s: %w", key, err)
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[i] = []byte(str)
		}
	}
	return out, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the underlying Redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

type batch struct {
	pipe goredis.Pipeliner
}

// The context passed to queued pipeline commands is unused by go-redis; the
// context given to Submit governs the EXEC round trip.

func (b *batch) RankUpsert(key, member string, score float64) {
	b.pipe.ZAdd(context.Background(), key, goredis.Z{Score: score, Member: member})
}

func (b *batch) RankRemove(key, member string) {
	b.pipe.ZRem(context.Background(), key, member)
}

func (b *batch) MapSet(key, field string, value []byte) {
	b.pipe.HSet(context.Background(), key, field, value)
}

func (b *batch) MapDelete(key, field string) {
	b.pipe.HDel(context.Background(), key, field)
}

func (b *batch) Submit(ctx context.Context) error {
	if _, err := b.pipe.Exec(ctx); err != nil {
		return fmt.Errorf("executing transaction: %w", err)
	}
	return nil
}
