package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldCount      = "count"
	fieldDictionary = "dictionary"
	fieldExpiresAt  = "expiresAt"

	// How long after a record's expiresAt instant Redis is told to physically
	// reclaim it. The hosted table reclaims lazily (up to ~48h late); keeping
	// the same window means expired-but-unreclaimed reads behave identically.
	defaultReclaimGrace = 48 * time.Hour
)

// RedisStore keeps each record as a hash (count, dictionary, expiresAt) plus
// a sibling native set for the string-set field, so counter adds and set
// union/subtract stay atomic server-side.
type RedisStore struct {
	client *redis.Client
	grace  time.Duration
}

func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, grace: defaultReclaimGrace}, nil
}

// NewRedisStoreFromClient wraps an already-configured client (shared pools,
// sentinel setups, tests).
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, grace: defaultReclaimGrace}
}

func (r *RedisStore) hashKey(key string) string { return "kv:" + key }
func (r *RedisStore) setKey(key string) string  { return "kv:" + key + ":ss" }

func (r *RedisStore) Get(ctx context.Context, key string) (Record, bool, error) {
	pipe := r.client.Pipeline()
	fields := pipe.HGetAll(ctx, r.hashKey(key))
	members := pipe.SMembers(ctx, r.setKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return Record{}, false, err
	}

	rec := Record{Key: key, StringSet: members.Val()}
	found := len(fields.Val()) > 0 || len(rec.StringSet) > 0
	if !found {
		return Record{}, false, nil
	}

	for field, raw := range fields.Val() {
		switch field {
		case fieldCount:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return Record{}, false, fmt.Errorf("malformed %s field for key %q: %w", fieldCount, key, err)
			}
			rec.Count = n
		case fieldExpiresAt:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return Record{}, false, fmt.Errorf("malformed %s field for key %q: %w", fieldExpiresAt, key, err)
			}
			rec.ExpiresAt = n
		case fieldDictionary:
			rec.Dictionary = raw
		}
	}
	return rec, true, nil
}

func (r *RedisStore) Put(ctx context.Context, key string, rec Record) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.hashKey(key), r.setKey(key))
	pipe.HSet(ctx, r.hashKey(key),
		fieldCount, rec.Count,
		fieldExpiresAt, rec.ExpiresAt,
	)
	if rec.Dictionary != "" {
		pipe.HSet(ctx, r.hashKey(key), fieldDictionary, rec.Dictionary)
	}
	if len(rec.StringSet) > 0 {
		pipe.SAdd(ctx, r.setKey(key), toMembers(rec.StringSet)...)
	}
	r.applyReclaim(ctx, pipe, key, rec.ExpiresAt)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) SetCount(ctx context.Context, key string, value int64) error {
	return r.client.HSet(ctx, r.hashKey(key), fieldCount, value).Err()
}

func (r *RedisStore) AddCount(ctx context.Context, key string, delta int64, expiresAt int64) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, r.hashKey(key), fieldCount, delta)
	pipe.HSet(ctx, r.hashKey(key), fieldExpiresAt, expiresAt)
	r.applyReclaim(ctx, pipe, key, expiresAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (r *RedisStore) AddStrings(ctx context.Context, key string, values []string, expiresAt int64) ([]string, bool, error) {
	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, r.setKey(key), toMembers(values)...)
	pipe.HSet(ctx, r.hashKey(key), fieldExpiresAt, expiresAt)
	members := pipe.SMembers(ctx, r.setKey(key))
	r.applyReclaim(ctx, pipe, key, expiresAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, false, err
	}
	return members.Val(), true, nil
}

func (r *RedisStore) RemoveStrings(ctx context.Context, key string, values []string, expiresAt int64) ([]string, error) {
	pipe := r.client.TxPipeline()
	pipe.SRem(ctx, r.setKey(key), toMembers(values)...)
	pipe.HSet(ctx, r.hashKey(key), fieldExpiresAt, expiresAt)
	members := pipe.SMembers(ctx, r.setKey(key))
	r.applyReclaim(ctx, pipe, key, expiresAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return members.Val(), nil
}

func (r *RedisStore) SetExpiresAt(ctx context.Context, key string, expiresAt int64) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.hashKey(key), fieldExpiresAt, expiresAt)
	r.applyReclaim(ctx, pipe, key, expiresAt)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) RemoveStringSet(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.setKey(key)).Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// applyReclaim schedules (or cancels) physical removal of both record keys.
func (r *RedisStore) applyReclaim(ctx context.Context, pipe redis.Pipeliner, key string, expiresAt int64) {
	if expiresAt > 0 {
		at := time.Unix(expiresAt, 0).Add(r.grace)
		pipe.ExpireAt(ctx, r.hashKey(key), at)
		pipe.ExpireAt(ctx, r.setKey(key), at)
	} else {
		pipe.Persist(ctx, r.hashKey(key))
		pipe.Persist(ctx, r.setKey(key))
	}
}

func toMembers(values []string) []interface{} {
	members := make([]interface{}, len(values))
	for i, v := range values {
		members[i] = v
	}
	return members
}
