package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes how to reach the shared session store.
type RedisConfig struct {
	URL          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore reads the session document from a redis key.
type RedisStore struct {
	rdb redisClient
	key string
}

// NewRedisStore returns a store using key, or Key when key is empty.
func NewRedisStore(rdb redisClient, key string) *RedisStore {
	if key == "" {
		key = Key
	}
	return &RedisStore{rdb: rdb, key: key}
}

// Token implements Provider.
func (r *RedisStore) Token(ctx context.Context) (string, error) {
	raw, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading session from redis: %w", err)
	}

	var info UserInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return "", fmt.Errorf("parsing session from redis: %w", err)
	}
	if strings.TrimSpace(info.Token) == "" {
		return "", ErrNoToken
	}
	return strings.TrimSpace(info.Token), nil
}

// Save stores info with the given ttl (0 keeps it until cleared).
func (r *RedisStore) Save(ctx context.Context, info UserInfo, ttl time.Duration) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key, data, ttl).Err()
}

// Clear deletes the session key.
func (r *RedisStore) Clear(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}
