package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisKey is the hash holding synchronized settings.
const DefaultRedisKey = "eztranslate:settings"

// RedisConfig configures the Synchronized tier.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Key is the hash name; DefaultRedisKey when empty.
	Key string
}

// RedisArea stores a Record as fields of one Redis hash. Values are the
// raw JSON encodings.
type RedisArea struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisArea creates the area. No connection is made until first use.
func NewRedisArea(cfg RedisConfig, logger *zap.Logger) *RedisArea {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := cfg.Key
	if key == "" {
		key = DefaultRedisKey
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisArea{
		client: client,
		key:    key,
		logger: logger.With(zap.String("component", "storage.redis")),
	}
}

// Get implements Area.
func (a *RedisArea) Get(ctx context.Context, keys ...string) (Record, error) {
	if len(keys) == 0 {
		all, err := a.client.HGetAll(ctx, a.key).Result()
		if err != nil {
			a.logger.Error("hgetall failed", zap.String("key", a.key), zap.Error(err))
			return nil, fmt.Errorf("reading synchronized settings: %w", err)
		}
		out := make(Record, len(all))
		for k, v := range all {
			out[k] = json.RawMessage(v)
		}
		return out, nil
	}

	vals, err := a.client.HMGet(ctx, a.key, keys...).Result()
	if err != nil {
		a.logger.Error("hmget failed", zap.String("key", a.key), zap.Error(err))
		return nil, fmt.Errorf("reading synchronized settings: %w", err)
	}
	out := make(Record, len(keys))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		out[keys[i]] = json.RawMessage(s)
	}
	return out, nil
}

// Set implements Area. All fields are written in one MULTI/EXEC block.
func (a *RedisArea) Set(ctx context.Context, rec Record) error {
	if len(rec) == 0 {
		return nil
	}
	values := make([]any, 0, len(rec)*2)
	for k, v := range rec {
		values = append(values, k, string(v))
	}
	_, err := a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, a.key, values...)
		return nil
	})
	if err != nil {
		a.logger.Error("hset failed", zap.String("key", a.key), zap.Int("fields", len(rec)), zap.Error(err))
		return fmt.Errorf("writing synchronized settings: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (a *RedisArea) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (a *RedisArea) Close() error {
	return a.client.Close()
}
