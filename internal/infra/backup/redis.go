package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	TTL      time.Duration `yaml:"-"`
}

// UnmarshalYAML accepts the TTL in Go duration syntax ("24h").
func (c *RedisConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		URL      string `yaml:"url"`
		Password string `yaml:"password"`
		TTL      string `yaml:"ttl"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	c.URL = raw.URL
	c.Password = raw.Password
	if raw.TTL != "" {
		ttl, err := time.ParseDuration(raw.TTL)
		if err != nil {
			return fmt.Errorf("invalid ttl: %w", err)
		}
		c.TTL = ttl
	}
	return nil
}

// RedisStore keeps staged payloads as Redis string values. A TTL bounds how
// long an abandoned backup can linger; it should comfortably exceed the
// longest possible retry chain.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func payloadKey(key string) string {
	return fmt.Sprintf("staged_payload:%s", key)
}

// Write persists the payload bytes under the key.
func (s *RedisStore) Write(ctx context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}
	if err := s.rdb.Set(ctx, payloadKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set staged payload: %w", err)
	}
	return nil
}

// Read returns the staged payload bytes.
func (s *RedisStore) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := s.rdb.Get(ctx, payloadKey(key)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("staged payload not found: %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staged payload: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the staged payload.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	n, err := s.rdb.Del(ctx, payloadKey(key)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete staged payload: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("staged payload not found: %s", key)
	}
	return nil
}

// Ping checks Redis reachability.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
