package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vovakirdan/gridfolio/internal/core"
)

// KeyPrefix namespaces layout keys in a shared Redis database.
const KeyPrefix = "gridfolio:layout:"

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// TTL expires idle layouts. Zero keeps them forever.
	TTL time.Duration
}

// RedisStore keeps layouts as JSON documents in Redis, suited to many
// short-lived sessions shared between several server instances.
// Every load refreshes the TTL, so only idle layouts expire.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("storage: cannot connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisStore(client, opts.TTL), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func layoutKey(name string) string {
	return KeyPrefix + name
}

// SaveLayout writes the layout as a single JSON value.
func (s *RedisStore) SaveLayout(ctx context.Context, name string, widgets []core.Widget) error {
	if widgets == nil {
		widgets = []core.Widget{}
	}
	data, err := json.Marshal(widgets)
	if err != nil {
		return fmt.Errorf("storage: cannot encode layout: %w", err)
	}
	if err := s.client.Set(ctx, layoutKey(name), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("storage: cannot save layout %q: %w", name, err)
	}
	return nil
}

// LoadLayout reads the layout and refreshes its TTL.
// Returns nil, nil if the key doesn't exist or has expired.
func (s *RedisStore) LoadLayout(ctx context.Context, name string) ([]core.Widget, error) {
	var cmd *redis.StringCmd
	if s.ttl > 0 {
		cmd = s.client.GetEx(ctx, layoutKey(name), s.ttl)
	} else {
		cmd = s.client.Get(ctx, layoutKey(name))
	}
	data, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot load layout %q: %w", name, err)
	}

	widgets := []core.Widget{}
	if err := json.Unmarshal(data, &widgets); err != nil {
		return nil, fmt.Errorf("storage: cannot decode layout %q: %w", name, err)
	}
	return widgets, nil
}

// DeleteLayout removes the layout key.
func (s *RedisStore) DeleteLayout(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, layoutKey(name)).Err(); err != nil {
		return fmt.Errorf("storage: cannot delete layout %q: %w", name, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
