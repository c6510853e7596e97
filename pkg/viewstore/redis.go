package viewstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces view keys in a shared Redis instance.
const keyPrefix = "driftview:view:"

// RedisStore keeps views in Redis, for multi-instance server deployments
// where sessions may land on different processes.
type RedisStore struct {
	client *redis.Client
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr     string // host:port, e.g. "localhost:6379"
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Save stores a view under a name.
func (s *RedisStore) Save(ctx context.Context, name string, v View) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+name, data, 0).Err()
}

// Load retrieves a view by name.
func (s *RedisStore) Load(ctx context.Context, name string) (View, error) {
	data, err := s.client.Get(ctx, keyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return View{}, ErrNotFound
	}
	if err != nil {
		return View{}, err
	}

	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		return View{}, fmt.Errorf("decode view %q: %w", name, err)
	}
	return v, nil
}

// Delete removes a view. Deleting an absent view is not an error.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	return s.client.Del(ctx, keyPrefix+name).Err()
}

// List returns the stored view names.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
