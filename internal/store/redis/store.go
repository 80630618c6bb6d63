package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/munidon/bw-genius/internal/store"
)

// Store is a Redis-backed implementation of the session store
type Store struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis store instance
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	return &Store{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure Store implements the interface
var _ store.Store = (*Store)(nil)

func (s *Store) Put(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, artifactKey(key), value, s.cfg.ArtifactTTL).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, artifactKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", store.ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, artifactKey(key)).Err()
}

func (s *Store) DeleteMatching(ctx context.Context, patterns ...string) (int, error) {
	removed := 0
	for _, pattern := range patterns {
		var cursor uint64
		for {
			keys, next, err := s.client.Scan(ctx, cursor, artifactPattern(pattern), 100).Result()
			if err != nil {
				return removed, err
			}
			if len(keys) > 0 {
				n, err := s.client.Del(ctx, keys...).Result()
				if err != nil {
					return removed, err
				}
				removed += int(n)
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	return removed, nil
}
