// Package redisstore keeps client state in Redis, so several processes on a
// workstation or a kiosk fleet can share one login.
package redisstore

import (
	"context"

	"github.com/jrsteele09/go-waterres-client/kvstore"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "waterres:"

type Store struct {
	client redis.Cmdable
	prefix string
}

var _ kvstore.Store = (*Store)(nil)

type Option func(*Store)

func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

func New(client redis.Cmdable, options ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// NewClient dials nothing; go-redis connects lazily on the first command.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", kvstore.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "redisstore.Get")
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("key is required")
	}
	return errors.Wrap(s.client.Set(ctx, s.prefix+key, value, 0).Err(), "redisstore.Set")
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return errors.Wrap(s.client.Del(ctx, s.prefix+key).Err(), "redisstore.Delete")
}

// HealthCheck pings the server.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
