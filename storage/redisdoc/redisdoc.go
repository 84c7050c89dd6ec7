// Package redisdoc is a DocumentStore that keeps each document as one Redis string value under
// <prefix><name>.
package redisdoc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/store"
)

type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ store.DocumentStore = (*Store)(nil) // interface compliance check

func New(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Open connects to the Redis server described by conf and pings it.
func Open(ctx context.Context, conf core.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "pinging redis at %s", conf.Addr)
	}
	return New(client, conf.Prefix), nil
}

func (s *Store) key(name string) string { return s.prefix + name }

func (s *Store) Load(ctx context.Context, name string) (store.Document, error) {
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.Document{}, nil
		}
		return nil, errors.Wrapf(err, "getting document %q", name)
	}
	return store.Decode(name, data)
}

// Save replaces the whole value in a single SET, which Redis applies atomically.
func (s *Store) Save(ctx context.Context, name string, doc store.Document) error {
	if err := store.ValidateName(name); err != nil {
		return err
	}
	data, err := store.Encode(doc)
	if err != nil {
		return errors.Wrapf(err, "encoding document %q", name)
	}
	if err = s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return errors.Wrapf(err, "setting document %q", name)
	}
	return nil
}

func (s *Store) Close() error { return s.client.Close() }
