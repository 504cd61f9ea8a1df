// Package redisstore keeps the session in Redis so several dashboard
// processes can share one login.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/jrsteele09/go-identity-dashboard/sessions"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

var _ sessions.Store = (*Store)(nil)

const defaultTimeout = 5 * time.Second

// Store writes the token and profile under "<prefix>:auth_token" and
// "<prefix>:user_data".
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL expires both keys together. Zero, the default, keeps them until Clear.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

func New(client redis.UniversalClient, prefix string, options ...Option) (*Store, error) {
	if client == nil {
		return nil, errors.New("[redisstore.New] client is required")
	}
	if prefix == "" {
		return nil, errors.New("[redisstore.New] prefix is required")
	}
	s := &Store{client: client, prefix: prefix}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Open parses a redis:// URL and pings the server before returning a Store.
func Open(ctx context.Context, url, prefix string, options ...Option) (*Store, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "[redisstore.Open] redis.ParseURL")
	}
	opt.DialTimeout = defaultTimeout
	opt.MinIdleConns = 1

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "[redisstore.Open] ping")
	}
	return New(client, prefix, options...)
}

func (s *Store) key(name string) string {
	return fmt.Sprintf("%s:%s", s.prefix, name)
}

// Set writes both keys inside MULTI/EXEC.
func (s *Store) Set(ctx context.Context, token string, profile users.Profile) error {
	values, err := sessions.Encode(token, profile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, s.key(k), v, s.ttl)
		}
		return nil
	})
	return errors.Wrap(err, "[redisstore.Set]")
}

func (s *Store) Get(ctx context.Context) (*sessions.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.client.MGet(ctx, s.key(sessions.TokenKey), s.key(sessions.ProfileKey)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "[redisstore.Get]")
	}

	values := map[string]string{}
	for i, name := range []string{sessions.TokenKey, sessions.ProfileKey} {
		if str, ok := res[i].(string); ok {
			values[name] = str
		}
	}
	return sessions.Decode(values)
}

// Clear deletes both keys with a single DEL.
func (s *Store) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := s.client.Del(ctx, s.key(sessions.TokenKey), s.key(sessions.ProfileKey)).Err()
	return errors.Wrap(err, "[redisstore.Clear]")
}

func (s *Store) Close() error {
	return s.client.Close()
}
