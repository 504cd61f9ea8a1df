package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-identity-dashboard/sessions"
	"github.com/jrsteele09/go-identity-dashboard/sessions/redisstore"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

var userProfile = users.Profile{
	ID:         "1",
	Email:      "x@y.com",
	Name:       "Craterus Orion",
	Role:       users.RoleUser,
	Identifier: "DID:did:ppn:3fa::9z9",
}

func setup(t *testing.T, options ...redisstore.Option) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := redisstore.New(client, "test", options...)
	require.NoError(t, err)
	return store, mr
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := setup(t)

	_, err := store.Get(ctx)
	require.ErrorIs(t, err, sessions.ErrNoSession)

	require.NoError(t, store.Set(ctx, "tok", userProfile))
	require.True(t, mr.Exists("test:auth_token"))
	require.True(t, mr.Exists("test:user_data"))

	s, err := store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok", s.Token)
	require.Equal(t, userProfile, s.Profile)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store, mr := setup(t)

	require.NoError(t, store.Set(ctx, "tok", userProfile))
	require.NoError(t, store.Clear(ctx))
	require.False(t, mr.Exists("test:auth_token"))
	require.False(t, mr.Exists("test:user_data"))

	_, err := store.Get(ctx)
	require.ErrorIs(t, err, sessions.ErrNoSession)
	require.NoError(t, store.Clear(ctx))
}

func TestStore_MissingKeyIsNoSession(t *testing.T) {
	ctx := context.Background()
	store, mr := setup(t)

	require.NoError(t, store.Set(ctx, "tok", userProfile))
	mr.Del("test:user_data")

	_, err := store.Get(ctx)
	require.ErrorIs(t, err, sessions.ErrNoSession)
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := setup(t, redisstore.WithTTL(time.Minute))

	require.NoError(t, store.Set(ctx, "tok", userProfile))
	require.Equal(t, time.Minute, mr.TTL("test:auth_token"))
	require.Equal(t, time.Minute, mr.TTL("test:user_data"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx)
	require.ErrorIs(t, err, sessions.ErrNoSession)
}

func TestStore_BackendDown(t *testing.T) {
	ctx := context.Background()
	store, mr := setup(t)
	mr.Close()

	_, err := store.Get(ctx)
	require.Error(t, err)
	require.NotErrorIs(t, err, sessions.ErrNoSession)
}

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := redisstore.Open(context.Background(), "redis://"+mr.Addr()+"/0", "dash")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(context.Background(), "tok", userProfile))
	require.True(t, mr.Exists("dash:auth_token"))

	_, err = redisstore.Open(context.Background(), "not a url", "dash")
	require.Error(t, err)
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := redisstore.New(nil, "p")
	require.Error(t, err)
}
