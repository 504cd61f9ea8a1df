package filestore_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-identity-dashboard/sessions"
	"github.com/jrsteele09/go-identity-dashboard/sessions/filestore"
	"github.com/jrsteele09/go-identity-dashboard/users"
	"github.com/stretchr/testify/require"
)

var adminProfile = users.Profile{
	ID:         "1",
	Email:      "a@b.com",
	Name:       "Adminis Astra",
	Role:       users.RoleAdmin,
	Identifier: "a@b.com",
}

func newStore(t *testing.T) (*filestore.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store, err := filestore.New(path)
	require.NoError(t, err)
	return store, path
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, path := newStore(t)

	_, err := store.Get(ctx)
	require.ErrorIs(t, err, sessions.ErrNoSession)

	require.NoError(t, store.Set(ctx, "mock_token_42", adminProfile))

	s, err := store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "mock_token_42", s.Token)
	require.Equal(t, adminProfile, s.Profile)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_ClearRemovesBothKeys(t *testing.T) {
	ctx := context.Background()
	store, path := newStore(t)

	require.NoError(t, store.Set(ctx, "tok", adminProfile))
	require.NoError(t, store.Clear(ctx))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	_, err = store.Get(ctx)
	require.ErrorIs(t, err, sessions.ErrNoSession)

	require.NoError(t, store.Clear(ctx))
}

func TestStore_ClearKeepsUnrelatedKeys(t *testing.T) {
	ctx := context.Background()
	store, path := newStore(t)

	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o600))
	require.NoError(t, store.Set(ctx, "tok", adminProfile))
	require.NoError(t, store.Clear(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"theme":"dark"}`, string(data))
}

func TestStore_CorruptFileIsNoSession(t *testing.T) {
	ctx := context.Background()
	store, path := newStore(t)

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	_, err := store.Get(ctx)
	require.ErrorIs(t, err, sessions.ErrNoSession)

	// a later Set recovers the file
	require.NoError(t, store.Set(ctx, "tok", adminProfile))
	_, err = store.Get(ctx)
	require.NoError(t, err)
}

func TestStore_SharedBetweenInstances(t *testing.T) {
	ctx := context.Background()
	first, path := newStore(t)
	second, err := filestore.New(path)
	require.NoError(t, err)

	require.NoError(t, first.Set(ctx, "tok", adminProfile))
	s, err := second.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok", s.Token)

	require.NoError(t, second.Clear(ctx))
	_, err = first.Get(ctx)
	require.ErrorIs(t, err, sessions.ErrNoSession)
}

func TestStore_WatchReportsExternalChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watched, path := newStore(t)
	other, err := filestore.New(path)
	require.NoError(t, err)

	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- watched.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	n := 0
	require.Eventually(t, func() bool {
		n++
		require.NoError(t, other.Set(context.Background(), fmt.Sprintf("tok-%d", n), adminProfile))
		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := filestore.New("")
	require.Error(t, err)
}
