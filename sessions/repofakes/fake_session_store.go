package fakesessionstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-identity-dashboard/sessions"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

var _ sessions.Store = (*FakeSessionStore)(nil)

// FakeSessionStore keeps the two storage keys in a map, the way browser
// local storage would.
type FakeSessionStore struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewFakeSessionStore() *FakeSessionStore {
	return &FakeSessionStore{
		values: make(map[string]string),
	}
}

func (s *FakeSessionStore) Set(_ context.Context, token string, profile users.Profile) error {
	values, err := sessions.Encode(token, profile)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

func (s *FakeSessionStore) Get(_ context.Context) (*sessions.Session, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return sessions.Decode(s.values)
}

func (s *FakeSessionStore) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.values, sessions.TokenKey)
	delete(s.values, sessions.ProfileKey)
	return nil
}

// SetRaw writes a single key, simulating an out-of-band edit.
func (s *FakeSessionStore) SetRaw(key, value string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.values[key] = value
}

// DeleteRaw removes a single key, simulating an out-of-band edit.
func (s *FakeSessionStore) DeleteRaw(key string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.values, key)
}

// Has reports whether a key is present.
func (s *FakeSessionStore) Has(key string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	_, ok := s.values[key]
	return ok
}
