// Package filestore persists the session as a small JSON document on disk,
// the command line equivalent of the browser's local storage.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/natefinch/atomic"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-identity-dashboard/sessions"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

var (
	_ sessions.Store   = (*Store)(nil)
	_ sessions.Watcher = (*Store)(nil)
)

// Store keeps the storage keys in one file. Every write replaces the file
// atomically so the token and profile can never be observed half-written.
type Store struct {
	path string

	mu          sync.Mutex
	lastWritten []byte // what this process last put on disk, nil after a remove
}

// New creates the parent directory of path if needed.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("filestore: path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("filestore: creating directory: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Set(_ context.Context, token string, profile users.Profile) error {
	values, err := sessions.Encode(token, profile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for k, v := range values {
		doc[k] = v
	}
	return s.write(doc)
}

func (s *Store) Get(_ context.Context) (*sessions.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sessions.Decode(s.read())
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	delete(doc, sessions.TokenKey)
	delete(doc, sessions.ProfileKey)

	if len(doc) > 0 {
		return s.write(doc)
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: removing %s: %w", s.path, err)
	}
	s.lastWritten = nil
	return nil
}

// Watch calls onChange whenever the session file is changed by someone other
// than this Store, e.g. a second dashboard process logging out.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("filestore: creating watcher: %w", err)
	}
	defer watcher.Close()

	// the file itself is replaced on every write, so watch its directory
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("filestore: watching %s: %w", filepath.Dir(s.path), err)
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)) {
				continue
			}
			if s.isOwnWrite() {
				continue
			}
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("path", s.path).Msg("session file watcher error")
		}
	}
}

func (s *Store) isOwnWrite() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		data = nil
	}
	return bytes.Equal(data, s.lastWritten)
}

// read returns the document on disk. A missing or corrupt file reads as empty.
func (s *Store) read() map[string]string {
	doc := map[string]string{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.path).Msg("reading session file")
		}
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		log.Warn().Err(err).Str("path", s.path).Msg("session file is not a JSON object, ignoring it")
		return map[string]string{}
	}
	return doc
}

func (s *Store) write(doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("filestore: writing %s: %w", s.path, err)
	}
	s.lastWritten = data
	return nil
}
