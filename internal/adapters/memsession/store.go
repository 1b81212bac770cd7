package memsession

// Package memsession provides an in-process session store used when Redis
// is disabled. Sessions do not survive a restart and are not shared across
// instances.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/taskdog/taskdog/internal/domain/auth"
)

// Store keeps sessions in a mutex-guarded map and mirrors the Redis store's
// TTL semantics: expired sessions are rejected on Save and evicted on Get.
type Store struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewStore creates an empty in-memory session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]domainauth.Session)}
}

func (s *Store) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if !time.Now().Before(sess.ExpiresAt) {
		return errors.New("session is expired")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *Store) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// ErrNotFound is returned when a session is not found.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}
