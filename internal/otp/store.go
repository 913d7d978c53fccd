// Package otp holds the one-time codes issued for password reset/change.
// The store is injected into the auth handler rather than living as a
// module-level singleton, which keeps its lifetime and concurrency explicit.
// Entries are ephemeral: the in-memory store loses everything on restart and
// is not shared across instances, which matches the intended semantics.
package otp

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Verification failures callers can branch on.
var (
	// ErrNoEntry means no code was issued for the email (or it was consumed).
	ErrNoEntry = errors.New("no otp issued")
	// ErrExpired means the code's window elapsed; the entry is purged.
	ErrExpired = errors.New("otp expired")
	// ErrBadCode means the code has the wrong shape (must be 6 characters).
	ErrBadCode = errors.New("otp must be 6 digits")
)

// Store issues and verifies one-time codes keyed by email.
//
// Verify semantics: a matching code consumes the entry; an expired entry is
// purged and reported; a wrong-but-unexpired code leaves the entry in place
// so the user can retry within the window.
type Store interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, email, code string) (bool, error)
}

type entry struct {
	code   string
	expiry time.Time
}

// MemoryStore is the in-process implementation: a mutex-guarded map. Two
// simultaneous requests for the same email are serialized by the lock.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]entry{}, now: time.Now}
}

// Put records a code for the email, replacing any previous one.
func (s *MemoryStore) Put(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = entry{code: code, expiry: s.now().Add(ttl)}
	return nil
}

// Verify checks the code for the email per the Store contract.
func (s *MemoryStore) Verify(_ context.Context, email, code string) (bool, error) {
	if len(code) != 6 {
		return false, ErrBadCode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok {
		return false, ErrNoEntry
	}
	if s.now().After(e.expiry) {
		delete(s.entries, email)
		return false, ErrExpired
	}
	if e.code != code {
		return false, nil // entry stays, retry allowed within the window
	}
	delete(s.entries, email)
	return true, nil
}
