// Package revoke provides the best-effort token revocation store consulted
// on logout and during authentication.
//
// Revocation here is advisory only: tokens are stateless and remain
// cryptographically valid until expiry, so a store outage or a multi-node
// deployment without a shared backend degrades to "not revoked". Nothing in
// the engine relies on revocation for correctness; required flows treat it
// as opportunistic hardening.
package revoke

import (
	"context"
	"sync"
	"time"
)

// Store is the injected revocation backend. Implementations must be safe
// for concurrent use; a lookup that follows an insert of the same token,
// from any goroutine, must observe the insert.
type Store interface {
	// Revoke records the raw token until expiresAt.
	Revoke(ctx context.Context, tokenStr string, expiresAt time.Time) error
	// IsRevoked reports whether the token is currently recorded.
	IsRevoked(ctx context.Context, tokenStr string) (bool, error)
	// SweepExpired drops entries whose expiry has passed. Backends with
	// native expiry may implement it as a no-op.
	SweepExpired(ctx context.Context) error
}

// MemoryStore is an in-process Store keyed by raw token string. Entries
// live until swept or until the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
	}
}

// Revoke records the token until expiresAt.
func (s *MemoryStore) Revoke(_ context.Context, tokenStr string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[tokenStr] = expiresAt
	return nil
}

// IsRevoked reports whether the token is recorded and not yet expired.
func (s *MemoryStore) IsRevoked(_ context.Context, tokenStr string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiresAt, ok := s.entries[tokenStr]
	if !ok {
		return false, nil
	}

	return time.Now().Before(expiresAt), nil
}

// SweepExpired drops entries whose expiry has passed.
func (s *MemoryStore) SweepExpired(_ context.Context) error {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for tokenStr, expiresAt := range s.entries {
		if !now.Before(expiresAt) {
			delete(s.entries, tokenStr)
		}
	}

	return nil
}

// Len reports the number of recorded entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
