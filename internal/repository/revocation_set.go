package repository

import (
	"sync"
	"time"
)

// RevocationSet is the process-wide denylist of raw token strings. A token
// in the set is rejected no matter what its signature or expiry say.
type RevocationSet struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewRevocationSet() *RevocationSet {
	return &RevocationSet{entries: map[string]time.Time{}}
}

// Revoke adds token to the set. expiresAt is the token's own expiry and only
// drives PruneExpired; a zero value keeps the entry forever. Revoking an
// already revoked token is a no-op apart from extending its expiry.
func (s *RevocationSet) Revoke(token string, expiresAt time.Time) {
	if token == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.entries[token]
	if exists && (current.IsZero() || (!expiresAt.IsZero() && current.After(expiresAt))) {
		return
	}
	s.entries[token] = expiresAt
}

func (s *RevocationSet) IsRevoked(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.entries[token]
	return exists
}

// PruneExpired drops entries whose token expired before now. Such tokens fail
// signature-time expiry checks anyway.
func (s *RevocationSet) PruneExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, expiresAt := range s.entries {
		if !expiresAt.IsZero() && expiresAt.Before(now) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

func (s *RevocationSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
