// Package cache is a small in-process key/value cache with per-entry TTL and
// prefix-based invalidation. Keys are namespaced by convention
// ("projects:<id>:requirements"), so clearing a prefix invalidates every
// derived entry for an entity in one call.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Service is safe for concurrent use.
type Service struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

// New constructs a Service. defaultTTL applies to Set calls; a zero
// defaultTTL means entries never expire unless SetWithTTL says otherwise.
func New(defaultTTL time.Duration) *Service {
	return &Service{
		entries:    map[string]entry{},
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the cached value for key, or false when the key is absent or
// expired. Expired entries are removed lazily.
func (s *Service) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL.
func (s *Service) Set(key string, value any) {
	s.SetWithTTL(key, value, s.defaultTTL)
}

// SetWithTTL stores value under key. A zero ttl means no expiry.
func (s *Service) SetWithTTL(key string, value any, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

// Delete removes a single key.
func (s *Service) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// DeletePrefix removes every key starting with prefix and returns how many
// entries were dropped.
func (s *Service) DeletePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			deleted++
		}
	}
	return deleted
}

// Clear removes everything.
func (s *Service) Clear() {
	s.mu.Lock()
	s.entries = map[string]entry{}
	s.mu.Unlock()
}

// Len returns the number of stored entries, counting expired ones that have
// not been read since expiring.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
