package session

import (
	"context"
	"sync"
	"time"

	"github.com/voxwallet-hq/voxwallet/pkg/models"
)

// MemoryStore is an in-process Store used in tests and single-node setups.
// Entries expire lazily on Get.
type MemoryStore struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[int64]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	session   models.Session
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[int64]memoryEntry),
		now:     time.Now,
	}
}

// SetClock overrides the time source; tests use it to force expiry.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.entries, userID)
		return models.IdleSession(), nil
	}
	return entry.session, nil
}

func (s *MemoryStore) Set(_ context.Context, userID int64, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[userID] = memoryEntry{
		session:   session,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// TTL reports the expiry applied to stored sessions.
func (s *MemoryStore) TTL() time.Duration {
	return s.ttl
}

func (s *MemoryStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, userID)
	return nil
}
