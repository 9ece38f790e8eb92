package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrStoreNotConfigured = errors.New("session store not configured")

// Record is what survives a reload: the bearer and the serialized user.
// User is kept raw so a corrupt value can be detected on load.
type Record struct {
	Token string
	User  []byte
}

func (r Record) Empty() bool {
	return r.Token == "" && len(r.User) == 0
}

// Store persists one Record per session id.
type Store interface {
	Load(ctx context.Context, sid string) (Record, error)
	Save(ctx context.Context, sid string, rec Record) error
	Clear(ctx context.Context, sid string) error
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

// MemoryStore keeps records in process. Used by tests and SESSION_STORE=memory.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	records map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		records: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(ctx context.Context, sid string) (Record, error) {
	s.mu.RLock()
	e, ok := s.records[sid]
	s.mu.RUnlock()

	if !ok {
		return Record{}, nil
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.records, sid)
		s.mu.Unlock()
		return Record{}, nil
	}
	return e.rec, nil
}

func (s *MemoryStore) Save(ctx context.Context, sid string, rec Record) error {
	ttl := recordTTL(rec.Token, s.ttl, s.now())

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	user := make([]byte, len(rec.User))
	copy(user, rec.User)

	s.mu.Lock()
	s.records[sid] = memoryEntry{rec: Record{Token: rec.Token, User: user}, expiresAt: expiresAt}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, sid string) error {
	s.mu.Lock()
	delete(s.records, sid)
	s.mu.Unlock()
	return nil
}
