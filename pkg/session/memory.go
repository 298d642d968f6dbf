package session

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/polarcoaster/pkg/errors"
)

// MemoryStore keeps sessions in process memory. Each session has its own
// lock, so concurrent requests for different sessions never wait on each
// other.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	max      int
}

type entry struct {
	mu   sync.Mutex
	sess Session
	gone bool // deleted while a caller waited on mu
}

// NewMemoryStore creates a store that expires sessions idle for longer than
// ttl and holds at most max sessions. Zero disables either limit.
func NewMemoryStore(ttl time.Duration, max int) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		max:      max,
	}
}

// Create implements [Store]. When the store is full, expired sessions are
// dropped first; if it is still full, an ErrCodeSessionLimit error is returned.
func (m *MemoryStore) Create(ctx context.Context, now time.Time) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.max > 0 && len(m.sessions) >= m.max {
		m.cleanupLocked(now)
		if len(m.sessions) >= m.max {
			return nil, errors.New(errors.ErrCodeSessionLimit, "session limit of %d reached", m.max)
		}
	}

	sess := New(now)
	m.sessions[sess.ID] = &entry{sess: *sess}
	return sess, nil
}

// Get implements [Store].
func (m *MemoryStore) Get(ctx context.Context, id string, now time.Time) (*Session, error) {
	var out Session
	err := m.with(ctx, id, now, func(s *Session) error {
		out = *s
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update implements [Store].
func (m *MemoryStore) Update(ctx context.Context, id string, now time.Time, fn func(*Session) error) error {
	return m.with(ctx, id, now, fn, true)
}

func (m *MemoryStore) with(ctx context.Context, id string, now time.Time, fn func(*Session) error, touch bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return notFound(id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gone {
		return notFound(id)
	}
	if e.sess.IsExpired(now, m.ttl) {
		m.remove(id, e)
		return notFound(id)
	}

	work := e.sess
	if err := fn(&work); err != nil {
		return err
	}
	if touch {
		work.LastSeen = now
	}
	work.ID = e.sess.ID
	e.sess = work
	return nil
}

// remove drops e from the map if it is still the entry stored under id.
// Callers hold e.mu.
func (m *MemoryStore) remove(id string, e *entry) {
	e.gone = true
	m.mu.Lock()
	if m.sessions[id] == e {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
}

// Delete implements [Store]. Deleting an unknown session is an error.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return notFound(id)
	}

	e.mu.Lock()
	e.gone = true
	e.mu.Unlock()
	return nil
}

// Cleanup implements [Store].
func (m *MemoryStore) Cleanup(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanupLocked(now), nil
}

// cleanupLocked skips sessions that are busy; they were just used.
func (m *MemoryStore) cleanupLocked(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	n := 0
	for id, e := range m.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.sess.IsExpired(now, m.ttl) {
			e.gone = true
			delete(m.sessions, id)
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// Len implements [Store].
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
