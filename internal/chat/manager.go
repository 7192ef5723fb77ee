package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	DefaultIdleTTL     = 30 * time.Minute
	DefaultMaxPerOwner = 10
)

// Manager keeps sessions in memory for surfaces that serve many users. Calls
// against one session are serialized; different sessions run in parallel.
// Sessions idle for longer than the TTL are dropped, and an owner that goes
// over the cap loses its least recently used session.
type Manager struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*entry
	factory     func() *Session
	idleTTL     time.Duration
	maxPerOwner int
	now         func() time.Time
}

type entry struct {
	mu       sync.Mutex
	owner    string
	session  *Session
	lastUsed time.Time
}

type ManagerOption func(*Manager)

// WithIdleTTL sets how long an unused session is kept. Zero keeps sessions
// until they are deleted.
func WithIdleTTL(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d >= 0 {
			m.idleTTL = d
		}
	}
}

// WithMaxPerOwner caps live sessions per owner. Zero disables the cap.
func WithMaxPerOwner(n int) ManagerOption {
	return func(m *Manager) {
		if n >= 0 {
			m.maxPerOwner = n
		}
	}
}

func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(factory func() *Session, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions:    make(map[uuid.UUID]*entry),
		factory:     factory,
		idleTTL:     DefaultIdleTTL,
		maxPerOwner: DefaultMaxPerOwner,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Create registers a new session for owner and returns its id.
func (m *Manager) Create(owner string) uuid.UUID {
	id := uuid.New()
	session := m.factory()

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(now)
	m.enforceCapLocked(owner)

	m.sessions[id] = &entry{owner: owner, session: session, lastUsed: now}

	return id
}

// With runs fn while holding the session's lock. Sessions owned by someone
// else are reported as not found.
func (m *Manager) With(id uuid.UUID, owner string, fn func(*Session) error) error {
	e, err := m.lookup(id, owner)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	defer m.touch(e)

	return fn(e.session)
}

func (m *Manager) Delete(id uuid.UUID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok || e.owner != owner {
		return ErrSessionNotFound
	}

	delete(m.sessions, id)

	return nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// Sweep drops every session idle for longer than the TTL and reports how many
// were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sweepLocked(m.now())
}

func (m *Manager) lookup(id uuid.UUID, owner string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok || e.owner != owner {
		return nil, ErrSessionNotFound
	}

	now := m.now()
	if m.expired(e, now) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}

	e.lastUsed = now

	return e, nil
}

func (m *Manager) touch(e *entry) {
	m.mu.Lock()
	e.lastUsed = m.now()
	m.mu.Unlock()
}

func (m *Manager) expired(e *entry, now time.Time) bool {
	return m.idleTTL > 0 && now.Sub(e.lastUsed) > m.idleTTL
}

func (m *Manager) sweepLocked(now time.Time) int {
	removed := 0

	for id, e := range m.sessions {
		if m.expired(e, now) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// enforceCapLocked makes room for one more session of owner.
func (m *Manager) enforceCapLocked(owner string) {
	if m.maxPerOwner == 0 {
		return
	}

	for {
		var (
			count  int
			oldest uuid.UUID
			found  bool
			at     time.Time
		)

		for id, e := range m.sessions {
			if e.owner != owner {
				continue
			}

			count++

			if !found || e.lastUsed.Before(at) {
				oldest, at, found = id, e.lastUsed, true
			}
		}

		if count < m.maxPerOwner {
			return
		}

		delete(m.sessions, oldest)
	}
}
