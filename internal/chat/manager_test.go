package chat_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finnyai/internal/chat"
)

func newManager() *chat.Manager {
	return chat.NewManager(func() *chat.Session {
		return chat.NewSession(nil, nil)
	})
}

func TestManager_Lifecycle(t *testing.T) {
	m := newManager()

	id := m.Create("ana")
	assert.Equal(t, 1, m.Len())

	var seen *chat.Session
	err := m.With(id, "ana", func(s *chat.Session) error {
		seen = s
		return nil
	})
	require.NoError(t, err)
	assert.NotNil(t, seen)

	assert.ErrorIs(t, m.With(id, "bruno", func(*chat.Session) error { return nil }), chat.ErrSessionNotFound)
	assert.ErrorIs(t, m.With(uuid.New(), "ana", func(*chat.Session) error { return nil }), chat.ErrSessionNotFound)

	assert.ErrorIs(t, m.Delete(id, "bruno"), chat.ErrSessionNotFound)
	require.NoError(t, m.Delete(id, "ana"))
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, m.Delete(id, "ana"), chat.ErrSessionNotFound)
}

func TestManager_SerializesPerSession(t *testing.T) {
	m := newManager()
	id := m.Create("")

	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_ = m.With(id, "", func(*chat.Session) error {
				mu.Lock()
				active++
				maxSeen = max(maxSeen, active)
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()

				return nil
			})
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestManager_IdleSessionsExpire(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	m := chat.NewManager(func() *chat.Session { return chat.NewSession(nil, nil) },
		chat.WithIdleTTL(time.Minute),
		chat.WithManagerClock(clock),
	)

	stale := m.Create("ana")
	active := m.Create("ana")

	now = now.Add(45 * time.Second)
	require.NoError(t, m.With(active, "ana", func(*chat.Session) error { return nil }))

	now = now.Add(30 * time.Second)
	assert.ErrorIs(t, m.With(stale, "ana", func(*chat.Session) error { return nil }), chat.ErrSessionNotFound)
	require.NoError(t, m.With(active, "ana", func(*chat.Session) error { return nil }))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 0, m.Len())
}

func TestManager_CapPerOwner(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	m := chat.NewManager(func() *chat.Session { return chat.NewSession(nil, nil) },
		chat.WithMaxPerOwner(2),
		chat.WithIdleTTL(0),
		chat.WithManagerClock(clock),
	)

	first := m.Create("ana")
	second := m.Create("ana")
	other := m.Create("bruno")

	require.NoError(t, m.With(first, "ana", func(*chat.Session) error { return nil }))

	third := m.Create("ana")

	assert.Equal(t, 3, m.Len())
	assert.ErrorIs(t, m.With(second, "ana", func(*chat.Session) error { return nil }), chat.ErrSessionNotFound)

	for id, owner := range map[uuid.UUID]string{first: "ana", third: "ana", other: "bruno"} {
		assert.NoError(t, m.With(id, owner, func(*chat.Session) error { return nil }))
	}
}
