package usersync

import (
	"context"
	"sync"
)

// Manager hands out one Core per authenticated user so every session has a
// single logical owner of its published state.
type Manager struct {
	remote UserStore
	cache  UserCache
	orders OrderStore

	mu       sync.Mutex
	sessions map[string]*Core
}

// NewManager creates a Manager over the given stores.
func NewManager(remote UserStore, cache UserCache, orders OrderStore) *Manager {
	return &Manager{
		remote:   remote,
		cache:    cache,
		orders:   orders,
		sessions: make(map[string]*Core),
	}
}

// Session returns the Core for the user id, creating one on first use.
func (m *Manager) Session(userID string) *Core {
	m.mu.Lock()
	defer m.mu.Unlock()
	core, ok := m.sessions[userID]
	if !ok {
		core = NewCore(userID, m.remote, m.cache, m.orders)
		m.sessions[userID] = core
	}
	return core
}

// Loaded returns the user's Core, loading it first if it has not published a
// user yet.
func (m *Manager) Loaded(ctx context.Context, userID string) (*Core, error) {
	core := m.Session(userID)
	if core.State() == StateLoaded {
		return core, nil
	}
	if err := core.Load(ctx); err != nil {
		return core, err
	}
	return core, nil
}

// Drop discards the user's session, if any. The local cache is untouched.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
