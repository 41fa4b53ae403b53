package http

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foodexpress/storefront/internal/catalog"
	"github.com/foodexpress/storefront/internal/session"
)

const (
	// DefaultIdleTTL is how long a client can stay silent before its
	// session is torn down.
	DefaultIdleTTL = 30 * time.Minute

	// CleanupInterval is how often the background sweep runs.
	CleanupInterval = time.Minute
)

// ClientState is everything the server keeps per storefront client: one
// catalog selector and one order session.
type ClientState struct {
	Selector *catalog.Selector
	Session  *session.Session
}

type clientEntry struct {
	state    *ClientState
	lastSeen time.Time
}

// Registry maps session ids to client state and sweeps idle entries in
// the background. Closing an entry cancels its session's reset timer, so
// a timer can never fire against a discarded session.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*clientEntry

	newState func() *ClientState
	idleTTL  time.Duration

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewRegistry(newState func() *ClientState, idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	r := &Registry{
		clients:     make(map[string]*clientEntry),
		newState:    newState,
		idleTTL:     idleTTL,
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.expireIdle()
		case <-r.stopCleanup:
			return
		}
	}
}

func (r *Registry) expireIdle() {
	cutoff := time.Now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.clients {
		if entry.lastSeen.Before(cutoff) {
			entry.state.Session.Close()
			delete(r.clients, id)
		}
	}
}

// Get returns the state for id, refreshing its idle deadline.
func (r *Registry) Get(id string) (*ClientState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.clients[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = time.Now()
	return entry.state, true
}

// Create registers a fresh client and returns its new session id.
func (r *Registry) Create() (string, *ClientState) {
	id := uuid.NewString()
	state := r.newState()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[id] = &clientEntry{state: state, lastSeen: time.Now()}
	return id, state
}

// Len reports the number of live client sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close stops the sweep loop and tears down every live session.
func (r *Registry) Close() {
	close(r.stopCleanup)
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.clients {
		entry.state.Session.Close()
		delete(r.clients, id)
	}
}
