package service

import (
	"sync"
	"time"

	"github.com/ikkim/shopfront/internal/gateway"
	"github.com/ikkim/shopfront/pkg/logger"
)

// Session is one authenticated app session. It is the SessionProvider of its store.
type Session struct {
	mu       sync.RWMutex
	userID   string
	token    string
	active   bool
	lastSeen time.Time

	store *CartStore
}

func (s *Session) Credentials() (string, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.token, s.active
}

func (s *Session) touch(token string, now time.Time) {
	s.mu.Lock()
	s.token = token
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) end() {
	s.mu.Lock()
	s.active = false
	s.token = ""
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// SessionRegistry owns every live CartStore, one per user.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	hooks    []func(userID string, store *CartStore)

	gateway  gateway.CartGateway
	products ProductLookup
	now      func() time.Time
}

func NewSessionRegistry(gw gateway.CartGateway, products ProductLookup) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		gateway:  gw,
		products: products,
		now:      time.Now,
	}
}

// OnCreate registers fn to run for every newly created store.
func (r *SessionRegistry) OnCreate(fn func(userID string, store *CartStore)) {
	r.mu.Lock()
	r.hooks = append(r.hooks, fn)
	r.mu.Unlock()
}

// Acquire returns the user's store, creating it on first sight.
// The latest token replaces the previous one.
func (r *SessionRegistry) Acquire(userID, token string) *CartStore {
	now := r.now()

	r.mu.Lock()
	if sess, ok := r.sessions[userID]; ok {
		r.mu.Unlock()
		sess.touch(token, now)
		return sess.store
	}

	sess := &Session{userID: userID, token: token, active: true, lastSeen: now}
	sess.store = NewCartStore(r.gateway, sess, r.products)
	r.sessions[userID] = sess
	hooks := make([]func(string, *CartStore), len(r.hooks))
	copy(hooks, r.hooks)
	r.mu.Unlock()

	logger.Info("Session created", map[string]interface{}{
		"user_id": userID,
	})
	for _, fn := range hooks {
		fn(userID, sess.store)
	}
	return sess.store
}

// Get returns the user's store without creating one.
func (r *SessionRegistry) Get(userID string) (*CartStore, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[userID]
	if !ok {
		return nil, false
	}
	return sess.store, true
}

// Logout ends the session. The store is emptied and any caller still holding
// it gets ErrUnauthenticated.
func (r *SessionRegistry) Logout(userID string) bool {
	r.mu.Lock()
	sess, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()
	if !ok {
		return false
	}

	sess.end()
	sess.store.Reset()

	logger.Info("Session ended", map[string]interface{}{
		"user_id": userID,
	})
	return true
}

// EvictIdle ends sessions not seen for maxIdle and returns how many were dropped.
func (r *SessionRegistry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	stale := make([]string, 0)
	for userID, sess := range r.sessions {
		if sess.idleSince().Before(cutoff) {
			stale = append(stale, userID)
		}
	}
	r.mu.Unlock()

	evicted := 0
	for _, userID := range stale {
		if r.Logout(userID) {
			evicted++
		}
	}

	if evicted > 0 {
		logger.Info("Idle sessions evicted", map[string]interface{}{
			"count":    evicted,
			"max_idle": maxIdle.String(),
		})
	}
	return evicted
}

// Count returns the number of live sessions.
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
