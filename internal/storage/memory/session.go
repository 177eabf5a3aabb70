package memory

import (
	"context"
	"sync"
	"time"

	"github.com/xenking/brosmart/internal/domain/cart"
	"github.com/xenking/brosmart/internal/domain/checkout"
)

var _ checkout.SessionStore = (*SessionStore)(nil)

type sessionEntry struct {
	state     checkout.State
	expiresAt time.Time
}

// SessionStore keeps checkout sessions in process memory. Expired sessions
// are dropped lazily on access.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]sessionEntry
	now      func() time.Time
}

// NewSessionStore returns an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]sessionEntry),
		now:      time.Now,
	}
}

func (s *SessionStore) Load(_ context.Context, id string) (checkout.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return checkout.NewState(), nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.sessions, id)
		return checkout.NewState(), nil
	}
	return copyState(e.state), nil
}

func (s *SessionStore) Save(_ context.Context, id string, st checkout.State, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = sessionEntry{state: copyState(st), expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func copyState(st checkout.State) checkout.State {
	if st.Cart == nil {
		st.Cart = cart.New()
		return st
	}
	st.Cart = st.Cart.Clone()
	return st
}
