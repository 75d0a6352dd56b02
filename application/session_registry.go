package application

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"doclib/domain/contracts"
)

// SessionRegistry keeps live sessions keyed by id. Idle sessions expire after the TTL.
type SessionRegistry struct {
	sessions *gocache.Cache
}

// NewSessionRegistry creates a registry with the given idle TTL.
func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionRegistry{
		sessions: gocache.New(ttl, ttl/2),
	}
}

// NewID returns a fresh session id.
func (r *SessionRegistry) NewID() string {
	return uuid.NewString()
}

// Put stores a session.
func (r *SessionRegistry) Put(s *Session) {
	r.sessions.SetDefault(s.ID(), s)
}

// Get returns a session and refreshes its TTL.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, contracts.ErrSessionNotFound
	}
	s := v.(*Session)
	r.sessions.SetDefault(id, s)
	return s, nil
}

// Delete removes a session.
func (r *SessionRegistry) Delete(id string) error {
	if _, ok := r.sessions.Get(id); !ok {
		return contracts.ErrSessionNotFound
	}
	r.sessions.Delete(id)
	return nil
}

// Count returns the number of stored sessions, including expired ones not yet swept.
func (r *SessionRegistry) Count() int {
	return r.sessions.ItemCount()
}
