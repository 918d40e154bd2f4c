package chat

import (
	"sync"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// Relay forwards project discoveries to the attached session. The folder
// watcher is created before any session exists, so it is given the
// relay's Notify as its discovery callback.
type Relay struct {
	mu      sync.Mutex
	session *Session
}

// Attach directs discoveries to s.
func (r *Relay) Attach(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = s
}

// Detach drops the session. Later discoveries are ignored.
func (r *Relay) Detach() {
	r.Attach(nil)
}

// Notify announces c in the attached session, if any.
func (r *Relay) Notify(c domain.ProjectCandidate) {
	r.mu.Lock()
	s := r.session
	r.mu.Unlock()
	if s != nil {
		s.Announce(c)
	}
}
