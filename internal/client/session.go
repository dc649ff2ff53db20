package client

import (
	"context"
	"sync"
	"time"
)

// State is where a session stands. There is no "maybe logged in": callers
// switch on the state and only read Identity when Authenticated.
type State int

const (
	Loading State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Identity is what /api/auth/me reports for a valid session.
type Identity struct {
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Status is a snapshot of the session. Identity is nil unless State is
// Authenticated.
type Status struct {
	State    State
	Identity *Identity
}

// Session tracks the login state of one client. It starts Loading and
// settles after the first Resolve.
type Session struct {
	mu     sync.Mutex
	status Status
}

func NewSession() *Session {
	return &Session{status: Status{State: Loading}}
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Resolve marks the session Loading, runs fetch and settles on its result.
// Any fetch error means Anonymous.
func (s *Session) Resolve(ctx context.Context, fetch func(context.Context) (*Identity, error)) Status {
	s.set(Status{State: Loading})
	id, err := fetch(ctx)
	if err != nil || id == nil {
		return s.set(Status{State: Anonymous})
	}
	return s.set(Status{State: Authenticated, Identity: id})
}

func (s *Session) clear() { s.set(Status{State: Anonymous}) }

func (s *Session) set(st Status) Status {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
	return st
}
