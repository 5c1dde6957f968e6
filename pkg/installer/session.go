package installer

import (
	"sync"

	"github.com/google/uuid"
)

// Session scopes one top-level install or update call. It carries the
// visited set that breaks dependency cycles: a package name is claimed
// exactly once per session, so A→B→A terminates with both installed once.
//
// The set is synchronized, so an implementation that parallelizes
// independent branches of the recursion keeps the cycle-break guarantee.
// The session is discarded when the top-level call returns; nothing about
// it persists.
type Session struct {
	// ID correlates every log line of one top-level call.
	ID string

	mu      sync.Mutex
	visited map[string]bool
}

// NewSession creates an empty session with a fresh correlation ID.
func NewSession() *Session {
	return &Session{
		ID:      uuid.NewString(),
		visited: make(map[string]bool),
	}
}

// Visit claims name for this session. It returns true the first time a
// name is seen and false on every later call, which callers treat as a
// no-op (cycle break), not an error.
func (s *Session) Visit(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visited[name] {
		return false
	}
	s.visited[name] = true
	return true
}

// Visited reports whether name has been claimed in this session.
func (s *Session) Visited(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visited[name]
}
