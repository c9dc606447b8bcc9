package session

import "sync"

// Store keeps at most one dialog state per user identity. Sessions are pure
// in-memory state; a restart drops every in-flight conversation.
//
// Correctness of the read-modify-write cycle around an event depends on
// per-user serialization: callers must hold the lock from Acquire for the
// whole get+compute+set of one inbound event.
type Store struct {
	states map[string]State
	locks  map[string]*sync.Mutex
	mu     sync.Mutex
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		states: make(map[string]State),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Acquire blocks until the caller owns the per-user section and returns the
// release func. Events for distinct users never contend.
func (s *Store) Acquire(userID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Get returns the user's active state, or nil when no flow is in progress.
func (s *Store) Get(userID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[userID]
}

// Set replaces the user's state with the next step.
func (s *Store) Set(userID string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = state
}

// Clear ends the user's dialog, if any.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}
