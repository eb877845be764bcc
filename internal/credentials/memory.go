package credentials

import "sync"

// MemoryStore implements Store with a mutex-guarded map. It backs tests and
// the development bypass, where no real browser session exists.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[Kind]string
}

// NewMemoryStore constructs an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Kind]string)}
}

func (s *MemoryStore) Set(kind Kind, value string) error {
	if !kind.Valid() {
		return errInvalidKind(kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[kind] = value
	return nil
}

func (s *MemoryStore) Get(kind Kind) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[kind]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *MemoryStore) Clear(kind Kind) error {
	if !kind.Valid() {
		return errInvalidKind(kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, kind)
	return nil
}

// ClearAll removes every slot under one lock so concurrent readers observe
// either the full credential set or none of it.
func (s *MemoryStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[Kind]string)
	return nil
}

// SetTokens replaces both tokens under one lock.
func (s *MemoryStore) SetTokens(authToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[KindAuthToken] = authToken
	s.values[KindRefreshToken] = refreshToken
	return nil
}
