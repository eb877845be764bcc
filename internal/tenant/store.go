package tenant

import "sync"

// PairStore persists the active tenant pair per browser session so the
// context survives across requests.
type PairStore interface {
	Save(sessionKey string, pair Pair) error
	Load(sessionKey string) (Pair, bool)
	Delete(sessionKey string) error
}

// MemoryPairStore implements PairStore with a mutex-guarded map keyed by
// session key.
type MemoryPairStore struct {
	mu    sync.RWMutex
	pairs map[string]Pair
}

// NewMemoryPairStore constructs an empty pair store.
func NewMemoryPairStore() *MemoryPairStore {
	return &MemoryPairStore{pairs: make(map[string]Pair)}
}

func (s *MemoryPairStore) Save(sessionKey string, pair Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[sessionKey] = pair
	return nil
}

func (s *MemoryPairStore) Load(sessionKey string) (Pair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pair, ok := s.pairs[sessionKey]
	return pair, ok
}

func (s *MemoryPairStore) Delete(sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pairs, sessionKey)
	return nil
}
