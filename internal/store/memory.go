package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore 进程内去重，用于测试和不接 Redis 的运行
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

func (s *MemoryStore) Seen(_ context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.seen[hash]
	if !ok {
		return false, nil
	}
	if s.ttl > 0 && s.now().Sub(at) >= s.ttl {
		delete(s.seen, hash)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Save(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[hash] = s.now()
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func (s *MemoryStore) Close() error { return nil }
