package ordernum

import (
	"context"
	"sync"
	"time"
)

// MemoryReserver holds reservations in process memory.
type MemoryReserver struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

var _ Reserver = (*MemoryReserver)(nil)

func NewMemoryReserver() *MemoryReserver {
	return &MemoryReserver{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (m *MemoryReserver) Reserve(ctx context.Context, number string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expires, ok := m.held[number]; ok && now.Before(expires) {
		return false, nil
	}
	m.held[number] = now.Add(ttl)
	return true, nil
}

func (m *MemoryReserver) Release(ctx context.Context, number string) error {
	m.mu.Lock()
	delete(m.held, number)
	m.mu.Unlock()
	return nil
}
