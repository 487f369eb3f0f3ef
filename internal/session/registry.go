package session

import (
	"context"
	"sync"
	"time"
)

// Registry tracks live session ids.
type Registry interface {
	Add(ctx context.Context, id string, userID int, ttl time.Duration) error
	Exists(ctx context.Context, id string) (bool, error)
	Remove(ctx context.Context, id string) error
}

// MemoryRegistry keeps session ids in process. It is used when no Redis is
// configured and does not survive restarts.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

var _ Registry = (*MemoryRegistry)(nil)

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{entries: make(map[string]time.Time), now: time.Now}
}

func (r *MemoryRegistry) Add(_ context.Context, id string, _ int, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, exp := range r.entries {
		if !exp.After(now) {
			delete(r.entries, k)
		}
	}
	r.entries[id] = now.Add(ttl)
	return nil
}

func (r *MemoryRegistry) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.entries[id]
	if !ok {
		return false, nil
	}
	if !exp.After(r.now()) {
		delete(r.entries, id)
		return false, nil
	}
	return true, nil
}

func (r *MemoryRegistry) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, id)
	return nil
}
