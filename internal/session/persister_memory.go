package session

import (
	"context"
	"sync"

	"pawhub/internal/models"
)

// MemoryPersister keeps encoded sessions in process memory.
type MemoryPersister struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{values: make(map[string][]byte)}
}

func (p *MemoryPersister) Load(_ context.Context, key string) (models.Session, bool, error) {
	p.mu.RLock()
	b, ok := p.values[key]
	p.mu.RUnlock()
	if !ok {
		return models.Session{}, false, nil
	}
	return decode(b)
}

func (p *MemoryPersister) Save(_ context.Context, key string, s models.Session) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.values[key] = b
	p.mu.Unlock()
	return nil
}

func (p *MemoryPersister) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.values, key)
	p.mu.Unlock()
	return nil
}

// Len returns the number of saved sessions.
func (p *MemoryPersister) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.values)
}
