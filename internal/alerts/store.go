package alerts

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrNotFound = errors.New("alert not found")

// Store persists alerts. Implementations must be safe for concurrent use.
type Store interface {
	Insert(ctx context.Context, alert Alert) (Alert, error)
	ListActive(ctx context.Context) ([]Alert, error)
	MarkAlerted(ctx context.Context, id string, at time.Time) error
	Deactivate(ctx context.Context, id string) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	alerts map[string]Alert
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{alerts: make(map[string]Alert)}
}

func (m *MemoryStore) Insert(_ context.Context, alert Alert) (Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.alerts[alert.ID] = alert
	return alert, nil
}

func (m *MemoryStore) ListActive(_ context.Context) ([]Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := make([]Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		if a.IsActive {
			active = append(active, a)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})

	return active, nil
}

func (m *MemoryStore) MarkAlerted(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alerts[id]
	if !ok {
		return ErrNotFound
	}

	at = at.UTC()
	a.LastAlertedAt = &at
	m.alerts[id] = a
	return nil
}

func (m *MemoryStore) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alerts[id]
	if !ok {
		return ErrNotFound
	}

	a.IsActive = false
	m.alerts[id] = a
	return nil
}
