package usage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/moodmoney/quota/pkg/plans"
)

type counterKey struct {
	user    uuid.UUID
	feature plans.Feature
	month   Month
}

type memoryStore struct {
	mu       sync.Mutex
	counters map[counterKey]int64
}

// NewMemoryStore returns a mutex-guarded in-process Store.
func NewMemoryStore() Store {
	return &memoryStore{counters: make(map[counterKey]int64)}
}

func (m *memoryStore) Count(_ context.Context, userID uuid.UUID, feature plans.Feature, month Month) (int64, error) {
	if err := validate(userID, feature); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[counterKey{userID, feature, month}], nil
}

func (m *memoryStore) Increment(_ context.Context, userID uuid.UUID, feature plans.Feature, month Month) (int64, error) {
	if err := validate(userID, feature); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := counterKey{userID, feature, month}
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memoryStore) IncrementBelow(_ context.Context, userID uuid.UUID, feature plans.Feature, month Month, limit int64) (int64, bool, error) {
	if err := validate(userID, feature); err != nil {
		return 0, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := counterKey{userID, feature, month}
	current := m.counters[key]
	if current >= limit {
		return current, false, nil
	}
	m.counters[key] = current + 1
	return current + 1, true, nil
}
