package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]Subscription
	now  func() time.Time
}

// NewMemoryStore returns an in-process Store for tests and local development.
// Rows are copied in and out so callers never share state with the store.
func NewMemoryStore() Store {
	return &memoryStore{
		rows: make(map[uuid.UUID]Subscription),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (m *memoryStore) Get(_ context.Context, userID uuid.UUID) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[userID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return &row, nil
}

func (m *memoryStore) Upsert(_ context.Context, userID uuid.UUID, fn MutateFunc) (*Subscription, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUserID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row, exists := m.rows[userID]
	if !exists {
		row = Subscription{UserID: userID}
	}
	return m.apply(row, exists, fn)
}

func (m *memoryStore) Update(_ context.Context, externalID string, fn MutateFunc) (*Subscription, error) {
	if externalID == "" {
		return nil, ErrMissingExternalID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if row.ExternalSubscriptionID == externalID {
			return m.apply(row, true, fn)
		}
	}
	return nil, ErrSubscriptionNotFound
}

// apply must be called with m.mu held.
func (m *memoryStore) apply(row Subscription, exists bool, fn MutateFunc) (*Subscription, error) {
	if err := fn(&row); err != nil {
		return nil, err
	}

	now := m.now()
	if !exists {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	m.rows[row.UserID] = row

	out := row
	return &out, nil
}
