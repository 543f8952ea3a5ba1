package ledger

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID][]Transaction
}

// NewMemoryStore returns a Store kept in process memory.
func NewMemoryStore() Store {
	return &memoryStore{rows: make(map[uuid.UUID][]Transaction)}
}

func (s *memoryStore) Insert(_ context.Context, tx *Transaction) error {
	if err := normalize(tx, time.Now().UTC()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[tx.UserID] = append(s.rows[tx.UserID], *tx)
	return nil
}

func (s *memoryStore) List(_ context.Context, userID uuid.UUID, limit int) ([]Transaction, error) {
	s.mu.RLock()
	out := slices.Clone(s.rows[userID])
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b Transaction) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Transaction{}
	}
	return out, nil
}
