package subscription

import (
	"context"

	"github.com/google/uuid"
)

// MutateFunc changes a subscription in place inside a store transaction.
// Returning an error aborts the write and the error is passed through.
type MutateFunc func(sub *Subscription) error

// Store defines subscription persistence. Each user has exactly one row,
// so UserID is the primary key; ExternalSubscriptionID is unique.
type Store interface {
	// Get retrieves a subscription by user ID.
	// Returns ErrSubscriptionNotFound if no subscription exists.
	Get(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// Upsert creates or modifies the user's row under a row lock.
	// fn receives the existing row, or a zero row with UserID set when absent.
	Upsert(ctx context.Context, userID uuid.UUID, fn MutateFunc) (*Subscription, error)

	// Update modifies the row owning externalID under a row lock.
	// Returns ErrSubscriptionNotFound if no row owns it.
	Update(ctx context.Context, externalID string, fn MutateFunc) (*Subscription, error)
}
