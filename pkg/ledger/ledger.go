package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransaction = errors.New("ledger: invalid transaction")
	ErrInsertFailed       = errors.New("ledger: failed to insert transaction")
	ErrListFailed         = errors.New("ledger: failed to list transactions")
)

// DefaultListLimit bounds List when no limit is given.
const DefaultListLimit = 50

// Transaction is one spending entry.
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	ReceiptKey  string    `json:"receiptKey,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store persists transactions.
type Store interface {
	// Insert fills ID and CreatedAt when unset and writes tx.
	Insert(ctx context.Context, tx *Transaction) error
	// List returns the user's newest transactions first.
	List(ctx context.Context, userID uuid.UUID, limit int) ([]Transaction, error)
}

// normalize validates tx and fills defaults in place.
func normalize(tx *Transaction, now time.Time) error {
	if tx == nil || tx.UserID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", ErrInvalidTransaction)
	}
	if tx.AmountCents == 0 {
		return fmt.Errorf("%w: amount is required", ErrInvalidTransaction)
	}
	tx.Currency = strings.ToUpper(strings.TrimSpace(tx.Currency))
	if len(tx.Currency) != 3 {
		return fmt.Errorf("%w: currency must be an ISO 4217 code", ErrInvalidTransaction)
	}
	tx.Category = strings.ToLower(strings.TrimSpace(tx.Category))
	tx.Description = strings.TrimSpace(tx.Description)

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = now
	}
	tx.OccurredAt = tx.OccurredAt.UTC()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return DefaultListLimit
	}
	return limit
}
