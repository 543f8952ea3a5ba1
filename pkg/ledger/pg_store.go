package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by the Postgres store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	insertQuery = `INSERT INTO transactions
		(id, user_id, amount_cents, currency, category, description, receipt_key, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	listQuery = `SELECT id, user_id, amount_cents, currency, category, description, receipt_key, occurred_at, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY occurred_at DESC, created_at DESC
		LIMIT $2`
)

type pgStore struct {
	db DB
}

// NewPGStore returns a Store backed by the transactions table.
func NewPGStore(db DB) Store {
	if db == nil {
		panic("ledger: DB is required")
	}
	return &pgStore{db: db}
}

func (s *pgStore) Insert(ctx context.Context, tx *Transaction) error {
	if err := normalize(tx, time.Now().UTC()); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, insertQuery,
		tx.ID, tx.UserID, tx.AmountCents, tx.Currency, tx.Category,
		tx.Description, tx.ReceiptKey, tx.OccurredAt, tx.CreatedAt,
	)
	if err != nil {
		return errors.Join(ErrInsertFailed, err)
	}
	return nil
}

func (s *pgStore) List(ctx context.Context, userID uuid.UUID, limit int) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, listQuery, userID, clampLimit(limit))
	if err != nil {
		return nil, errors.Join(ErrListFailed, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Transaction, error) {
		var tx Transaction
		err := row.Scan(&tx.ID, &tx.UserID, &tx.AmountCents, &tx.Currency, &tx.Category,
			&tx.Description, &tx.ReceiptKey, &tx.OccurredAt, &tx.CreatedAt)
		return tx, err
	})
	if err != nil {
		return nil, errors.Join(ErrListFailed, err)
	}
	if out == nil {
		out = []Transaction{}
	}
	return out, nil
}
