package usage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/moodmoney/quota/pkg/plans"
)

// DB is the subset of *pgxpool.Pool used by the Postgres store.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	countQuery = `SELECT count FROM usage_counters
		WHERE user_id = $1 AND feature = $2 AND month = $3`

	incrementQuery = `INSERT INTO usage_counters (user_id, feature, month, count, updated_at)
		VALUES ($1, $2, $3, 1, now())
		ON CONFLICT (user_id, feature, month)
		DO UPDATE SET count = usage_counters.count + 1, updated_at = now()
		RETURNING count`

	// The WHERE on the conflict branch makes the increment conditional;
	// when it filters the row out nothing is returned.
	incrementBelowQuery = `INSERT INTO usage_counters (user_id, feature, month, count, updated_at)
		VALUES ($1, $2, $3, 1, now())
		ON CONFLICT (user_id, feature, month)
		DO UPDATE SET count = usage_counters.count + 1, updated_at = now()
		WHERE usage_counters.count < $4
		RETURNING count`
)

type pgStore struct {
	db DB
}

// NewPGStore returns a Store backed by the usage_counters table.
func NewPGStore(db DB) Store {
	if db == nil {
		panic("usage: DB is required")
	}
	return &pgStore{db: db}
}

func (s *pgStore) Count(ctx context.Context, userID uuid.UUID, feature plans.Feature, month Month) (int64, error) {
	if err := validate(userID, feature); err != nil {
		return 0, err
	}

	var count int64
	err := s.db.QueryRow(ctx, countQuery, userID, string(feature), string(month)).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Join(ErrCountFailed, err)
	}
	return count, nil
}

func (s *pgStore) Increment(ctx context.Context, userID uuid.UUID, feature plans.Feature, month Month) (int64, error) {
	if err := validate(userID, feature); err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.QueryRow(ctx, incrementQuery, userID, string(feature), string(month)).Scan(&count); err != nil {
		return 0, errors.Join(ErrIncrementFailed, err)
	}
	return count, nil
}

func (s *pgStore) IncrementBelow(ctx context.Context, userID uuid.UUID, feature plans.Feature, month Month, limit int64) (int64, bool, error) {
	if err := validate(userID, feature); err != nil {
		return 0, false, err
	}
	if limit <= 0 {
		count, err := s.Count(ctx, userID, feature, month)
		return count, false, err
	}

	var count int64
	err := s.db.QueryRow(ctx, incrementBelowQuery, userID, string(feature), string(month), limit).Scan(&count)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		count, err := s.Count(ctx, userID, feature, month)
		return count, false, err
	case err != nil:
		return 0, false, errors.Join(ErrIncrementFailed, err)
	}
	return count, true, nil
}
