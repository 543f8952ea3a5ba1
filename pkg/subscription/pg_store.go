package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/moodmoney/quota/pkg/plans"
)

// DB is the subset of *pgxpool.Pool used by the Postgres stores.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const selectColumns = `user_id, tier, status, current_period_start, current_period_end,
	ext_customer_id, COALESCE(ext_subscription_id, ''), last_event_at, created_at, updated_at`

const upsertQuery = `
	INSERT INTO subscriptions (
		user_id, tier, status, current_period_start, current_period_end,
		ext_customer_id, ext_subscription_id, last_event_at, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, now(), now())
	ON CONFLICT (user_id) DO UPDATE SET
		tier = EXCLUDED.tier,
		status = EXCLUDED.status,
		current_period_start = EXCLUDED.current_period_start,
		current_period_end = EXCLUDED.current_period_end,
		ext_customer_id = EXCLUDED.ext_customer_id,
		ext_subscription_id = EXCLUDED.ext_subscription_id,
		last_event_at = EXCLUDED.last_event_at,
		updated_at = now()
	RETURNING ` + selectColumns

type pgStore struct {
	db DB
}

// NewPGStore returns a Store backed by the subscriptions table.
func NewPGStore(db DB) Store {
	if db == nil {
		panic("subscription: DB is required")
	}
	return &pgStore{db: db}
}

func (s *pgStore) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	row := s.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM subscriptions WHERE user_id = $1`, userID)
	return scanSubscription(row)
}

func (s *pgStore) Upsert(ctx context.Context, userID uuid.UUID, fn MutateFunc) (*Subscription, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUserID
	}

	return s.inTx(ctx, func(tx pgx.Tx) (*Subscription, error) {
		row := tx.QueryRow(ctx, `SELECT `+selectColumns+` FROM subscriptions WHERE user_id = $1 FOR UPDATE`, userID)
		sub, err := scanSubscription(row)
		if errors.Is(err, ErrSubscriptionNotFound) {
			sub, err = &Subscription{UserID: userID}, nil
		}
		if err != nil {
			return nil, err
		}
		return write(ctx, tx, sub, fn)
	})
}

func (s *pgStore) Update(ctx context.Context, externalID string, fn MutateFunc) (*Subscription, error) {
	if externalID == "" {
		return nil, ErrMissingExternalID
	}

	return s.inTx(ctx, func(tx pgx.Tx) (*Subscription, error) {
		row := tx.QueryRow(ctx, `SELECT `+selectColumns+` FROM subscriptions WHERE ext_subscription_id = $1 FOR UPDATE`, externalID)
		sub, err := scanSubscription(row)
		if err != nil {
			return nil, err
		}
		return write(ctx, tx, sub, fn)
	})
}

func (s *pgStore) inTx(ctx context.Context, fn func(pgx.Tx) (*Subscription, error)) (*Subscription, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin subscription tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sub, err := fn(tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit subscription tx: %w", err)
	}
	return sub, nil
}

func write(ctx context.Context, tx pgx.Tx, sub *Subscription, fn MutateFunc) (*Subscription, error) {
	if err := fn(sub); err != nil {
		return nil, err
	}
	if sub.Tier == "" {
		sub.Tier = plans.TierFree
	}
	if sub.Status == "" {
		sub.Status = StatusIncomplete
	}

	row := tx.QueryRow(ctx, upsertQuery,
		sub.UserID,
		string(sub.Tier),
		string(sub.Status),
		nullTime(sub.CurrentPeriodStart),
		nullTime(sub.CurrentPeriodEnd),
		sub.ExternalCustomerID,
		sub.ExternalSubscriptionID,
		nullTime(sub.LastEventAt),
	)
	saved, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}
	return saved, nil
}

func scanSubscription(row pgx.Row) (*Subscription, error) {
	var (
		sub                 Subscription
		tier, status        string
		start, end, lastEvt *time.Time
	)
	err := row.Scan(
		&sub.UserID,
		&tier,
		&status,
		&start,
		&end,
		&sub.ExternalCustomerID,
		&sub.ExternalSubscriptionID,
		&lastEvt,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}

	sub.Tier = plans.Tier(tier)
	sub.Status = Status(status)
	sub.CurrentPeriodStart = derefTime(start)
	sub.CurrentPeriodEnd = derefTime(end)
	sub.LastEventAt = derefTime(lastEvt)
	return &sub, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
