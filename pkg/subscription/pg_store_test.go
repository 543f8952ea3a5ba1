package subscription_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodmoney/quota/migrations"
	"github.com/moodmoney/quota/pkg/pg"
	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/subscription"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("PG_TEST_URL")
	if url == "" {
		t.Skip("PG_TEST_URL not set")
	}

	ctx := context.Background()
	cfg := pg.Config{ConnectionString: url, MaxConns: 4, RetryAttempts: 1, MigrationsTable: "quota_schema_migrations"}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, migrations.FS, cfg, slog.New(slog.NewTextHandler(io.Discard, nil))))
	return pool
}

func TestPGStore(t *testing.T) {
	pool := testPool(t)
	store := subscription.NewPGStore(pool)
	ctx := context.Background()

	userID := uuid.New()
	extID := "sub_" + uuid.NewString()
	periodEnd := time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(time.Second)

	t.Run("get missing", func(t *testing.T) {
		_, err := store.Get(ctx, userID)
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})

	t.Run("upsert creates row", func(t *testing.T) {
		sub, err := store.Upsert(ctx, userID, func(s *subscription.Subscription) error {
			s.Tier = plans.TierPro
			s.Status = subscription.StatusActive
			s.ExternalCustomerID = "cus_test"
			s.ExternalSubscriptionID = extID
			s.CurrentPeriodEnd = periodEnd
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, userID, sub.UserID)
		assert.True(t, periodEnd.Equal(sub.CurrentPeriodEnd))
		assert.True(t, sub.CurrentPeriodStart.IsZero())
	})

	t.Run("update by external id", func(t *testing.T) {
		sub, err := store.Update(ctx, extID, func(s *subscription.Subscription) error {
			s.Status = subscription.StatusPastDue
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusPastDue, sub.Status)
		assert.Equal(t, plans.TierFree, sub.EffectiveTier())

		got, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, extID, got.ExternalSubscriptionID)
		assert.Equal(t, subscription.StatusPastDue, got.Status)
	})

	t.Run("update unknown external id", func(t *testing.T) {
		_, err := store.Update(ctx, "sub_unknown_"+uuid.NewString(), func(*subscription.Subscription) error { return nil })
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})
}
