package entitlement_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/subscription"
	"github.com/moodmoney/quota/pkg/usage"
)

var march = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func subscribe(t *testing.T, store subscription.Store, userID uuid.UUID, tier plans.Tier, status subscription.Status) {
	t.Helper()

	_, err := store.Upsert(context.Background(), userID, func(s *subscription.Subscription) error {
		s.Tier = tier
		s.Status = status
		return nil
	})
	require.NoError(t, err)
}

func use(t *testing.T, store usage.Store, userID uuid.UUID, feature plans.Feature, month usage.Month, n int) {
	t.Helper()

	for range n {
		_, err := store.Increment(context.Background(), userID, feature, month)
		require.NoError(t, err)
	}
}
