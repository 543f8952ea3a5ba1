package usage

import (
	"context"

	"github.com/google/uuid"

	"github.com/moodmoney/quota/pkg/plans"
)

// Store persists monthly usage counters.
type Store interface {
	// Count returns the stored count, or 0 when no counter exists yet.
	Count(ctx context.Context, userID uuid.UUID, feature plans.Feature, month Month) (int64, error)

	// Increment atomically adds one and returns the new count.
	// The first increment of a month creates the counter at 1.
	Increment(ctx context.Context, userID uuid.UUID, feature plans.Feature, month Month) (int64, error)

	// IncrementBelow adds one only while the stored count is below limit.
	// When the counter is already at or above limit it returns the current
	// count with ok set to false. A non-positive limit never increments.
	IncrementBelow(ctx context.Context, userID uuid.UUID, feature plans.Feature, month Month, limit int64) (count int64, ok bool, err error)
}

func validate(userID uuid.UUID, feature plans.Feature) error {
	if userID == uuid.Nil {
		return ErrMissingUserID
	}
	if !feature.Valid() {
		return ErrUnknownFeature
	}
	return nil
}
