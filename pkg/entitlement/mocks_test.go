package entitlement_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/subscription"
	"github.com/moodmoney/quota/pkg/usage"
)

// MockSubscriptionStore is a mock implementation of subscription.Store.
type MockSubscriptionStore struct {
	mock.Mock
}

func (m *MockSubscriptionStore) Get(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionStore) Upsert(ctx context.Context, userID uuid.UUID, fn subscription.MutateFunc) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionStore) Update(ctx context.Context, externalID string, fn subscription.MutateFunc) (*subscription.Subscription, error) {
	args := m.Called(ctx, externalID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

// MockUsageStore is a mock implementation of usage.Store.
type MockUsageStore struct {
	mock.Mock
}

func (m *MockUsageStore) Count(ctx context.Context, userID uuid.UUID, feature plans.Feature, month usage.Month) (int64, error) {
	args := m.Called(ctx, userID, feature, month)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUsageStore) Increment(ctx context.Context, userID uuid.UUID, feature plans.Feature, month usage.Month) (int64, error) {
	args := m.Called(ctx, userID, feature, month)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUsageStore) IncrementBelow(ctx context.Context, userID uuid.UUID, feature plans.Feature, month usage.Month, limit int64) (int64, bool, error) {
	args := m.Called(ctx, userID, feature, month, limit)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}
