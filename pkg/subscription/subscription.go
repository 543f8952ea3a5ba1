package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/moodmoney/quota/pkg/plans"
)

// Subscription is a user's current plan with the payment provider.
// Each user has at most one row; cancellation is a status change, never a delete.
type Subscription struct {
	UserID                 uuid.UUID  `json:"userId"`
	Tier                   plans.Tier `json:"tier"`
	Status                 Status     `json:"status"`
	CurrentPeriodStart     time.Time  `json:"currentPeriodStart,omitzero"`
	CurrentPeriodEnd       time.Time  `json:"currentPeriodEnd,omitzero"`
	ExternalCustomerID     string     `json:"externalCustomerId,omitempty"`
	ExternalSubscriptionID string     `json:"externalSubscriptionId,omitempty"`
	LastEventAt            time.Time  `json:"-"` // provider timestamp of the last applied event
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

// IsActive returns true if the subscription is paid up.
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == StatusActive
}

// IsCanceled returns true if the subscription has been canceled.
func (s *Subscription) IsCanceled() bool {
	return s != nil && s.Status == StatusCanceled
}

// EffectiveTier is the tier used for entitlement decisions:
// the stored tier while active, free otherwise. A nil subscription is free.
func (s *Subscription) EffectiveTier() plans.Tier {
	if !s.IsActive() || !s.Tier.Valid() {
		return plans.TierFree
	}
	return s.Tier
}

// IsStale reports whether an event that occurred at t predates the last applied one.
func (s *Subscription) IsStale(t time.Time) bool {
	if s == nil || s.LastEventAt.IsZero() || t.IsZero() {
		return false
	}
	return t.Before(s.LastEventAt)
}
