package entitlement

import (
	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/usage"
)

// Decision is the result of an entitlement check for one feature.
// Remaining is plans.Unlimited when the tier has no cap.
type Decision struct {
	Allowed   bool          `json:"allowed"`
	Feature   plans.Feature `json:"feature"`
	Tier      plans.Tier    `json:"tier"`
	Limit     int64         `json:"limit"`
	Used      int64         `json:"used"`
	Remaining int64         `json:"remaining"`
}

// LimitError converts a denied decision into its error form.
func (d Decision) LimitError() *LimitError {
	return &LimitError{Feature: d.Feature, Tier: d.Tier, Limit: d.Limit, Used: d.Used}
}

func decide(tier plans.Tier, feature plans.Feature, used int64) Decision {
	limit := plans.LimitsFor(tier).For(feature)
	d := Decision{Feature: feature, Tier: tier, Limit: limit, Used: used}

	if plans.IsUnlimited(limit) {
		d.Allowed = true
		d.Remaining = plans.Unlimited
		return d
	}

	d.Allowed = used < limit
	d.Remaining = max(0, limit-used)
	return d
}

// Summary is the usage overview for a user in the current month.
type Summary struct {
	Tier      plans.Tier              `json:"tier"`
	Month     usage.Month             `json:"month"`
	Usage     map[plans.Feature]int64 `json:"usage"`
	Limits    plans.Limits            `json:"limits"`
	Remaining map[plans.Feature]int64 `json:"remaining"`
}
