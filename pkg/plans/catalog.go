package plans

import "slices"

// Limits holds the monthly caps and capability flags of a tier.
// A cap of Unlimited means no limit.
type Limits struct {
	Transactions int64        `json:"transactions"`
	Receipts     int64        `json:"receipts"`
	AIChats      int64        `json:"aiChats"`
	Capabilities []Capability `json:"capabilities"`
}

// For returns the monthly cap for a metered feature.
// Unknown features get a zero cap so they are always denied.
func (l Limits) For(f Feature) int64 {
	switch f {
	case FeatureTransaction:
		return l.Transactions
	case FeatureReceipt:
		return l.Receipts
	case FeatureAIChat:
		return l.AIChats
	default:
		return 0
	}
}

// Has reports whether the capability is enabled.
func (l Limits) Has(c Capability) bool {
	return slices.Contains(l.Capabilities, c)
}

// catalog is the single source of truth for plan limits.
// The numbers are provisional until product confirms them.
var catalog = map[Tier]Limits{
	TierFree: {
		Transactions: 50,
		Receipts:     5,
		AIChats:      3,
		Capabilities: []Capability{CapabilityBasicInsights},
	},
	TierStarter: {
		Transactions: 200,
		Receipts:     25,
		AIChats:      30,
		Capabilities: []Capability{CapabilityBasicInsights, CapabilityCSVExport},
	},
	TierPro: {
		Transactions: Unlimited,
		Receipts:     100,
		AIChats:      200,
		Capabilities: []Capability{
			CapabilityBasicInsights,
			CapabilityCSVExport,
			CapabilityAdvancedInsights,
			CapabilityBudgetGoals,
		},
	},
	TierPremium: {
		Transactions: Unlimited,
		Receipts:     Unlimited,
		AIChats:      Unlimited,
		Capabilities: []Capability{
			CapabilityBasicInsights,
			CapabilityCSVExport,
			CapabilityAdvancedInsights,
			CapabilityBudgetGoals,
			CapabilityPrioritySupport,
		},
	},
}

// LimitsFor returns the limits of a tier. Unknown tiers get the free limits.
// The returned value is a copy; mutating it does not affect the catalog.
func LimitsFor(t Tier) Limits {
	l, ok := catalog[t]
	if !ok {
		l = catalog[TierFree]
	}
	l.Capabilities = slices.Clone(l.Capabilities)
	return l
}

// Catalog returns a copy of the whole table keyed by tier.
func Catalog() map[Tier]Limits {
	out := make(map[Tier]Limits, len(catalog))
	for _, t := range tiers {
		out[t] = LimitsFor(t)
	}
	return out
}

// IsUnlimited reports whether limit is the unlimited sentinel.
func IsUnlimited(limit int64) bool {
	return limit == Unlimited
}
