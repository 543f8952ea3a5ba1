package plans

import "fmt"

// Tier is a named subscription level.
type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// Feature is a metered action kind counted per user per calendar month.
type Feature string

const (
	FeatureTransaction Feature = "transaction"
	FeatureReceipt     Feature = "receipt"
	FeatureAIChat      Feature = "ai_chat"
)

// Capability is a boolean plan flag. Capabilities are never metered.
type Capability string

const (
	CapabilityBasicInsights    Capability = "basic_insights"
	CapabilityCSVExport        Capability = "csv_export"
	CapabilityAdvancedInsights Capability = "advanced_insights"
	CapabilityBudgetGoals      Capability = "budget_goals"
	CapabilityPrioritySupport  Capability = "priority_support"
)

// Unlimited marks a limit with no cap (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

var (
	tiers    = []Tier{TierFree, TierStarter, TierPro, TierPremium}
	features = []Feature{FeatureTransaction, FeatureReceipt, FeatureAIChat}

	capabilities = []Capability{
		CapabilityBasicInsights,
		CapabilityCSVExport,
		CapabilityAdvancedInsights,
		CapabilityBudgetGoals,
		CapabilityPrioritySupport,
	}
)

// Tiers returns all tiers ordered from lowest to highest.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Features returns all metered features.
func Features() []Feature {
	out := make([]Feature, len(features))
	copy(out, features)
	return out
}

// ParseTier converts a string into a known Tier.
func ParseTier(s string) (Tier, error) {
	for _, t := range tiers {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// ParseFeature converts a string into a known Feature.
func ParseFeature(s string) (Feature, error) {
	for _, f := range features {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFeature, s)
}

// ParseCapability converts a string into a known Capability.
func ParseCapability(s string) (Capability, error) {
	for _, c := range capabilities {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCapability, s)
}

// Valid reports whether t is one of the four known tiers.
func (t Tier) Valid() bool {
	_, err := ParseTier(string(t))
	return err == nil
}

// Rank orders tiers for upgrade comparisons. Unknown tiers rank as free.
func (t Tier) Rank() int {
	for i, known := range tiers {
		if known == t {
			return i
		}
	}
	return 0
}

func (t Tier) String() string { return string(t) }

// Valid reports whether f is a known metered feature.
func (f Feature) Valid() bool {
	_, err := ParseFeature(string(f))
	return err == nil
}

// Billable reports whether performing the feature costs money downstream
// (an OpenAI call). Billable features fail closed when usage cannot be verified.
func (f Feature) Billable() bool {
	switch f {
	case FeatureReceipt, FeatureAIChat:
		return true
	default:
		return false
	}
}

func (f Feature) String() string { return string(f) }
