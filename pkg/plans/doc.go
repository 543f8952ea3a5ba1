// Package plans is the plan catalog: the fixed mapping from subscription tier
// to monthly usage caps and capability flags.
//
// It is the only place limits are defined. Everything that needs a number,
// the entitlement engine, the usage summary, the CLI `plans` command, reads it
// from LimitsFor.
//
//	l := plans.LimitsFor(plans.TierFree)
//	l.For(plans.FeatureAIChat) // 3
//
// A limit of Unlimited (-1) means no cap.
package plans
