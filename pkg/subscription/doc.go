// Package subscription stores each user's billing state and the rules for
// moving it between statuses.
//
// A user has at most one row. Access is decided by EffectiveTier: only an
// active subscription grants its tier, anything else (missing, past due,
// canceled, incomplete) is treated as the free tier.
//
// Rows change only through Store.Upsert and Store.Update, which hand the
// current row to a MutateFunc under a lock. Billing webhooks use Transition
// inside that function so a canceled subscription is never revived by a
// late invoice or update event.
//
// Two implementations are provided: NewPGStore for Postgres and
// NewMemoryStore for tests and local development.
package subscription
