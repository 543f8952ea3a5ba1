// Package usage keeps per-user monthly counters for metered features.
//
// A counter is addressed by (user, feature, month) where Month is the UTC
// calendar month in YYYY-MM form. Counters only grow within a month and a new
// month implicitly starts at zero; old months are kept as history.
//
// Increment is a single atomic upsert so concurrent first uses never create
// duplicate rows. IncrementBelow additionally refuses to pass a limit, which
// backs the strict recording mode of the entitlement package.
package usage
