// Package ledger stores the spending transactions users log by hand or
// through a scanned receipt.
package ledger
