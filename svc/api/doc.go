// Package api is the HTTP surface of the quota service.
//
// User routes sit behind Supabase token verification and return the
// {"data": ...} / {"error": ...} envelope from pkg/response. Metered actions
// (transactions, receipt scans, chat) run through the entitlement gate so a
// denied request never reaches the ledger, object storage or the model.
// The Stripe webhook is mounted outside authentication and verified by
// signature instead.
package api
