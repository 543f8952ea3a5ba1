// Package billing connects Stripe to the subscription store.
//
// Webhook deliveries are verified with the endpoint secret, decoded into
// typed events (Parse) and applied by Adapter under the subscription
// lifecycle rules. Redelivered and out-of-order events are safe: each row
// remembers the provider time of the last applied event and older events
// are skipped.
//
// Checkout creates hosted checkout and billing portal sessions. The checkout
// session carries the user id and price id so the completed event can be
// tied back to the user without a lookup.
package billing
