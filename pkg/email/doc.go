// Package email sends transactional mail through Postmark.
//
// In development DevSender writes each message to disk instead. The only
// message the service sends today is the payment-failure notice, delivered
// through PaymentNotifier when Stripe reports a failed renewal.
package email
