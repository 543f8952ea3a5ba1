package billing

import "errors"

var (
	ErrInvalidSignature     = errors.New("billing: invalid webhook signature")
	ErrMalformedPayload     = errors.New("billing: malformed event payload")
	ErrUnknownPrice         = errors.New("billing: price is not mapped to a tier")
	ErrUnknownTier          = errors.New("billing: tier has no configured price")
	ErrWebhookNotConfigured = errors.New("billing: webhook secret not configured")
	ErrNoCustomer           = errors.New("billing: user has no billing customer")
	ErrProviderUnavailable  = errors.New("billing: payment provider unavailable")
	ErrStoreUnavailable     = errors.New("billing: subscription store unavailable")

	errForeignSubscription = errors.New("billing: row belongs to another subscription")
)

// IsPermanent reports whether retrying the event can never succeed.
// Such events are acknowledged so the provider stops redelivering them.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrMalformedPayload) || errors.Is(err, ErrUnknownPrice)
}
