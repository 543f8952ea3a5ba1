package billing

import (
	"fmt"

	"github.com/moodmoney/quota/pkg/subscription"
)

// MapStatus converts a Stripe subscription status into a local one.
func MapStatus(stripeStatus string) (subscription.Status, error) {
	switch stripeStatus {
	case "active", "trialing":
		return subscription.StatusActive, nil
	case "past_due", "unpaid":
		return subscription.StatusPastDue, nil
	case "canceled", "incomplete_expired":
		return subscription.StatusCanceled, nil
	case "incomplete", "paused":
		return subscription.StatusIncomplete, nil
	default:
		return "", fmt.Errorf("%w: unknown subscription status %q", ErrMalformedPayload, stripeStatus)
	}
}
