package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidTransition    = errors.New("invalid subscription status transition")
	ErrStaleEvent           = errors.New("billing event is older than the last applied event")
	ErrMissingUserID        = errors.New("user ID is required")
	ErrMissingExternalID    = errors.New("external subscription ID is required")
)
