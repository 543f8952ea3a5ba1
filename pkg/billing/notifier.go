package billing

import (
	"context"

	"github.com/google/uuid"
)

// PaymentFailure describes a failed renewal charge.
type PaymentFailure struct {
	UserID         uuid.UUID
	Email          string
	SubscriptionID string
	AttemptCount   int64
}

// Notifier tells a user that their payment failed. Delivery is best-effort.
type Notifier interface {
	NotifyPaymentFailed(ctx context.Context, failure PaymentFailure) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, failure PaymentFailure) error

func (f NotifierFunc) NotifyPaymentFailed(ctx context.Context, failure PaymentFailure) error {
	return f(ctx, failure)
}

type noopNotifier struct{}

func (noopNotifier) NotifyPaymentFailed(context.Context, PaymentFailure) error { return nil }
