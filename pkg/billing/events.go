package billing

import (
	"time"

	"github.com/google/uuid"
)

// Stripe event types handled by the adapter.
const (
	TypeCheckoutCompleted   = "checkout.session.completed"
	TypeSubscriptionCreated = "customer.subscription.created"
	TypeSubscriptionUpdated = "customer.subscription.updated"
	TypeSubscriptionDeleted = "customer.subscription.deleted"
	TypeInvoicePaid         = "invoice.paid"
	TypeInvoiceFailed       = "invoice.payment_failed"
)

// Event is one verified, decoded billing event. The concrete type is one of
// CheckoutCompleted, SubscriptionUpdated, SubscriptionDeleted, InvoicePaid,
// InvoiceFailed or Ignored.
type Event interface {
	Envelope() Meta
}

// Meta carries the envelope fields shared by every event.
type Meta struct {
	ID         string
	Type       string
	OccurredAt time.Time
}

func (m Meta) Envelope() Meta { return m }

type CheckoutCompleted struct {
	Meta
	SessionID      string
	UserID         uuid.UUID
	CustomerID     string
	CustomerEmail  string
	SubscriptionID string
	PriceID        string
}

// SubscriptionUpdated covers both creation and update of a provider subscription.
type SubscriptionUpdated struct {
	Meta
	SubscriptionID string
	CustomerID     string
	Status         string
	PriceID        string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	// UserID comes from subscription metadata and may be uuid.Nil.
	UserID uuid.UUID
}

type SubscriptionDeleted struct {
	Meta
	SubscriptionID string
}

type InvoicePaid struct {
	Meta
	SubscriptionID string
	PeriodEnd      time.Time
	CustomerEmail  string
}

type InvoiceFailed struct {
	Meta
	SubscriptionID string
	CustomerEmail  string
	AttemptCount   int64
}

// Ignored is any event the adapter does not act on.
type Ignored struct {
	Meta
	Reason string
}
