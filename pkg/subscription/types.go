package subscription

// Status represents the billing state of a subscription.
type Status string

const (
	StatusActive     Status = "active"
	StatusCanceled   Status = "canceled"
	StatusPastDue    Status = "past_due"
	StatusIncomplete Status = "incomplete"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCanceled, StatusPastDue, StatusIncomplete:
		return true
	default:
		return false
	}
}

// Event is a normalized billing event kind that drives status transitions.
type Event string

const (
	EventCheckoutCompleted   Event = "checkout_completed"
	EventSubscriptionUpdated Event = "subscription_updated"
	EventSubscriptionDeleted Event = "subscription_deleted"
	EventInvoicePaid         Event = "invoice_paid"
	EventInvoiceFailed       Event = "invoice_failed"
)
