package subscription

import "fmt"

// transitions lists, per event, the statuses the event may move a subscription out of.
// A nil set means every status is accepted.
var transitions = map[Event]map[Status]bool{
	EventCheckoutCompleted:   nil,
	EventSubscriptionUpdated: {StatusActive: true, StatusPastDue: true, StatusIncomplete: true},
	EventSubscriptionDeleted: nil,
	EventInvoicePaid:         {StatusActive: true, StatusPastDue: true, StatusIncomplete: true},
	EventInvoiceFailed:       {StatusActive: true, StatusPastDue: true, StatusIncomplete: true},
}

// Transition returns the status a subscription in status from reaches after ev.
// reported is the provider-supplied status and is only used by EventSubscriptionUpdated.
// A brand new row (empty from) accepts every event.
func Transition(from Status, ev Event, reported Status) (Status, error) {
	allowed, ok := transitions[ev]
	if !ok {
		return from, fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, ev)
	}
	if from != "" && allowed != nil && !allowed[from] {
		return from, fmt.Errorf("%w: %s on %s subscription", ErrInvalidTransition, ev, from)
	}

	switch ev {
	case EventCheckoutCompleted, EventInvoicePaid:
		return StatusActive, nil
	case EventSubscriptionDeleted:
		return StatusCanceled, nil
	case EventInvoiceFailed:
		return StatusPastDue, nil
	default:
		if !reported.Valid() {
			return from, fmt.Errorf("%w: unknown reported status %q", ErrInvalidTransition, reported)
		}
		return reported, nil
	}
}
