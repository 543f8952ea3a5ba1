package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/moodmoney/quota/pkg/logger"
	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/subscription"
)

// Adapter applies billing events to the subscription store. Applying the
// same event again leaves the store unchanged, so provider retries are safe.
type Adapter struct {
	store    subscription.Store
	prices   *PriceCatalog
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

func WithNotifier(n Notifier) AdapterOption {
	return func(a *Adapter) {
		if n != nil {
			a.notifier = n
		}
	}
}

func WithLogger(log *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		if log != nil {
			a.log = log
		}
	}
}

// WithClock sets the time used for checkout period bounds when the event
// carries no timestamp.
func WithClock(now func() time.Time) AdapterOption {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAdapter creates an Adapter. store and prices are required.
func NewAdapter(store subscription.Store, prices *PriceCatalog, opts ...AdapterOption) *Adapter {
	if store == nil {
		panic("billing: subscription store is required")
	}
	if prices == nil {
		panic("billing: price catalog is required")
	}

	a := &Adapter{
		store:    store,
		prices:   prices,
		notifier: noopNotifier{},
		log:      logger.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply records the effect of ev. Stale events and transitions the lifecycle
// rejects are skipped and return nil. Errors matching IsPermanent must not be
// retried; any other error is transient.
func (a *Adapter) Apply(ctx context.Context, ev Event) error {
	var err error
	switch e := ev.(type) {
	case CheckoutCompleted:
		err = a.applyCheckout(ctx, e)
	case SubscriptionUpdated:
		err = a.applySubscriptionUpdated(ctx, e)
	case SubscriptionDeleted:
		err = a.update(ctx, e.Meta, e.SubscriptionID, func(sub *subscription.Subscription) error {
			if err := a.transition(sub, e.Meta, subscription.EventSubscriptionDeleted, ""); err != nil {
				return err
			}
			sub.Tier = plans.TierFree
			return nil
		})
	case InvoicePaid:
		err = a.update(ctx, e.Meta, e.SubscriptionID, func(sub *subscription.Subscription) error {
			if err := a.transition(sub, e.Meta, subscription.EventInvoicePaid, ""); err != nil {
				return err
			}
			if e.PeriodEnd.After(sub.CurrentPeriodEnd) {
				sub.CurrentPeriodEnd = e.PeriodEnd
			}
			return nil
		})
	case InvoiceFailed:
		err = a.applyInvoiceFailed(ctx, e)
	case Ignored:
		a.log.InfoContext(ctx, "billing event ignored",
			logger.EventID(e.ID),
			logger.EventType(e.Type),
			slog.String("reason", e.Reason),
		)
		return nil
	case nil:
		return fmt.Errorf("%w: nil event", ErrMalformedPayload)
	default:
		return fmt.Errorf("%w: unsupported event %T", ErrMalformedPayload, ev)
	}

	meta := ev.Envelope()
	if errors.Is(err, subscription.ErrStaleEvent) || errors.Is(err, subscription.ErrInvalidTransition) {
		a.log.InfoContext(ctx, "billing event skipped",
			logger.EventID(meta.ID),
			logger.EventType(meta.Type),
			logger.Error(err),
		)
		return nil
	}
	return err
}

func (a *Adapter) applyCheckout(ctx context.Context, e CheckoutCompleted) error {
	tier, ok := a.prices.TierFor(e.PriceID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPrice, e.PriceID)
	}

	_, err := a.store.Upsert(ctx, e.UserID, func(sub *subscription.Subscription) error {
		if err := a.transition(sub, e.Meta, subscription.EventCheckoutCompleted, ""); err != nil {
			return err
		}
		// Provisional bounds; the subscription event that follows carries the real ones.
		if sub.ExternalSubscriptionID != e.SubscriptionID || sub.CurrentPeriodEnd.IsZero() {
			start := e.OccurredAt
			if start.IsZero() {
				start = a.now().UTC()
			}
			sub.CurrentPeriodStart = start
			sub.CurrentPeriodEnd = start.AddDate(0, 1, 0)
		}
		sub.Tier = tier
		sub.ExternalSubscriptionID = e.SubscriptionID
		if e.CustomerID != "" {
			sub.ExternalCustomerID = e.CustomerID
		}
		return nil
	})
	if err == nil {
		a.log.InfoContext(ctx, "subscription activated",
			logger.EventID(e.ID),
			logger.UserID(e.UserID),
			logger.Tier(tier),
		)
	}
	return err
}

func (a *Adapter) applySubscriptionUpdated(ctx context.Context, e SubscriptionUpdated) error {
	reported, err := MapStatus(e.Status)
	if err != nil {
		return err
	}

	mutate := func(sub *subscription.Subscription) error {
		if err := a.transition(sub, e.Meta, subscription.EventSubscriptionUpdated, reported); err != nil {
			return err
		}
		if tier, ok := a.prices.TierFor(e.PriceID); ok {
			sub.Tier = tier
		} else if e.PriceID != "" {
			a.log.WarnContext(ctx, "subscription price not mapped, keeping tier",
				logger.EventID(e.ID),
				slog.String("price_id", e.PriceID),
			)
		}
		if !e.PeriodStart.IsZero() {
			sub.CurrentPeriodStart = e.PeriodStart
		}
		if !e.PeriodEnd.IsZero() {
			sub.CurrentPeriodEnd = e.PeriodEnd
		}
		if e.CustomerID != "" {
			sub.ExternalCustomerID = e.CustomerID
		}
		if sub.Status == subscription.StatusCanceled {
			sub.Tier = plans.TierFree
		}
		sub.ExternalSubscriptionID = e.SubscriptionID
		return nil
	}

	_, err = a.store.Update(ctx, e.SubscriptionID, mutate)
	if !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return err
	}
	if e.UserID == uuid.Nil {
		// The checkout event that creates the row may still be in flight.
		return fmt.Errorf("subscription %s has no local row yet: %w", e.SubscriptionID, err)
	}

	// The user's row may already belong to another provider subscription;
	// only a new row or one without an external id is claimed.
	_, err = a.store.Upsert(ctx, e.UserID, func(sub *subscription.Subscription) error {
		if sub.ExternalSubscriptionID != "" && sub.ExternalSubscriptionID != e.SubscriptionID {
			return errForeignSubscription
		}
		return mutate(sub)
	})
	if errors.Is(err, errForeignSubscription) {
		a.log.WarnContext(ctx, "subscription event does not own the user's row, ignoring",
			logger.EventID(e.ID),
			logger.UserID(e.UserID),
			slog.String("subscription_id", e.SubscriptionID),
		)
		return nil
	}
	return err
}

func (a *Adapter) applyInvoiceFailed(ctx context.Context, e InvoiceFailed) error {
	sub, err := a.store.Update(ctx, e.SubscriptionID, func(sub *subscription.Subscription) error {
		return a.transition(sub, e.Meta, subscription.EventInvoiceFailed, "")
	})
	if errors.Is(err, subscription.ErrSubscriptionNotFound) {
		a.logUnknownSubscription(ctx, e.Meta, e.SubscriptionID)
		return nil
	}
	if err != nil {
		return err
	}

	if e.CustomerEmail == "" {
		return nil
	}
	failure := PaymentFailure{
		UserID:         sub.UserID,
		Email:          e.CustomerEmail,
		SubscriptionID: e.SubscriptionID,
		AttemptCount:   e.AttemptCount,
	}
	if err := a.notifier.NotifyPaymentFailed(ctx, failure); err != nil {
		a.log.WarnContext(ctx, "payment failure notice not sent",
			logger.EventID(e.ID),
			logger.UserID(sub.UserID),
			logger.Error(err),
		)
	}
	return nil
}

// update mutates the row owning subscriptionID. Events for subscriptions we
// never saw are acknowledged.
func (a *Adapter) update(ctx context.Context, meta Meta, subscriptionID string, fn subscription.MutateFunc) error {
	_, err := a.store.Update(ctx, subscriptionID, fn)
	if errors.Is(err, subscription.ErrSubscriptionNotFound) {
		a.logUnknownSubscription(ctx, meta, subscriptionID)
		return nil
	}
	return err
}

// transition applies the lifecycle rules and stamps the event time.
func (a *Adapter) transition(sub *subscription.Subscription, meta Meta, ev subscription.Event, reported subscription.Status) error {
	if sub.IsStale(meta.OccurredAt) {
		return fmt.Errorf("%w: %s at %s", subscription.ErrStaleEvent, meta.ID, meta.OccurredAt.Format(time.RFC3339))
	}

	status, err := subscription.Transition(sub.Status, ev, reported)
	if err != nil {
		return err
	}
	sub.Status = status
	if meta.OccurredAt.After(sub.LastEventAt) {
		sub.LastEventAt = meta.OccurredAt
	}
	return nil
}

func (a *Adapter) logUnknownSubscription(ctx context.Context, meta Meta, subscriptionID string) {
	a.log.WarnContext(ctx, "billing event for unknown subscription",
		logger.EventID(meta.ID),
		logger.EventType(meta.Type),
		slog.String("subscription_id", subscriptionID),
	)
}
