package billing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Verify checks the Stripe-Signature header against secret and decodes the
// event envelope. Any failure is reported as ErrInvalidSignature.
func Verify(payload []byte, signature, secret string) (stripe.Event, error) {
	if strings.TrimSpace(secret) == "" {
		return stripe.Event{}, ErrWebhookNotConfigured
	}
	if strings.TrimSpace(signature) == "" {
		return stripe.Event{}, fmt.Errorf("%w: missing signature header", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return event, nil
}

// Parse turns a verified Stripe event into one of the typed variants.
// Handled types with missing required fields fail with ErrMalformedPayload.
func Parse(event stripe.Event) (Event, error) {
	meta := Meta{ID: event.ID, Type: string(event.Type)}
	if event.Created > 0 {
		meta.OccurredAt = time.Unix(event.Created, 0).UTC()
	}

	switch meta.Type {
	case TypeCheckoutCompleted, TypeSubscriptionCreated, TypeSubscriptionUpdated,
		TypeSubscriptionDeleted, TypeInvoicePaid, TypeInvoiceFailed:
	default:
		return Ignored{Meta: meta, Reason: "unhandled type"}, nil
	}

	if meta.ID == "" {
		return nil, fmt.Errorf("%w: event id is empty", ErrMalformedPayload)
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: %s has no data object", ErrMalformedPayload, meta.Type)
	}
	raw := event.Data.Raw

	switch meta.Type {
	case TypeCheckoutCompleted:
		return parseCheckout(meta, raw)
	case TypeSubscriptionCreated, TypeSubscriptionUpdated:
		return parseSubscriptionUpdated(meta, raw)
	case TypeSubscriptionDeleted:
		var obj subscriptionObject
		if err := decode(raw, &obj); err != nil {
			return nil, err
		}
		if obj.ID == "" {
			return nil, fmt.Errorf("%w: subscription id is empty", ErrMalformedPayload)
		}
		return SubscriptionDeleted{Meta: meta, SubscriptionID: obj.ID}, nil
	default:
		return parseInvoice(meta, raw)
	}
}

func parseCheckout(meta Meta, raw json.RawMessage) (Event, error) {
	var obj checkoutSessionObject
	if err := decode(raw, &obj); err != nil {
		return nil, err
	}
	if obj.Mode != "" && obj.Mode != "subscription" {
		return Ignored{Meta: meta, Reason: "checkout mode " + obj.Mode}, nil
	}

	userRef := obj.ClientReferenceID
	if userRef == "" {
		userRef = obj.Metadata["user_id"]
	}
	userID, err := uuid.Parse(userRef)
	if err != nil {
		return nil, fmt.Errorf("%w: checkout session %s has no valid user reference", ErrMalformedPayload, obj.ID)
	}
	if obj.Subscription.ID == "" {
		return nil, fmt.Errorf("%w: checkout session %s has no subscription", ErrMalformedPayload, obj.ID)
	}
	priceID := obj.Metadata["price_id"]
	if priceID == "" {
		return nil, fmt.Errorf("%w: checkout session %s has no price", ErrMalformedPayload, obj.ID)
	}

	email := obj.CustomerDetails.Email
	if email == "" {
		email = obj.CustomerEmail
	}

	return CheckoutCompleted{
		Meta:           meta,
		SessionID:      obj.ID,
		UserID:         userID,
		CustomerID:     obj.Customer.ID,
		CustomerEmail:  email,
		SubscriptionID: obj.Subscription.ID,
		PriceID:        priceID,
	}, nil
}

func parseSubscriptionUpdated(meta Meta, raw json.RawMessage) (Event, error) {
	var obj subscriptionObject
	if err := decode(raw, &obj); err != nil {
		return nil, err
	}
	if obj.ID == "" || obj.Status == "" {
		return nil, fmt.Errorf("%w: subscription id and status are required", ErrMalformedPayload)
	}

	ev := SubscriptionUpdated{
		Meta:           meta,
		SubscriptionID: obj.ID,
		CustomerID:     obj.Customer.ID,
		Status:         obj.Status,
		PeriodStart:    unixTime(obj.CurrentPeriodStart),
		PeriodEnd:      unixTime(obj.CurrentPeriodEnd),
	}
	// Newer API versions move the period onto each item.
	for _, item := range obj.Items.Data {
		if ev.PriceID == "" {
			ev.PriceID = strings.TrimSpace(item.Price.ID)
		}
		if ev.PeriodStart.IsZero() {
			ev.PeriodStart = unixTime(item.CurrentPeriodStart)
		}
		if ev.PeriodEnd.IsZero() {
			ev.PeriodEnd = unixTime(item.CurrentPeriodEnd)
		}
	}
	if id, err := uuid.Parse(obj.Metadata["user_id"]); err == nil {
		ev.UserID = id
	}
	return ev, nil
}

func parseInvoice(meta Meta, raw json.RawMessage) (Event, error) {
	var obj invoiceObject
	if err := decode(raw, &obj); err != nil {
		return nil, err
	}

	subID := obj.Subscription.ID
	if subID == "" {
		subID = obj.Parent.SubscriptionDetails.Subscription.ID
	}
	if subID == "" {
		return Ignored{Meta: meta, Reason: "invoice without subscription"}, nil
	}

	if meta.Type == TypeInvoiceFailed {
		return InvoiceFailed{
			Meta:           meta,
			SubscriptionID: subID,
			CustomerEmail:  obj.CustomerEmail,
			AttemptCount:   obj.AttemptCount,
		}, nil
	}

	periodEnd := time.Time{}
	for _, line := range obj.Lines.Data {
		if end := unixTime(line.Period.End); end.After(periodEnd) {
			periodEnd = end
		}
	}
	return InvoicePaid{
		Meta:           meta,
		SubscriptionID: subID,
		PeriodEnd:      periodEnd,
		CustomerEmail:  obj.CustomerEmail,
	}, nil
}

func decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return nil
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// expandable decodes a Stripe reference that is either an ID string or an
// expanded object with an "id" field.
type expandable struct {
	ID string
}

func (e *expandable) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &e.ID)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	e.ID = obj.ID
	return nil
}

type checkoutSessionObject struct {
	ID                string            `json:"id"`
	Mode              string            `json:"mode"`
	ClientReferenceID string            `json:"client_reference_id"`
	Customer          expandable        `json:"customer"`
	CustomerEmail     string            `json:"customer_email"`
	Subscription      expandable        `json:"subscription"`
	Metadata          map[string]string `json:"metadata"`
	CustomerDetails   struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

type subscriptionObject struct {
	ID                 string            `json:"id"`
	Customer           expandable        `json:"customer"`
	Status             string            `json:"status"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	Metadata           map[string]string `json:"metadata"`
	Items              struct {
		Data []struct {
			CurrentPeriodStart int64 `json:"current_period_start"`
			CurrentPeriodEnd   int64 `json:"current_period_end"`
			Price              struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

type invoiceObject struct {
	ID            string     `json:"id"`
	Subscription  expandable `json:"subscription"`
	CustomerEmail string     `json:"customer_email"`
	AttemptCount  int64      `json:"attempt_count"`
	Parent        struct {
		SubscriptionDetails struct {
			Subscription expandable `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
	Lines struct {
		Data []struct {
			Period struct {
				End int64 `json:"end"`
			} `json:"period"`
		} `json:"data"`
	} `json:"lines"`
}
