package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/subscription"
)

// CheckoutRequest describes a hosted checkout for one subscription price.
type CheckoutRequest struct {
	UserID     uuid.UUID
	Email      string
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// Provider creates hosted Stripe pages.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

type stripeProvider struct{}

// NewStripeProvider configures the Stripe client with secretKey.
func NewStripeProvider(secretKey string) Provider {
	stripe.Key = secretKey
	return stripeProvider{}
}

func (stripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(req.UserID.String()),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": req.UserID.String()},
		},
	}
	params.Context = ctx
	params.AddMetadata("user_id", req.UserID.String())
	params.AddMetadata("price_id", req.PriceID)
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	} else if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", errors.Join(ErrProviderUnavailable, err)
	}
	return sess.URL, nil
}

func (stripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := portalsession.New(params)
	if err != nil {
		return "", errors.Join(ErrProviderUnavailable, err)
	}
	return sess.URL, nil
}

// Checkout starts purchases and opens the billing portal for users.
type Checkout struct {
	provider Provider
	prices   *PriceCatalog
	store    subscription.Store
	cfg      Config
}

// NewCheckout creates the checkout service.
func NewCheckout(provider Provider, prices *PriceCatalog, store subscription.Store, cfg Config) *Checkout {
	if provider == nil || prices == nil || store == nil {
		panic("billing: provider, prices and store are required")
	}
	return &Checkout{provider: provider, prices: prices, store: store, cfg: cfg}
}

// CheckoutURL returns a hosted checkout page selling tier to the user.
// An existing Stripe customer is reused so the portal shows one history.
func (c *Checkout) CheckoutURL(ctx context.Context, userID uuid.UUID, email string, tier plans.Tier) (string, error) {
	priceID, ok := c.prices.PriceFor(tier)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}

	req := CheckoutRequest{
		UserID:     userID,
		Email:      email,
		PriceID:    priceID,
		SuccessURL: c.cfg.SuccessURL,
		CancelURL:  c.cfg.CancelURL,
	}
	sub, err := c.store.Get(ctx, userID)
	switch {
	case err == nil:
		req.CustomerID = sub.ExternalCustomerID
	case !errors.Is(err, subscription.ErrSubscriptionNotFound):
		return "", errors.Join(ErrStoreUnavailable, err)
	}

	return c.provider.CreateCheckoutSession(ctx, req)
}

// PortalURL returns a billing portal page for the user's Stripe customer.
func (c *Checkout) PortalURL(ctx context.Context, userID uuid.UUID) (string, error) {
	sub, err := c.store.Get(ctx, userID)
	if errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return "", ErrNoCustomer
	}
	if err != nil {
		return "", errors.Join(ErrStoreUnavailable, err)
	}
	if sub.ExternalCustomerID == "" {
		return "", ErrNoCustomer
	}
	return c.provider.CreatePortalSession(ctx, sub.ExternalCustomerID, c.cfg.PortalReturnURL)
}
