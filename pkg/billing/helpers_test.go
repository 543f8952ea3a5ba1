package billing_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"

	"github.com/moodmoney/quota/pkg/billing"
	"github.com/moodmoney/quota/pkg/plans"
)

const (
	testSecret   = "whsec_test_secret"
	priceStarter = "price_starter"
	pricePro     = "price_pro"
	pricePremium = "price_premium"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func testPrices() *billing.PriceCatalog {
	return billing.NewPriceCatalog(map[plans.Tier]string{
		plans.TierStarter: priceStarter,
		plans.TierPro:     pricePro,
		plans.TierPremium: pricePremium,
	})
}

// eventJSON builds a Stripe event envelope around object.
func eventJSON(t *testing.T, id, typ string, created time.Time, object any) []byte {
	t.Helper()

	obj, err := json.Marshal(object)
	require.NoError(t, err)
	env := map[string]any{
		"id":      id,
		"object":  "event",
		"type":    typ,
		"created": created.Unix(),
		"data":    map[string]json.RawMessage{"object": obj},
	}
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return b
}

// stripeEvent decodes an envelope the same way webhook verification does.
func stripeEvent(t *testing.T, payload []byte) stripe.Event {
	t.Helper()

	var ev stripe.Event
	require.NoError(t, json.Unmarshal(payload, &ev))
	return ev
}

func parse(t *testing.T, id, typ string, created time.Time, object any) billing.Event {
	t.Helper()

	ev, err := billing.Parse(stripeEvent(t, eventJSON(t, id, typ, created, object)))
	require.NoError(t, err)
	return ev
}

func signedRequest(t *testing.T, secret string, payload []byte) *http.Request {
	t.Helper()
	return signedRequestAt(t, secret, payload, time.Now())
}

func signedRequestAt(t *testing.T, secret string, payload []byte, at time.Time) *http.Request {
	t.Helper()

	signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
		Scheme:    "v1",
	})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func checkoutObject(userID, subID, priceID string) map[string]any {
	return map[string]any{
		"id":                  "cs_test_1",
		"object":              "checkout.session",
		"mode":                "subscription",
		"client_reference_id": userID,
		"customer":            "cus_test_1",
		"subscription":        subID,
		"metadata":            map[string]string{"user_id": userID, "price_id": priceID},
		"customer_details":    map[string]string{"email": "user@example.com"},
	}
}

func subscriptionObject(subID, status, priceID string, start, end time.Time) map[string]any {
	return map[string]any{
		"id":                   subID,
		"object":               "subscription",
		"customer":             "cus_test_1",
		"status":               status,
		"current_period_start": start.Unix(),
		"current_period_end":   end.Unix(),
		"items": map[string]any{
			"data": []map[string]any{{"price": map[string]string{"id": priceID}}},
		},
	}
}

func invoiceObject(subID string, periodEnd time.Time) map[string]any {
	return map[string]any{
		"id":             "in_test_1",
		"object":         "invoice",
		"subscription":   subID,
		"customer_email": "user@example.com",
		"attempt_count":  1,
		"lines": map[string]any{
			"data": []map[string]any{{"period": map[string]int64{"end": periodEnd.Unix()}}},
		},
	}
}
