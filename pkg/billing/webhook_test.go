package billing_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodmoney/quota/pkg/billing"
	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/subscription"
)

// failingStore simulates an unreachable database.
type failingStore struct{}

func (failingStore) Get(context.Context, uuid.UUID) (*subscription.Subscription, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Upsert(context.Context, uuid.UUID, subscription.MutateFunc) (*subscription.Subscription, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Update(context.Context, string, subscription.MutateFunc) (*subscription.Subscription, error) {
	return nil, errors.New("connection refused")
}

func newHandler(store subscription.Store) *billing.WebhookHandler {
	return billing.NewWebhookHandler(testSecret, billing.NewAdapter(store, testPrices()), nil)
}

func TestWebhookHandler(t *testing.T) {
	t.Parallel()

	t.Run("checkout delivered twice creates one row", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		handler := newHandler(store)
		userID := uuid.New()
		payload := eventJSON(t, "evt_checkout", billing.TypeCheckoutCompleted, base, checkoutObject(userID.String(), "sub_1", pricePro))

		for range 2 {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, signedRequest(t, testSecret, payload))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var body struct {
				Data struct {
					Received bool `json:"received"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Data.Received)
		}

		sub, err := store.Get(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, plans.TierPro, sub.Tier)
		assert.Equal(t, subscription.StatusActive, sub.Status)
	})

	t.Run("bad signature is rejected without mutation", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		handler := newHandler(store)
		userID := uuid.New()
		payload := eventJSON(t, "evt_forged", billing.TypeCheckoutCompleted, base, checkoutObject(userID.String(), "sub_1", pricePremium))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, signedRequest(t, "whsec_wrong", payload))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_signature")

		_, err := store.Get(context.Background(), userID)
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})

	t.Run("missing signature is rejected", func(t *testing.T) {
		t.Parallel()
		handler := newHandler(subscription.NewMemoryStore())

		req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("expired signature is rejected", func(t *testing.T) {
		t.Parallel()
		handler := newHandler(subscription.NewMemoryStore())
		payload := eventJSON(t, "evt_old", "customer.created", base, map[string]any{"id": "cus_1"})

		// Signed well outside the five minute tolerance.
		req := signedRequestAt(t, testSecret, payload, time.Now().Add(-time.Hour))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed payload is acknowledged", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		handler := newHandler(store)
		payload := eventJSON(t, "evt_bad", billing.TypeCheckoutCompleted, base, map[string]any{"id": "cs_1", "mode": "subscription"})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, signedRequest(t, testSecret, payload))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unhandled type is acknowledged", func(t *testing.T) {
		t.Parallel()
		handler := newHandler(subscription.NewMemoryStore())
		payload := eventJSON(t, "evt_cus", "customer.created", base, map[string]any{"id": "cus_1"})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, signedRequest(t, testSecret, payload))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("store failure asks for redelivery", func(t *testing.T) {
		t.Parallel()
		handler := newHandler(failingStore{})
		payload := eventJSON(t, "evt_checkout", billing.TypeCheckoutCompleted, base, checkoutObject(uuid.NewString(), "sub_1", pricePro))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, signedRequest(t, testSecret, payload))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		t.Parallel()
		handler := newHandler(subscription.NewMemoryStore())

		req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(strings.Repeat("x", 2<<20)))
		req.Header.Set("Stripe-Signature", "t=1,v1=abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("missing secret is unavailable", func(t *testing.T) {
		t.Parallel()
		handler := billing.NewWebhookHandler("", billing.NewAdapter(subscription.NewMemoryStore(), testPrices()), nil)
		payload := eventJSON(t, "evt_cus", "customer.created", base, map[string]any{"id": "cus_1"})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, signedRequest(t, testSecret, payload))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("only post is allowed", func(t *testing.T) {
		t.Parallel()
		handler := newHandler(subscription.NewMemoryStore())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhooks/stripe", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
