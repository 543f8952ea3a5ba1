package billing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/moodmoney/quota/pkg/logger"
	"github.com/moodmoney/quota/pkg/metrics"
	"github.com/moodmoney/quota/pkg/response"
)

const webhookBodyLimit = 1 << 20 // 1 MiB

// applier is the part of Adapter the webhook handler needs.
type applier interface {
	Apply(ctx context.Context, ev Event) error
}

type webhookReceived struct {
	Received bool `json:"received"`
}

// WebhookHandler verifies and applies Stripe webhook deliveries.
type WebhookHandler struct {
	secret  string
	adapter applier
	log     *slog.Logger
}

// NewWebhookHandler creates the HTTP handler for Stripe webhooks.
func NewWebhookHandler(secret string, adapter *Adapter, log *slog.Logger) *WebhookHandler {
	if adapter == nil {
		panic("billing: adapter is required")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &WebhookHandler{secret: secret, adapter: adapter, log: log}
}

// ServeHTTP answers 400 for a bad signature, 500 for transient failures so
// Stripe redelivers, and 200 for everything else including payloads that can
// never be applied.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	eventType := "unknown"
	status := http.StatusOK
	defer func() {
		metrics.WebhookRequests.WithLabelValues(eventType, strconv.Itoa(status)).Inc()
		metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		status = http.StatusMethodNotAllowed
		response.Error(w, response.ErrMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		status = http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
			response.Error(w, response.ErrPayloadTooLarge)
			return
		}
		response.Error(w, response.ErrBadRequest.WithMessage("failed to read request body"))
		return
	}

	stripeEvent, err := Verify(payload, r.Header.Get("Stripe-Signature"), h.secret)
	if errors.Is(err, ErrWebhookNotConfigured) {
		status = http.StatusServiceUnavailable
		h.log.ErrorContext(ctx, "stripe webhook secret not configured")
		response.Error(w, response.ErrServiceUnavailable.WithMessage("webhook not configured"))
		return
	}
	if err != nil {
		status = http.StatusBadRequest
		h.log.WarnContext(ctx, "stripe webhook rejected",
			slog.String("remote_addr", r.RemoteAddr),
			logger.Error(err),
		)
		response.Error(w, response.NewHTTPError(http.StatusBadRequest, "invalid_signature").WithMessage("invalid Stripe signature"))
		return
	}
	eventType = string(stripeEvent.Type)

	ev, err := Parse(stripeEvent)
	if err == nil {
		err = h.adapter.Apply(ctx, ev)
	}

	switch {
	case err == nil:
	case IsPermanent(err):
		h.log.WarnContext(ctx, "stripe webhook acknowledged without applying",
			logger.EventID(stripeEvent.ID),
			logger.EventType(eventType),
			logger.Error(err),
		)
	default:
		status = http.StatusInternalServerError
		h.log.ErrorContext(ctx, "stripe webhook processing failed",
			logger.EventID(stripeEvent.ID),
			logger.EventType(eventType),
			logger.Error(err),
		)
		response.Error(w, response.ErrInternalServerError.WithMessage("processing failed"))
		return
	}

	response.JSON(w, http.StatusOK, webhookReceived{Received: true})
}
