package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/moodmoney/quota/pkg/auth"
	"github.com/moodmoney/quota/pkg/httpserver"
	"github.com/moodmoney/quota/pkg/logger"
	"github.com/moodmoney/quota/pkg/metrics"
	"github.com/moodmoney/quota/pkg/requestid"
	"github.com/moodmoney/quota/pkg/response"
)

const defaultRequestTimeout = 15 * time.Second

type api struct {
	Deps
	log *slog.Logger
}

// NewRouter builds the HTTP handler. It panics when a required dependency
// is missing.
func NewRouter(deps Deps) http.Handler {
	if deps.Engine == nil || deps.Recorder == nil || deps.Gate == nil {
		panic("api: entitlement engine, recorder and gate are required")
	}
	if deps.Verifier == nil {
		panic("api: token verifier is required")
	}
	if deps.Ledger == nil {
		panic("api: ledger store is required")
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = defaultRequestTimeout
	}

	log := deps.Log
	if log == nil {
		log = logger.Discard()
	}
	a := &api{Deps: deps, log: log.With(logger.Component("api"))}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(observe(a.log))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, response.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, response.ErrMethodNotAllowed)
	})

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(a.log, deps.Ready...))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if deps.Webhook != nil {
		r.Method(http.MethodPost, "/webhooks/stripe", deps.Webhook)
	} else {
		r.Post("/webhooks/stripe", unavailableHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.Middleware(deps.Verifier))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(deps.RequestTimeout))

			r.Get("/subscription", a.getSubscription)
			r.Get("/usage", a.getUsage)
			r.Get("/entitlements/{feature}", a.getEntitlement)
			r.Get("/capabilities/{capability}", a.getCapability)
			r.Post("/usage/{feature}", a.recordUsage)
			r.Get("/transactions", a.listTransactions)
			r.Post("/billing/checkout", a.createCheckout)
			r.Post("/billing/portal", a.createPortal)
		})

		// Gated routes are bounded by the gate's action timeout.
		r.Post("/transactions", a.createTransaction)
		r.Post("/receipts", a.scanReceipt)
		r.Post("/ai/chat", a.chat)
	})

	return r
}

func unavailableHandler(w http.ResponseWriter, _ *http.Request) {
	response.Error(w, errNotEnabled)
}
