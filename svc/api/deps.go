package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/moodmoney/quota/pkg/auth"
	"github.com/moodmoney/quota/pkg/entitlement"
	"github.com/moodmoney/quota/pkg/file"
	"github.com/moodmoney/quota/pkg/httpserver"
	"github.com/moodmoney/quota/pkg/ledger"
	"github.com/moodmoney/quota/pkg/openai"
	"github.com/moodmoney/quota/pkg/plans"
)

// ChatCompleter answers finance questions.
type ChatCompleter interface {
	Chat(ctx context.Context, req openai.ChatRequest) (*openai.ChatResponse, error)
}

// ReceiptParser extracts a receipt from an image.
type ReceiptParser interface {
	ParseReceipt(ctx context.Context, contentType string, image []byte) (*openai.Receipt, error)
}

// Checkout creates Stripe hosted pages.
type Checkout interface {
	CheckoutURL(ctx context.Context, userID uuid.UUID, email string, tier plans.Tier) (string, error)
	PortalURL(ctx context.Context, userID uuid.UUID) (string, error)
}

// Deps are the services the router is built from. Chat, Receipts, Files and
// Checkout may be nil; their routes then answer 503.
type Deps struct {
	Engine   *entitlement.Engine
	Recorder *entitlement.Recorder
	Gate     *entitlement.Gate
	Verifier *auth.Verifier
	Ledger   ledger.Store

	Files    file.Storage
	Chat     ChatCompleter
	Receipts ReceiptParser
	Checkout Checkout

	// Webhook handles POST /webhooks/stripe.
	Webhook http.Handler
	// Ready lists the readiness probes.
	Ready []httpserver.Check

	Log *slog.Logger
	// RequestTimeout bounds non-gated handlers. Zero means 15s.
	RequestTimeout time.Duration
}
