package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moodmoney/quota/pkg/auth"
	"github.com/moodmoney/quota/pkg/entitlement"
	"github.com/moodmoney/quota/pkg/ledger"
	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/response"
)

type createTransactionRequest struct {
	AmountCents int64      `json:"amountCents" validate:"required,ne=0"`
	Currency    string     `json:"currency" validate:"required,len=3,alpha"`
	Category    string     `json:"category" validate:"max=40"`
	Description string     `json:"description" validate:"max=500"`
	OccurredAt  *time.Time `json:"occurredAt"`
	ReceiptKey  string     `json:"receiptKey" validate:"max=300"`
}

// usageMeta reports what the gate recorded for the request.
func usageMeta(out entitlement.Outcome) map[string]any {
	return map[string]any{
		"usage": map[string]any{
			"feature":  out.Decision.Feature,
			"count":    out.Count,
			"recorded": out.Recorded(),
			"degraded": out.Degraded,
		},
	}
}

func (a *api) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := bind(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if req.ReceiptKey != "" && !strings.HasPrefix(req.ReceiptKey, "receipts/"+userID.String()+"/") {
		verr := response.ValidationError{}
		verr.Add("receiptKey", "does not belong to this user")
		a.fail(w, r, verr)
		return
	}

	tx := &ledger.Transaction{
		UserID:      userID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Category:    req.Category,
		Description: req.Description,
		ReceiptKey:  req.ReceiptKey,
	}
	if req.OccurredAt != nil {
		tx.OccurredAt = *req.OccurredAt
	}

	out, err := a.Gate.Run(r.Context(), userID, plans.FeatureTransaction, func(ctx context.Context) error {
		return a.Ledger.Insert(ctx, tx)
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSONWithMeta(w, http.StatusCreated, tx, usageMeta(out))
}

func (a *api) listTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			a.fail(w, r, response.ErrBadRequest.WithMessage("limit must be a positive integer"))
			return
		}
		limit = n
	}

	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		a.fail(w, r, entitlement.ErrUnauthenticated)
		return
	}

	txs, err := a.Ledger.List(r.Context(), userID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if txs == nil {
		txs = []ledger.Transaction{}
	}
	response.JSON(w, http.StatusOK, txs)
}
