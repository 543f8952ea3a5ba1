package api

import (
	"net/http"

	"github.com/moodmoney/quota/pkg/auth"
	"github.com/moodmoney/quota/pkg/entitlement"
	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/response"
)

type checkoutRequest struct {
	Tier string `json:"tier" validate:"required,oneof=starter pro premium"`
}

type redirect struct {
	URL string `json:"url"`
}

func (a *api) createCheckout(w http.ResponseWriter, r *http.Request) {
	if a.Checkout == nil {
		unavailableHandler(w, r)
		return
	}

	var req checkoutRequest
	if err := bind(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	tier, err := plans.ParseTier(req.Tier)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		a.fail(w, r, entitlement.ErrUnauthenticated)
		return
	}
	url, err := a.Checkout.CheckoutURL(r.Context(), claims.UserID, claims.Email, tier)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, redirect{URL: url})
}

func (a *api) createPortal(w http.ResponseWriter, r *http.Request) {
	if a.Checkout == nil {
		unavailableHandler(w, r)
		return
	}

	url, err := a.Checkout.PortalURL(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, redirect{URL: url})
}
