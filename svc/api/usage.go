package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moodmoney/quota/pkg/auth"
	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/response"
)

type capabilityGrant struct {
	Capability plans.Capability `json:"capability"`
	Granted    bool             `json:"granted"`
}

type usageRecorded struct {
	Feature plans.Feature `json:"feature"`
	Count   int64         `json:"count"`
}

func (a *api) getSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := a.Engine.Subscription(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	// A user without a subscription is on the free tier, not an error.
	response.JSON(w, http.StatusOK, sub)
}

func (a *api) getUsage(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Engine.Summary(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

func (a *api) getEntitlement(w http.ResponseWriter, r *http.Request) {
	feature, err := plans.ParseFeature(chi.URLParam(r, "feature"))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	decision, err := a.Engine.Check(r.Context(), auth.UserIDFromContext(r.Context()), feature)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, decision)
}

// recordUsage counts an action the client performed elsewhere.
func (a *api) recordUsage(w http.ResponseWriter, r *http.Request) {
	feature, err := plans.ParseFeature(chi.URLParam(r, "feature"))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	count, err := a.Recorder.RecordUsage(r.Context(), auth.UserIDFromContext(r.Context()), feature)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, usageRecorded{Feature: feature, Count: count})
}

// getCapability answers plan flags such as csv_export. It never fails on a
// store outage; the user just gets the free tier's flags.
func (a *api) getCapability(w http.ResponseWriter, r *http.Request) {
	c, err := plans.ParseCapability(chi.URLParam(r, "capability"))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	granted := a.Engine.HasCapability(r.Context(), auth.UserIDFromContext(r.Context()), c)
	response.JSON(w, http.StatusOK, capabilityGrant{Capability: c, Granted: granted})
}
