package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/moodmoney/quota/pkg/billing"
	"github.com/moodmoney/quota/pkg/entitlement"
	"github.com/moodmoney/quota/pkg/file"
	"github.com/moodmoney/quota/pkg/ledger"
	"github.com/moodmoney/quota/pkg/logger"
	"github.com/moodmoney/quota/pkg/openai"
	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/response"
)

var (
	errLimitReached   = response.NewHTTPError(http.StatusForbidden, "limit_reached")
	errUnavailable    = response.NewHTTPError(http.StatusServiceUnavailable, "dependency_unavailable")
	errUpstream       = response.NewHTTPError(http.StatusBadGateway, "upstream_unavailable")
	errTimeout        = response.NewHTTPError(http.StatusGatewayTimeout, "action_timeout")
	errNotEnabled     = response.NewHTTPError(http.StatusServiceUnavailable, "feature_not_configured")
	errUnknownFeature = response.NewHTTPError(http.StatusNotFound, "unknown_feature")
	errUnknownCap     = response.NewHTTPError(http.StatusNotFound, "unknown_capability")
)

// limitDetails is the body clients use to render an upgrade prompt.
type limitDetails struct {
	Feature         plans.Feature `json:"feature"`
	Tier            plans.Tier    `json:"tier"`
	Limit           int64         `json:"limit"`
	Used            int64         `json:"used"`
	UpgradeRequired bool          `json:"upgradeRequired"`
}

// toHTTPError maps domain errors onto API errors. Unknown errors map to 500.
func toHTTPError(err error) error {
	var limitErr *entitlement.LimitError
	var httpErr response.HTTPError
	var valErr response.ValidationError

	switch {
	case errors.As(err, &httpErr), errors.As(err, &valErr):
		return err
	case errors.As(err, &limitErr):
		return errLimitReached.
			WithMessage(limitErr.Error()).
			WithDetails(limitDetails{
				Feature:         limitErr.Feature,
				Tier:            limitErr.Tier,
				Limit:           limitErr.Limit,
				Used:            limitErr.Used,
				UpgradeRequired: true,
			})
	case errors.Is(err, entitlement.ErrUnauthenticated):
		return response.ErrUnauthorized
	case errors.Is(err, entitlement.ErrDependencyUnavailable):
		return errUnavailable.WithMessage("quota service temporarily unavailable")
	case errors.Is(err, entitlement.ErrActionTimeout):
		return errTimeout.WithMessage("the action took too long")
	case errors.Is(err, plans.ErrUnknownFeature):
		return errUnknownFeature.WithMessage("unknown feature")
	case errors.Is(err, plans.ErrUnknownCapability):
		return errUnknownCap.WithMessage("unknown capability")
	case errors.Is(err, plans.ErrUnknownTier), errors.Is(err, billing.ErrUnknownTier):
		return response.ErrUnprocessable.WithMessage("unknown or unpurchasable tier")
	case errors.Is(err, billing.ErrNoCustomer):
		return response.ErrConflict.WithMessage("no billing account for this user")
	case errors.Is(err, ledger.ErrInvalidTransaction):
		return response.ErrUnprocessable.WithMessage(err.Error())
	case errors.Is(err, file.ErrFileTooLarge):
		return response.ErrPayloadTooLarge
	case errors.Is(err, file.ErrUnsupportedType), errors.Is(err, file.ErrEmptyFile):
		return response.ErrUnsupportedMedia.WithMessage("upload a JPEG, PNG, WebP or GIF image")
	case errors.Is(err, openai.ErrUnreadableImage):
		return response.NewHTTPError(http.StatusUnprocessableEntity, "receipt_unreadable").
			WithMessage("the image could not be read as a receipt")
	case errors.Is(err, openai.ErrUpstream),
		errors.Is(err, openai.ErrRejected),
		errors.Is(err, openai.ErrNoChoices),
		errors.Is(err, billing.ErrProviderUnavailable),
		errors.Is(err, file.ErrServiceUnavailable),
		errors.Is(err, file.ErrOperationTimeout):
		return errUpstream
	case errors.Is(err, ledger.ErrInsertFailed),
		errors.Is(err, ledger.ErrListFailed),
		errors.Is(err, billing.ErrStoreUnavailable):
		return errUnavailable.WithMessage("storage temporarily unavailable")
	}
	return err
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	mapped := toHTTPError(err)
	status, _ := response.ToDetail(mapped)
	if status >= http.StatusInternalServerError {
		a.log.ErrorContext(r.Context(), "request failed",
			slog.String("route", r.URL.Path),
			slog.Int("status", status),
			logger.Error(err),
		)
	}
	response.Error(w, mapped)
}
