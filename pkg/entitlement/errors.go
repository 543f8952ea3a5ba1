package entitlement

import (
	"errors"
	"fmt"

	"github.com/moodmoney/quota/pkg/plans"
)

var (
	ErrLimitReached          = errors.New("entitlement: monthly limit reached")
	ErrDependencyUnavailable = errors.New("entitlement: dependency unavailable")
	ErrUnauthenticated       = errors.New("entitlement: unauthenticated")
	ErrActionTimeout         = errors.New("entitlement: action timed out")
)

// LimitError reports a denied request. It matches ErrLimitReached with errors.Is.
type LimitError struct {
	Feature plans.Feature `json:"feature"`
	Tier    plans.Tier    `json:"tier"`
	Limit   int64         `json:"limit"`
	Used    int64         `json:"used"`
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit of %d reached on %s tier (used %d)", e.Feature, e.Limit, e.Tier, e.Used)
}

func (e *LimitError) Is(target error) bool {
	return target == ErrLimitReached
}

func unavailable(err error) error {
	return errors.Join(ErrDependencyUnavailable, err)
}
