package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/moodmoney/quota/pkg/logger"
	"github.com/moodmoney/quota/pkg/metrics"
	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/subscription"
	"github.com/moodmoney/quota/pkg/usage"
)

// Engine answers whether a user may use a feature right now.
// It only reads; recording usage is the Recorder's job.
type Engine struct {
	subs  subscription.Store
	usage usage.Store
	now   func() time.Time
	log   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used to pick the current month.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates an Engine. Both stores are required.
func NewEngine(subs subscription.Store, counters usage.Store, opts ...Option) *Engine {
	if subs == nil {
		panic("entitlement: subscription store is required")
	}
	if counters == nil {
		panic("entitlement: usage store is required")
	}

	e := &Engine{
		subs:  subs,
		usage: counters,
		now:   time.Now,
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Month returns the current usage month.
func (e *Engine) Month() usage.Month {
	return usage.MonthOf(e.now())
}

// Check evaluates the user's entitlement for feature in the current month.
func (e *Engine) Check(ctx context.Context, userID uuid.UUID, feature plans.Feature) (Decision, error) {
	if userID == uuid.Nil {
		return Decision{}, ErrUnauthenticated
	}
	if !feature.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", plans.ErrUnknownFeature, feature)
	}

	tier, err := e.tier(ctx, userID)
	if err != nil {
		metrics.EntitlementDecisions.WithLabelValues(string(feature), "", "unavailable").Inc()
		return Decision{}, err
	}

	used, err := e.usage.Count(ctx, userID, feature, e.Month())
	if err != nil {
		metrics.EntitlementDecisions.WithLabelValues(string(feature), string(tier), "unavailable").Inc()
		return Decision{}, unavailable(err)
	}

	d := decide(tier, feature, used)
	result := "allowed"
	if !d.Allowed {
		result = "denied"
	}
	metrics.EntitlementDecisions.WithLabelValues(string(feature), string(tier), result).Inc()
	return d, nil
}

// Summary reports usage, limits and remaining quota for every feature.
func (e *Engine) Summary(ctx context.Context, userID uuid.UUID) (Summary, error) {
	if userID == uuid.Nil {
		return Summary{}, ErrUnauthenticated
	}

	month := e.Month()
	features := plans.Features()
	counts := make([]int64, len(features))

	var tier plans.Tier
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tier, err = e.tier(gctx, userID)
		return err
	})
	for i, f := range features {
		g.Go(func() error {
			n, err := e.usage.Count(gctx, userID, f, month)
			if err != nil {
				return unavailable(err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	s := Summary{
		Tier:      tier,
		Month:     month,
		Usage:     make(map[plans.Feature]int64, len(features)),
		Limits:    plans.LimitsFor(tier),
		Remaining: make(map[plans.Feature]int64, len(features)),
	}
	for i, f := range features {
		d := decide(tier, f, counts[i])
		s.Usage[f] = d.Used
		s.Remaining[f] = d.Remaining
	}
	return s, nil
}

// Subscription returns the user's subscription row, or nil when none exists.
func (e *Engine) Subscription(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	sub, err := e.subs.Get(ctx, userID)
	switch {
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		return nil, nil
	case err != nil:
		return nil, unavailable(err)
	}
	return sub, nil
}

// Tier returns the user's effective tier.
func (e *Engine) Tier(ctx context.Context, userID uuid.UUID) (plans.Tier, error) {
	if userID == uuid.Nil {
		return "", ErrUnauthenticated
	}
	return e.tier(ctx, userID)
}

// HasCapability reports whether the user's tier grants c. When the
// subscription cannot be read it answers with the free tier's capabilities.
func (e *Engine) HasCapability(ctx context.Context, userID uuid.UUID, c plans.Capability) bool {
	tier, err := e.tier(ctx, userID)
	if err != nil {
		e.log.WarnContext(ctx, "capability check degraded to free tier",
			logger.UserID(userID),
			slog.String("capability", string(c)),
			logger.Error(err),
		)
		tier = plans.TierFree
	}
	return plans.LimitsFor(tier).Has(c)
}

func (e *Engine) tier(ctx context.Context, userID uuid.UUID) (plans.Tier, error) {
	sub, err := e.subs.Get(ctx, userID)
	switch {
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		return plans.TierFree, nil
	case err != nil:
		return "", unavailable(err)
	}
	return sub.EffectiveTier(), nil
}
