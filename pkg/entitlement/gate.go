package entitlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/moodmoney/quota/pkg/logger"
	"github.com/moodmoney/quota/pkg/metrics"
	"github.com/moodmoney/quota/pkg/plans"
)

// DefaultActionTimeout bounds gated actions when no timeout is configured.
const DefaultActionTimeout = 30 * time.Second

// Policy decides what the gate does when the entitlement check cannot reach
// its datastores.
type Policy int

const (
	// FailClosed denies with ErrDependencyUnavailable.
	FailClosed Policy = iota
	// FailOpen runs the action and records usage best-effort.
	FailOpen
)

func (p Policy) String() string {
	if p == FailOpen {
		return "fail_open"
	}
	return "fail_closed"
}

// DefaultPolicy fails closed for billable features and open for the rest.
func DefaultPolicy(f plans.Feature) Policy {
	if f.Billable() {
		return FailClosed
	}
	return FailOpen
}

// Action is the work guarded by the gate.
type Action func(ctx context.Context) error

// Outcome describes a completed gated run.
type Outcome struct {
	Decision Decision
	// Degraded is set when the check failed and the action ran under FailOpen.
	Degraded bool
	// Count is the counter value after recording; zero when nothing was recorded.
	Count int64
	// RecordErr holds a recording failure after a successful action.
	// The action's effects are kept.
	RecordErr error
}

// Recorded reports whether usage was counted.
func (o Outcome) Recorded() bool {
	return o.Count > 0 && o.RecordErr == nil
}

// Gate checks entitlement, runs an action and records usage, in that order.
type Gate struct {
	engine   *Engine
	recorder *Recorder
	timeout  time.Duration
	policies map[plans.Feature]Policy
	log      *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithActionTimeout bounds how long an action may run.
func WithActionTimeout(d time.Duration) GateOption {
	return func(g *Gate) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithPolicy overrides the failure policy for one feature.
func WithPolicy(f plans.Feature, p Policy) GateOption {
	return func(g *Gate) {
		g.policies[f] = p
	}
}

func WithGateLogger(log *slog.Logger) GateOption {
	return func(g *Gate) {
		if log != nil {
			g.log = log
		}
	}
}

// NewGate creates a Gate over engine and recorder.
func NewGate(engine *Engine, recorder *Recorder, opts ...GateOption) *Gate {
	if engine == nil || recorder == nil {
		panic("entitlement: engine and recorder are required")
	}

	g := &Gate{
		engine:   engine,
		recorder: recorder,
		timeout:  DefaultActionTimeout,
		policies: make(map[plans.Feature]Policy),
		log:      engine.log,
	}
	for _, f := range plans.Features() {
		g.policies[f] = DefaultPolicy(f)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policy returns the failure policy applied to f.
func (g *Gate) Policy(f plans.Feature) Policy {
	if p, ok := g.policies[f]; ok {
		return p
	}
	return FailClosed
}

// Run executes action only if the user is entitled to feature, then records
// one use. A denied check returns a *LimitError without calling action.
// A failed or timed out action is never recorded.
func (g *Gate) Run(ctx context.Context, userID uuid.UUID, feature plans.Feature, action Action) (Outcome, error) {
	var out Outcome

	decision, err := g.engine.Check(ctx, userID, feature)
	switch {
	case errors.Is(err, ErrDependencyUnavailable) && g.Policy(feature) == FailOpen:
		g.log.WarnContext(ctx, "entitlement check unavailable, failing open",
			logger.UserID(userID),
			logger.Feature(feature),
			logger.Error(err),
		)
		out.Degraded = true
		out.Decision = Decision{Allowed: true, Feature: feature, Tier: plans.TierFree, Remaining: plans.Unlimited}
	case err != nil:
		metrics.GatedActions.WithLabelValues(string(feature), "unavailable").Inc()
		return out, err
	default:
		out.Decision = decision
	}

	if !out.Decision.Allowed {
		metrics.GatedActions.WithLabelValues(string(feature), "denied").Inc()
		return out, out.Decision.LimitError()
	}

	start := time.Now()
	err = g.run(ctx, action)
	metrics.GatedActionDuration.WithLabelValues(string(feature)).Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "failed"
		if errors.Is(err, ErrActionTimeout) {
			outcome = "timeout"
		}
		metrics.GatedActions.WithLabelValues(string(feature), outcome).Inc()
		return out, err
	}

	// The action already happened; a cancelled request must not skip the record.
	count, err := g.recorder.RecordUsage(context.WithoutCancel(ctx), userID, feature)
	if err != nil {
		g.log.ErrorContext(ctx, "usage not recorded after successful action",
			logger.UserID(userID),
			logger.Feature(feature),
			logger.Error(err),
		)
		metrics.GatedActions.WithLabelValues(string(feature), "unrecorded").Inc()
		out.RecordErr = err
		return out, nil
	}

	out.Count = count
	metrics.GatedActions.WithLabelValues(string(feature), "completed").Inc()
	return out, nil
}

// run calls action with a deadline and stops waiting once it passes, even
// if the action ignores its context. A cancelled parent context is left to
// the action to observe.
func (g *Gate) run(ctx context.Context, action Action) error {
	actx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- action(actx)
	}()

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil && errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return errors.Join(ErrActionTimeout, err)
		}
		return err
	case <-timer.C:
		return ErrActionTimeout
	}
}
