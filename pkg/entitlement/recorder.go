package entitlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/moodmoney/quota/pkg/logger"
	"github.com/moodmoney/quota/pkg/metrics"
	"github.com/moodmoney/quota/pkg/plans"
)

// Recorder increments usage counters after an action has happened.
type Recorder struct {
	engine *Engine
	strict bool
	log    *slog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithStrictLimits makes the stored counter stop at the tier limit. A record
// that would pass the limit returns a *LimitError instead of incrementing.
func WithStrictLimits() RecorderOption {
	return func(r *Recorder) {
		r.strict = true
	}
}

func WithRecorderLogger(log *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRecorder creates a Recorder that shares the engine's stores and clock.
func NewRecorder(engine *Engine, opts ...RecorderOption) *Recorder {
	if engine == nil {
		panic("entitlement: engine is required")
	}

	r := &Recorder{engine: engine, log: engine.log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordUsage adds one to the user's counter for feature in the current
// month and returns the new count.
func (r *Recorder) RecordUsage(ctx context.Context, userID uuid.UUID, feature plans.Feature) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrUnauthenticated
	}
	if !feature.Valid() {
		return 0, fmt.Errorf("%w: %q", plans.ErrUnknownFeature, feature)
	}

	month := r.engine.Month()

	if !r.strict {
		count, err := r.engine.usage.Increment(ctx, userID, feature, month)
		if err != nil {
			metrics.UsageRecords.WithLabelValues(string(feature), "failed").Inc()
			return 0, unavailable(err)
		}
		metrics.UsageRecords.WithLabelValues(string(feature), "recorded").Inc()
		return count, nil
	}

	tier, err := r.engine.tier(ctx, userID)
	if err != nil {
		metrics.UsageRecords.WithLabelValues(string(feature), "failed").Inc()
		return 0, err
	}

	limit := plans.LimitsFor(tier).For(feature)
	if plans.IsUnlimited(limit) {
		count, err := r.engine.usage.Increment(ctx, userID, feature, month)
		if err != nil {
			metrics.UsageRecords.WithLabelValues(string(feature), "failed").Inc()
			return 0, unavailable(err)
		}
		metrics.UsageRecords.WithLabelValues(string(feature), "recorded").Inc()
		return count, nil
	}

	count, ok, err := r.engine.usage.IncrementBelow(ctx, userID, feature, month, limit)
	if err != nil {
		metrics.UsageRecords.WithLabelValues(string(feature), "failed").Inc()
		return 0, unavailable(err)
	}
	if !ok {
		metrics.UsageRecords.WithLabelValues(string(feature), "rejected").Inc()
		r.log.WarnContext(ctx, "usage record rejected at limit",
			logger.UserID(userID),
			logger.Feature(feature),
			logger.Tier(tier),
			slog.Int64("limit", limit),
		)
		return count, &LimitError{Feature: feature, Tier: tier, Limit: limit, Used: count}
	}

	metrics.UsageRecords.WithLabelValues(string(feature), "recorded").Inc()
	return count, nil
}
