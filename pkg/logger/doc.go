// Package logger builds the service's *slog.Logger and provides attribute
// helpers so log keys stay consistent across packages.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "quotad"),
//		logger.WithContextExtractors(requestid.LogExtractor(), auth.LogExtractor()),
//	)
//	log.InfoContext(ctx, "usage recorded",
//		logger.Feature(plans.FeatureReceipt),
//		logger.Tier(plans.TierPro),
//	)
//
// Context extractors run on every record, so request and user ids attached
// to the request context show up without being passed explicitly.
package logger
