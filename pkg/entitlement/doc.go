// Package entitlement decides whether a user may use a metered feature and
// records the use afterwards.
//
// Engine reads the user's effective tier and this month's counter and
// compares them with the plan catalog. Recorder increments the counter.
// Gate combines both around an action:
//
//	out, err := gate.Run(ctx, userID, plans.FeatureReceipt, func(ctx context.Context) error {
//		parsed, err = scanner.Parse(ctx, image)
//		return err
//	})
//
// The action runs only when the check allows it and usage is recorded only
// when the action succeeds. Billable features fail closed when a datastore
// is unreachable; transaction logging fails open.
package entitlement
