package plans

import "errors"

var (
	ErrUnknownTier    = errors.New("unknown subscription tier")
	ErrUnknownFeature = errors.New("unknown metered feature")

	ErrUnknownCapability = errors.New("unknown plan capability")
)
