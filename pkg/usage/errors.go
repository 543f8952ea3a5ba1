package usage

import "errors"

var (
	ErrInvalidMonth    = errors.New("usage: invalid month key")
	ErrMissingUserID   = errors.New("usage: user id is required")
	ErrUnknownFeature  = errors.New("usage: unknown feature")
	ErrIncrementFailed = errors.New("usage: failed to increment counter")
	ErrCountFailed     = errors.New("usage: failed to read counter")
)
