package redis

import "errors"

var (
	ErrMissingURL        = errors.New("redis: REDIS_URL is required for redis usage counters")
	ErrInvalidURL        = errors.New("redis: invalid REDIS_URL")
	ErrNotReady          = errors.New("redis: server did not answer PING before the connect timeout")
	ErrHealthcheckFailed = errors.New("redis: counter store is unreachable")
)
