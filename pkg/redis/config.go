package redis

import "time"

// Config holds the settings of the optional Redis usage counter backend,
// enabled with QUOTA_COUNTERS=redis.
type Config struct {
	// ConnectionURL looks like "redis://:password@localhost:6379/0".
	ConnectionURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	// KeyPrefix namespaces counter keys: <prefix>:<user>:<feature>:<month>.
	KeyPrefix string `env:"REDIS_USAGE_KEY_PREFIX" envDefault:"usage"`

	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}
