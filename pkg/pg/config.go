package pg

import "time"

// Config configures the pool shared by the subscription, usage and ledger
// stores. It is loaded only when QUOTA_STORE=postgres.
type Config struct {
	ConnectionString string `env:"PG_CONN_URL,required"`

	// Pool sizing. MinConns keeps warm connections for the hot check path.
	MaxConns          int32         `env:"PG_MAX_CONNS" envDefault:"10"`
	MinConns          int32         `env:"PG_MIN_CONNS" envDefault:"2"`
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`

	// StatementTimeout is set as the session statement_timeout so a stuck
	// counter or subscription query fails instead of holding the request.
	// Zero leaves the server default.
	StatementTimeout time.Duration `env:"PG_STATEMENT_TIMEOUT" envDefault:"5s"`

	// RetryInterval grows linearly with the attempt number.
	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"2s"`

	MigrationsTable string `env:"PG_MIGRATIONS_TABLE" envDefault:"quota_schema_migrations"`
	AutoMigrate     bool   `env:"PG_AUTO_MIGRATE" envDefault:"false"`
}
