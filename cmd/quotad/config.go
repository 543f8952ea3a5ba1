package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/moodmoney/quota/pkg/auth"
	"github.com/moodmoney/quota/pkg/billing"
	"github.com/moodmoney/quota/pkg/config"
	"github.com/moodmoney/quota/pkg/email"
	"github.com/moodmoney/quota/pkg/file"
	"github.com/moodmoney/quota/pkg/httpserver"
	"github.com/moodmoney/quota/pkg/logger"
	"github.com/moodmoney/quota/pkg/openai"
	"github.com/moodmoney/quota/pkg/pg"
	"github.com/moodmoney/quota/pkg/redis"
	"github.com/moodmoney/quota/pkg/requestid"
)

const (
	storePostgres = "postgres"
	storeMemory   = "memory"

	counterStore = "store"
	counterRedis = "redis"
)

// Config is the process configuration. Postgres settings are loaded
// separately because they are required only for the postgres store.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Store         string        `env:"QUOTA_STORE" envDefault:"postgres"`
	Counters      string        `env:"QUOTA_COUNTERS" envDefault:"store"`
	StrictLimits  bool          `env:"QUOTA_STRICT_LIMITS" envDefault:"false"`
	ActionTimeout time.Duration `env:"QUOTA_ACTION_TIMEOUT" envDefault:"30s"`

	HTTP    httpserver.Config
	Redis   redis.Config
	Auth    auth.Config
	Billing billing.Config
	OpenAI  openai.Config
	S3      file.S3Config
	Email   email.Config
}

func loadConfig() (Config, error) {
	cfg, err := config.Load[Config]()
	if err != nil {
		return cfg, err
	}
	switch cfg.Store {
	case storePostgres, storeMemory:
	default:
		return cfg, fmt.Errorf("QUOTA_STORE must be %q or %q, got %q", storePostgres, storeMemory, cfg.Store)
	}
	switch cfg.Counters {
	case counterStore, counterRedis:
	default:
		return cfg, fmt.Errorf("QUOTA_COUNTERS must be %q or %q, got %q", counterStore, counterRedis, cfg.Counters)
	}
	return cfg, nil
}

func loadPGConfig() (pg.Config, error) {
	return config.Load[pg.Config]()
}

func newLogger(cfg Config) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(cfg.Environment, "quotad"),
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithContextExtractors(requestid.LoggerExtractor(), auth.LoggerExtractor()),
	)
}
