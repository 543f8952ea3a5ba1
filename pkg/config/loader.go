package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadEnv loads the given .env files, or ./.env when none are given.
// A missing default file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		err := godotenv.Load()
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Join(ErrLoadingEnv, err)
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnv, err)
	}
	return nil
}

type options struct {
	env env.Options
}

// Option configures Load.
type Option func(*options)

// WithPrefix requires every variable to carry prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.env.Prefix = prefix }
}

// WithEnvironment parses vars instead of the process environment.
func WithEnvironment(vars map[string]string) Option {
	return func(o *options) { o.env.Environment = vars }
}

// Load parses the environment into a new T.
func Load[T any](opts ...Option) (T, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.env.Environment == nil {
		o.env.Environment = env.ToMap(os.Environ())
	}

	v, err := env.ParseAsWithOptions[T](o.env)
	if err != nil {
		var zero T
		return zero, errors.Join(ErrParsingConfig, err)
	}
	return v, nil
}

// MustLoad is Load that panics on failure.
func MustLoad[T any](opts ...Option) T {
	v, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return v
}
