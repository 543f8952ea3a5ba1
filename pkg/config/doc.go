// Package config loads service configuration from the environment.
//
// Struct fields are bound with caarlos0/env tags. LoadEnv reads .env files
// into the process environment first; variables already set win.
//
//	_ = config.LoadEnv()
//	cfg, err := config.Load[pg.Config]()
package config
