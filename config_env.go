package goAuthClient

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every variable read by [ConfigFromEnv].
const EnvPrefix = "DASHAUTH_"

// ConfigFromEnv loads configuration from DASHAUTH_* variables, e.g. DASHAUTH_GATEWAY_URL or
// DASHAUTH_LANDING_ADMIN. Unset variables keep their defaults. The result is validated.
func ConfigFromEnv() (Config, error) {
	return configFromEnvironment(nil)
}

func configFromEnvironment(environment map[string]string) (Config, error) {
	cfg := DefaultConfig()
	opts := env.Options{Prefix: EnvPrefix, Environment: environment}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
