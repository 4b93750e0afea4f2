// Package config holds shared helpers for command configuration: environment
// defaults and fatal exits.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by ParseEnv.
const EnvPrefix = "DNAFORGE_"

// ParseEnv loads configuration from DNAFORGE_-prefixed environment
// variables into target, whose env tags omit the prefix.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
