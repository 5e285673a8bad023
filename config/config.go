// Package config loads engine settings from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries the engine settings an operator sets per deployment.
type Config struct {
	// ListingFee is the one-time fee charged on content registration,
	// in value units. Zero disables the fee.
	ListingFee uint64 `env:"PAYWALL_LISTING_FEE" envDefault:"0"`

	// Admin is the principal allowed to withdraw accumulated listing
	// fees. Empty leaves the accumulator without an admin.
	Admin string `env:"PAYWALL_ADMIN"`
}

// FromEnv loads configuration from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("paywall/config: parse env: %w", err)
	}
	return cfg, nil
}
