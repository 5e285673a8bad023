package extension

// Config holds the Paywall extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.paywall" or "paywall" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// ListingFee is the one-time fee charged per content registration,
	// in value units. Zero disables the fee.
	ListingFee uint64 `json:"listing_fee" mapstructure:"listing_fee" yaml:"listing_fee"`

	// Admin is the principal allowed to withdraw accumulated listing fees.
	Admin string `json:"admin" mapstructure:"admin" yaml:"admin"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}
