package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Hamza-spc/CountryCompare/errors"
)

// Defaults applied when a cache is created without explicit settings.
const (
	DefaultName            = "default"
	DefaultTTL             = time.Hour
	DefaultMaxSize         = 1000
	DefaultCleanupInterval = 5 * time.Minute
)

// Config configures a Manager: the default cache, the sweep interval shared by
// all caches and any named caches created up front.
type Config struct {
	// DefaultTTL applies to Set and to lazily created caches. Zero means never expire.
	DefaultTTL time.Duration `json:"default_ttl"`

	// MaxSize bounds each lazily created cache. Zero or less means unbounded.
	MaxSize int `json:"max_size"`

	// CleanupInterval is how often the background sweep removes expired entries.
	CleanupInterval time.Duration `json:"cleanup_interval"`

	// Caches lists named caches created when the manager is built.
	Caches map[string]NamedConfig `json:"caches,omitempty"`
}

// NamedConfig sizes one named cache.
type NamedConfig struct {
	TTL     time.Duration `json:"ttl"`
	MaxSize int           `json:"max_size"`
}

// DefaultConfig returns a one hour TTL, 1000 entries and a five minute sweep.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:      DefaultTTL,
		MaxSize:         DefaultMaxSize,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.DefaultTTL < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
			fmt.Sprintf("default_ttl must not be negative, got %v", c.DefaultTTL))
	}
	if c.CleanupInterval <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
			fmt.Sprintf("cleanup_interval must be positive, got %v", c.CleanupInterval))
	}
	for name, nc := range c.Caches {
		if name == "" || name == DefaultName {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
				fmt.Sprintf("named cache %q is reserved", name))
		}
		if nc.TTL < 0 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
				fmt.Sprintf("ttl of cache %s must not be negative, got %v", name, nc.TTL))
		}
	}
	return nil
}

// UnmarshalJSON accepts duration strings ("1h", "5m") as well as integer nanoseconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config

	aux := &struct {
		DefaultTTL      json.RawMessage `json:"default_ttl,omitempty"`
		CleanupInterval json.RawMessage `json:"cleanup_interval,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(aux.DefaultTTL) > 0 {
		ttl, err := ParseDurationField(aux.DefaultTTL, "default_ttl")
		if err != nil {
			return err
		}
		c.DefaultTTL = ttl
	}

	if len(aux.CleanupInterval) > 0 {
		interval, err := ParseDurationField(aux.CleanupInterval, "cleanup_interval")
		if err != nil {
			return err
		}
		c.CleanupInterval = interval
	}

	return nil
}

// UnmarshalJSON accepts a duration string or integer nanoseconds for ttl.
func (n *NamedConfig) UnmarshalJSON(data []byte) error {
	type Alias NamedConfig

	aux := &struct {
		TTL json.RawMessage `json:"ttl,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(n),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(aux.TTL) > 0 {
		ttl, err := ParseDurationField(aux.TTL, "ttl")
		if err != nil {
			return err
		}
		n.TTL = ttl
	}
	return nil
}

// ParseDurationField parses a JSON duration field that can be either:
// - A string (duration like "1h", "5m", "30s")
// - An integer (nanoseconds)
func ParseDurationField(data json.RawMessage, fieldName string) (time.Duration, error) {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		duration, err := time.ParseDuration(str)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string for %s: %w", fieldName, err)
		}
		return duration, nil
	}

	var nsec int64
	if err := json.Unmarshal(data, &nsec); err != nil {
		return 0, fmt.Errorf("field %s must be either a duration string (e.g., '1h') or integer nanoseconds", fieldName)
	}
	return time.Duration(nsec), nil
}
