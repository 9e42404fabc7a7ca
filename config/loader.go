package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Hamza-spc/CountryCompare/errors"
)

// DefaultEnvPrefix prefixes every environment override.
const DefaultEnvPrefix = "COUNTRYCOMPARE"

// File formats understood by the loader.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Loader reads configuration layers on top of Default, applies environment
// overrides and validates the result.
type Loader struct {
	layers     []string
	envPrefix  string
	validation bool
	getenv     func(string) string
	logger     *slog.Logger
}

// NewLoader creates a loader with validation enabled and the default env prefix.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  DefaultEnvPrefix,
		validation: true,
		getenv:     os.Getenv,
		logger:     slog.Default(),
	}
}

// SetEnvPrefix changes the environment variable prefix.
func (l *Loader) SetEnvPrefix(prefix string) {
	l.envPrefix = strings.TrimSuffix(prefix, "_")
}

// SetLogger sets the logger used for override notices.
func (l *Loader) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// AddLayer appends a file; later layers override earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables schema and range validation.
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads a single file. An empty path loads defaults plus environment.
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = nil
	if path != "" {
		l.layers = []string{path}
	}
	return l.Load()
}

// Load merges all layers over the defaults.
func (l *Loader) Load() (*Config, error) {
	base, err := toMap(Default())
	if err != nil {
		return nil, err
	}

	for _, path := range l.layers {
		raw, err := l.readLayer(path)
		if err != nil {
			return nil, errors.Wrap(err, "Loader", "Load", "load "+path)
		}
		base = deepMergeMaps(base, raw)
	}

	cfg, err := fromMap(base)
	if err != nil {
		return nil, err
	}
	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Parse decodes one document in the given format, merges it over the
// defaults and validates it. Environment overrides are not applied.
func (l *Loader) Parse(data []byte, format string) (*Config, error) {
	raw, err := l.decode(data, format)
	if err != nil {
		return nil, err
	}
	base, err := toMap(Default())
	if err != nil {
		return nil, err
	}
	cfg, err := fromMap(deepMergeMaps(base, raw))
	if err != nil {
		return nil, err
	}
	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (l *Loader) readLayer(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "readLayer", "read config file")
	}
	return l.decode(data, formatOf(path))
}

// decode turns a JSON or YAML document into a JSON-compatible map and checks
// it against the schema.
func (l *Loader) decode(data []byte, format string) (map[string]any, error) {
	var raw map[string]any

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "decode", "parse YAML")
		}
		// Re-encode so the schema sees exactly what the JSON decoder will.
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "decode", "convert YAML to JSON")
		}
		raw = nil
		fallthrough
	case FormatJSON:
		if err := validateJSONDepth(data); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "decode", "check JSON structure")
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "decode", "parse JSON")
		}
	default:
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Loader", "decode",
			fmt.Sprintf("unsupported config format %q", format))
	}

	if raw == nil {
		raw = map[string]any{}
	}
	if l.validation {
		if err := validateSchema(data); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// formatOf maps a file extension to a format, or "" if unsupported.
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

func toMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, errors.WrapFatal(err, "Loader", "toMap", "encode config")
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapFatal(err, "Loader", "toMap", "decode config")
	}
	return m, nil
}

func fromMap(m map[string]any) (*Config, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "fromMap", "encode merged config")
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "fromMap", "decode merged config")
	}
	return &cfg, nil
}

// deepMergeMaps recursively merges two maps, with override taking precedence
func deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}
		if baseMap, ok := base[k].(map[string]any); ok {
			if overrideMap, ok := v.(map[string]any); ok {
				result[k] = deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}
		result[k] = v
	}
	return result
}

// applyEnvOverrides applies PREFIX_* environment variables.
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	var firstErr error
	lookup := func(name string) (string, bool) {
		key := l.envPrefix + "_" + name
		val := l.getenv(key)
		if val == "" {
			return "", false
		}
		if err := validateEnvVar(key, val); err != nil {
			if firstErr == nil {
				firstErr = errors.WrapInvalid(err, "Loader", "applyEnvOverrides", key)
			}
			return "", false
		}
		l.logger.Debug("Config override from environment", "key", key)
		return val, true
	}
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil && firstErr == nil {
				firstErr = errors.WrapInvalid(err, "Loader", "applyEnvOverrides", l.envPrefix+"_"+name)
				return
			}
			*dst = n
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil && firstErr == nil {
				firstErr = errors.WrapInvalid(err, "Loader", "applyEnvOverrides", l.envPrefix+"_"+name)
				return
			}
			*dst = b
		}
	}
	duration := func(name string, dst *Duration) {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil && firstErr == nil {
				firstErr = errors.WrapInvalid(err, "Loader", "applyEnvOverrides", l.envPrefix+"_"+name)
				return
			}
			*dst = Duration(d)
		}
	}

	str("REST_COUNTRIES_URL", &cfg.Providers.RestCountriesURL)
	str("WORLD_BANK_URL", &cfg.Providers.WorldBankURL)
	duration("PROVIDER_TIMEOUT", &cfg.Providers.Timeout)
	integer("PROVIDER_MAX_RETRIES", &cfg.Providers.MaxRetries)
	boolean("DISABLE_LIVE", &cfg.Providers.DisableLive)

	str("NATS_URL", &cfg.NATS.URL)
	str("NATS_TOKEN", &cfg.NATS.Token)
	str("NATS_USERNAME", &cfg.NATS.Username)
	str("NATS_PASSWORD", &cfg.NATS.Password)

	boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)
	integer("METRICS_PORT", &cfg.Metrics.Port)

	integer("REFRESH_WORKERS", &cfg.Refresh.Workers)
	duration("REFRESH_INTERVAL", &cfg.Refresh.Interval)

	if v, ok := lookup("CACHE_DEFAULT_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil && firstErr == nil {
			firstErr = errors.WrapInvalid(err, "Loader", "applyEnvOverrides", l.envPrefix+"_CACHE_DEFAULT_TTL")
		} else if err == nil {
			cfg.Cache.DefaultTTL = d
		}
	}
	str("LOCALE", &cfg.Locale)

	return firstErr
}
