package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"
)

// Commands understood after the flags.
const (
	cmdServe   = "serve"
	cmdList    = "list"
	cmdShow    = "show"
	cmdCompare = "compare"
	cmdRefresh = "refresh"
	cmdStats   = "stats"
	cmdHistory = "history"
)

var commandArgs = map[string]int{
	cmdServe:   0,
	cmdList:    0,
	cmdShow:    1,
	cmdCompare: 2,
	cmdRefresh: 0,
	cmdStats:   0,
	cmdHistory: 0,
}

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	Debug           bool
	JSON            bool
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool

	Command string
	Args    []string
}

func parseFlags(fs *flag.FlagSet, args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}

	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("COUNTRYCOMPARE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: COUNTRYCOMPARE_CONFIG)")

	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv("COUNTRYCOMPARE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: COUNTRYCOMPARE_CONFIG)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("COUNTRYCOMPARE_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: COUNTRYCOMPARE_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("COUNTRYCOMPARE_LOG_FORMAT", "text"),
		"Log format: json, text (env: COUNTRYCOMPARE_LOG_FORMAT)")

	fs.BoolVar(&cfg.Debug, "debug",
		getEnvBool("COUNTRYCOMPARE_DEBUG", false),
		"Enable debug mode (env: COUNTRYCOMPARE_DEBUG)")

	fs.BoolVar(&cfg.JSON, "json",
		getEnvBool("COUNTRYCOMPARE_JSON", false),
		"Print command results as JSON (env: COUNTRYCOMPARE_JSON)")

	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("COUNTRYCOMPARE_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: COUNTRYCOMPARE_SHUTDOWN_TIMEOUT)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		printDetailedHelp(fs)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	cfg.Command = cmdServe
	if fs.NArg() > 0 {
		cfg.Command = fs.Arg(0)
		cfg.Args = fs.Args()[1:]
	}

	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !slices.Contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %v", cfg.ShutdownTimeout)
	}

	want, ok := commandArgs[cfg.Command]
	if !ok {
		return fmt.Errorf("unknown command: %s", cfg.Command)
	}
	if len(cfg.Args) != want {
		return fmt.Errorf("%s expects %d argument(s), got %d", cfg.Command, want, len(cfg.Args))
	}

	return nil
}

func printDetailedHelp(fs *flag.FlagSet) {
	out := fs.Output()
	_, _ = fmt.Fprintf(out, `%s - country data aggregation and comparison

Usage: %s [options] [command] [args]

Commands:
  serve                 Run metrics, health and scheduled refresh until interrupted (default)
  list                  List every country
  show <country>        Show one country
  compare <a> <b>       Compare two countries and store the comparison
  refresh               Re-estimate every stored country once
  stats                 Aggregate statistics over all countries
  history               List stored comparisons, newest first

Options:
`, appName, os.Args[0])
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(out, `
Examples:
  # Compare two countries with German number formatting
  COUNTRYCOMPARE_LOCALE=de %s compare Germany France

  # Run the background service with a config file
  %s --config=configs/countrycompare.yaml serve

  # Keep records in NATS JetStream instead of memory
  export COUNTRYCOMPARE_NATS_URL=nats://localhost:4222
  %s list

  # Validate configuration only
  %s --config=configs/countrycompare.yaml --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
