// Package main implements the countrycompare command: it aggregates country
// metadata and economic indicators, persists them, and compares countries.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Hamza-spc/CountryCompare/config"
	"github.com/Hamza-spc/CountryCompare/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "countrycompare"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cliCfg, logger, shouldExit, err := initializeCLI(args, stdout, stderr)
	if shouldExit || err != nil {
		return err
	}

	cfg, err := initializeConfiguration(cliCfg, logger)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		logger.Info("Configuration is valid")
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cliCfg.ShutdownTimeout)
		defer closeCancel()
		a.close(closeCtx)
	}()

	if cliCfg.Command == cmdServe {
		return serve(ctx, a, cliCfg.ShutdownTimeout)
	}
	return execute(ctx, a, cliCfg, newPrinter(stdout, cliCfg.JSON, cfg.Locale))
}

// initializeCLI parses flags and sets up logging
func initializeCLI(args []string, stdout, stderr io.Writer) (*CLIConfig, *slog.Logger, bool, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	cliCfg, err := parseFlags(fs, args)
	if err != nil {
		if err == flag.ErrHelp {
			return nil, nil, true, nil
		}
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp(fs)
		return nil, nil, true, nil
	}

	logger := setupLogger(stderr, cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	logger.Debug("Starting CountryCompare",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath,
		"command", cliCfg.Command)

	return cliCfg, logger, false, nil
}

// initializeConfiguration loads and validates configuration
func initializeConfiguration(cliCfg *CLIConfig, logger *slog.Logger) (*config.Config, error) {
	loader := config.NewLoader()
	loader.SetLogger(logger)

	cfg, err := loader.LoadFile(cliCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Debug("Configuration loaded", "config", cfg.String())
	return cfg, nil
}

// execute runs a one-shot command and prints its result.
func execute(ctx context.Context, a *app, cliCfg *CLIConfig, p *printer) error {
	svc := a.service

	switch cliCfg.Command {
	case cmdList:
		countries, err := svc.ListCountries(ctx)
		if err != nil {
			return fmt.Errorf("list countries: %w", err)
		}
		return p.countries(countries)

	case cmdShow:
		country, err := svc.GetCountry(ctx, cliCfg.Args[0])
		if err != nil {
			return fmt.Errorf("show %q: %w", cliCfg.Args[0], err)
		}
		return p.country(country)

	case cmdCompare:
		result, err := svc.Compare(ctx, cliCfg.Args[0], cliCfg.Args[1])
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		return p.comparison(result)

	case cmdRefresh:
		report, err := svc.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("refresh: %w", err)
		}
		return p.refresh(report)

	case cmdStats:
		stats, err := svc.Statistics(ctx)
		if err != nil {
			return fmt.Errorf("statistics: %w", err)
		}
		return p.statistics(stats)

	case cmdHistory:
		comparisons, err := svc.History(ctx)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		return p.history(comparisons)
	}

	return fmt.Errorf("unknown command: %s", cliCfg.Command)
}

// serve runs the cache sweeps, the metrics and health server and the
// scheduled refresh until ctx is cancelled.
func serve(ctx context.Context, a *app, shutdownTimeout time.Duration) error {
	if err := a.caches.Start(ctx); err != nil {
		return fmt.Errorf("start caches: %w", err)
	}

	// Warm the list so the first request and the refresh have records.
	countries, err := a.service.ListCountries(ctx)
	if err != nil {
		return fmt.Errorf("load countries: %w", err)
	}
	a.logger.Info("Country list loaded", "count", len(countries))

	g, gctx := errgroup.WithContext(ctx)

	var srv *metric.Server
	if a.cfg.Metrics.Enabled {
		srv = metric.NewServer(a.cfg.Metrics.Port, a.cfg.Metrics.Path, a.metrics, a.monitor.Check)
		g.Go(srv.Start)
		a.logger.Info("Metrics server listening", "address", srv.Address())
	}

	if interval := a.cfg.Refresh.Interval.Std(); interval > 0 {
		g.Go(func() error {
			a.service.RunRefresh(gctx, interval)
			return nil
		})
		a.logger.Info("Scheduled refresh enabled", "interval", interval)
	}

	a.logger.Info("CountryCompare started")

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Received shutdown signal")
		if srv == nil {
			return nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	err = g.Wait()
	for name, stats := range a.caches.AllStats() {
		a.logger.Info("Cache statistics", "cache", name, "stats", stats)
	}
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	a.logger.Info("CountryCompare shutdown complete")
	return nil
}
