package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/coolbeans/creditai/pkg/config"
	"github.com/coolbeans/creditai/pkg/creditor"
	"github.com/coolbeans/creditai/pkg/logging"
	"github.com/coolbeans/creditai/pkg/metrics"
	"github.com/coolbeans/creditai/pkg/pattern"
	"github.com/coolbeans/creditai/pkg/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg          config.Config
	logger       *slog.Logger
	promRegistry *prometheus.Registry
	metrics      *metrics.Metrics
	registry     *pattern.DefaultRegistry
	detector     *pattern.FormatDetector
	resolver     *creditor.Resolver
	parser       *report.Parser
}

// setup reads the environment, applies persistent flag overrides and wires
// the registry, resolver and parser.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if v, _ := flags.GetString("formats-dir"); v != "" {
		cfg.Parser.FormatsDir = v
	}
	if v, _ := flags.GetString("creditors-file"); v != "" {
		cfg.Parser.CreditorsFile = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := flags.GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}

	a := &app{
		cfg:          cfg,
		logger:       logging.New(cfg.Logging, os.Stderr),
		promRegistry: prometheus.NewRegistry(),
	}
	a.promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.promRegistry)

	if cfg.Parser.FormatsDir != "" {
		a.registry, err = pattern.NewRegistryWithDirectory(cfg.Parser.FormatsDir)
	} else {
		a.registry, err = pattern.NewBuiltinRegistry()
	}
	if err != nil {
		return nil, fmt.Errorf("loading format patterns: %w", err)
	}
	a.registry.SetLogger(a.logger)
	a.detector = pattern.NewFormatDetector(a.registry)

	a.resolver, err = creditor.NewBuiltinResolver()
	if err != nil {
		return nil, fmt.Errorf("loading creditors: %w", err)
	}
	if cfg.Parser.CreditorsFile != "" {
		n, err := a.resolver.LoadFile(cfg.Parser.CreditorsFile)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("loaded creditors file", "path", cfg.Parser.CreditorsFile, "creditors", n)
	}

	a.parser = report.NewParser(a.resolver, a.detector,
		report.WithLogger(a.logger),
		report.WithMetrics(a.metrics),
	)

	a.logger.Debug("components ready",
		"formats", a.registry.Count(),
		"creditors", a.resolver.Count(),
	)
	return a, nil
}
