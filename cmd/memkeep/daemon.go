package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/memkeep/memkeep/config"
	"github.com/memkeep/memkeep/pkg/logger"
	"github.com/memkeep/memkeep/pkg/maintenance"
	"github.com/memkeep/memkeep/pkg/version"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run memkeep as a long-lived service",
		Long: `Runs the maintenance pipeline on the configured cron schedule,
watching the configuration file for changes and serving metrics when
enabled. Stops cleanly on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runDaemon(cfg)
		},
	}
}

func runDaemon(cfg *config.Config) error {
	log := logger.Global()
	log.Info("Starting memkeep daemon",
		"version", version.Version,
		"schedule", cfg.Maintenance.Schedule,
		"backend", cfg.Memory.Backend,
	)

	m := buildMetrics(cfg)
	sched, closeStore, err := buildScheduler(cfg, log, m)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer func() {
			if err := closeStore(); err != nil {
				log.Error("Error closing memory store", "error", err)
			}
		}()
	}

	ctx, cancel := signalContext()
	defer cancel()

	if cfg.Metrics.Enabled {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := m.Serve(metricsConfig(cfg)); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := m.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down metrics server", "error", err)
			}
		}()
	}

	// One run at a time. A schedule firing mid-run is skipped rather
	// than queued, since the next run covers the same backlog anyway.
	var runMu sync.Mutex
	runOnce := func() {
		if !runMu.TryLock() {
			log.Warn("Maintenance run still in progress, skipping scheduled run")
			return
		}
		defer runMu.Unlock()

		report, err := sched.Run(ctx, maintenance.RunOptions{})
		if err != nil {
			log.Error("Maintenance run failed", "error", err)
			return
		}
		log.Info("Scheduled maintenance run complete",
			"processed", report.Processed(),
			"failed", report.Failed(),
		)
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Maintenance.Schedule, runOnce); err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", cfg.Maintenance.Schedule, err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, config.NewLoader())
		if err != nil {
			log.Warn("Config watcher unavailable", "error", err)
		} else {
			watcher.OnChange(func(newCfg *config.Config) {
				log.Info("Configuration reloaded", "log_level", newCfg.Log.Level)
				logger.Global().SetLevel(logger.ParseLevel(newCfg.Log.Level))
			})
			go func() {
				if err := watcher.Watch(ctx); err != nil && err != context.Canceled {
					log.Error("Config watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	log.Info("memkeep daemon is running")
	<-ctx.Done()
	log.Info("Received shutdown signal, stopping")
	return nil
}
