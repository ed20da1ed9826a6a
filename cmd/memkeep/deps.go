package main

import (
	"fmt"
	"time"

	"github.com/memkeep/memkeep/config"
	"github.com/memkeep/memkeep/pkg/logger"
	"github.com/memkeep/memkeep/pkg/logstore"
	"github.com/memkeep/memkeep/pkg/maintenance"
	"github.com/memkeep/memkeep/pkg/memstore"
	"github.com/memkeep/memkeep/pkg/memstore/local"
	"github.com/memkeep/memkeep/pkg/memstore/platform"
	"github.com/memkeep/memkeep/pkg/metrics"
	"github.com/memkeep/memkeep/pkg/oracle"
)

// buildStore constructs the memory backend selected by configuration.
// The returned closer is nil for backends without local resources.
func buildStore(cfg *config.Config, log logger.Logger) (memstore.Store, func() error, error) {
	switch cfg.Memory.Backend {
	case "platform":
		store := platform.New(&platform.Config{
			BaseURL: cfg.Memory.Platform.BaseURL,
			APIKey:  cfg.Memory.Platform.APIKey,
			Timeout: time.Duration(cfg.Memory.Platform.TimeoutSeconds) * time.Second,
		})
		log.Info("Using platform memory backend", "base_url", cfg.Memory.Platform.BaseURL)
		return store, nil, nil
	case "local":
		store, err := local.New(&local.Config{
			Path:       cfg.Memory.Local.Path,
			SyncWrites: cfg.Memory.Local.SyncWrites,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open local memory store: %w", err)
		}
		log.Info("Using local memory backend", "path", cfg.Memory.Local.Path)
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown memory backend %q", cfg.Memory.Backend)
	}
}

// buildScheduler wires the full maintenance pipeline from configuration.
func buildScheduler(cfg *config.Config, log logger.Logger, m *metrics.Manager) (*maintenance.Scheduler, func() error, error) {
	store, closeStore, err := buildStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	orc, err := oracle.NewClient(oracle.Config{
		BaseURL:     cfg.Oracle.BaseURL,
		APIKey:      cfg.Oracle.APIKey,
		Model:       cfg.Oracle.Model,
		MaxTokens:   cfg.Oracle.MaxTokens,
		Temperature: cfg.Oracle.Temperature,
		Timeout:     time.Duration(cfg.Oracle.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		if closeStore != nil {
			closeStore()
		}
		return nil, nil, fmt.Errorf("create oracle client: %w", err)
	}

	logs := logstore.New(cfg.Capture.LogDir)
	digests := maintenance.NewDigestWriter(cfg.Maintenance.DigestDir)

	sched := maintenance.NewScheduler(logs, store, orc, digests, m, log, maintenance.Config{
		DigestEnabled: cfg.Maintenance.DigestEnabled,
		MaxChunkChars: cfg.Maintenance.MaxChunkChars,
		DedupLimit:    cfg.Maintenance.DedupLimit,
	})
	return sched, closeStore, nil
}

func metricsConfig(cfg *config.Config) metrics.Config {
	mc := metrics.DefaultConfig()
	mc.Enabled = cfg.Metrics.Enabled
	mc.Port = cfg.Metrics.Port
	mc.Path = cfg.Metrics.Path
	return mc
}

func buildMetrics(cfg *config.Config) *metrics.Manager {
	return metrics.NewManager(metricsConfig(cfg))
}
