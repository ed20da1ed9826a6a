package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memkeep/memkeep/config"
	"github.com/memkeep/memkeep/pkg/logger"
	"github.com/memkeep/memkeep/pkg/version"
)

var (
	configPath string
	logLevel   string
	debugMode  bool
)

func main() {
	root := &cobra.Command{
		Use:           "memkeep",
		Short:         "Long-term memory keeper for conversational agents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newDaemonCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration with CLI overrides applied and installs
// the global logger.
func loadConfig() (*config.Config, error) {
	overrides := make(map[string]interface{})
	if logLevel != "" {
		overrides["log.level"] = logLevel
	}

	cfg, err := config.NewLoader().Load(configPath, overrides)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug || debugMode {
		logCfg.Level = logger.DebugLevel
	}
	logger.SetGlobal(logger.New(logCfg))

	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", version.AppName, version.Version)
			fmt.Printf("  build time: %s\n", version.BuildTime)
			fmt.Printf("  git commit: %s\n", version.GitCommit)
			fmt.Printf("  go version: %s\n", version.GoVersion)
		},
	}
}
