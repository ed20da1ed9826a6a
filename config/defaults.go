package config

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "memkeep",
			Environment: "development",
			Debug:       false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Capture: CaptureConfig{
			LogDir:             "data/logs",
			IdentityMapPath:    "data/identities.json",
			MaxToolResultChars: 500,
		},
		Maintenance: MaintenanceConfig{
			DigestDir:     "data/digests",
			DigestEnabled: true,
			MaxChunkChars: 4000,
			DedupLimit:    200,
			Schedule:      "0 4 * * *",
		},
		Memory: MemoryConfig{
			Backend: "local",
			Local: LocalMemoryConfig{
				Path:       "data/memory",
				SyncWrites: false,
			},
			Platform: PlatformMemoryConfig{
				TimeoutSeconds: 30,
			},
		},
		Oracle: OracleConfig{
			Model:          "gpt-4o-mini",
			MaxTokens:      4096,
			Temperature:    0.3,
			TimeoutSeconds: 120,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9091,
			Path:    "/metrics",
		},
	}
}
