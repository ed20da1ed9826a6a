// Package config provides configuration management for memkeep.
package config

// Config is the global configuration for memkeep.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Capture configures the live conversation capture path.
	Capture CaptureConfig `mapstructure:"capture"`

	// Maintenance configures the offline sleep-mode pipeline.
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`

	// Memory configures the long-term memory backend.
	Memory MemoryConfig `mapstructure:"memory"`

	// Oracle configures the text-generation service.
	Oracle OracleConfig `mapstructure:"oracle"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"oneof=development staging production"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the log output format (json or text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the log destination: stdout, stderr, or a file path.
	Output string `mapstructure:"output"`
}

// CaptureConfig holds settings for the turn-end capture path.
type CaptureConfig struct {
	// LogDir is the cold-storage directory for daily conversation logs.
	LogDir string `mapstructure:"log_dir" validate:"required"`

	// IdentityMapPath points at the alias table JSON file.
	IdentityMapPath string `mapstructure:"identity_map_path"`

	// MaxToolResultChars truncates tool output beyond this length.
	MaxToolResultChars int `mapstructure:"max_tool_result_chars" validate:"gte=0"`
}

// MaintenanceConfig holds settings for the sleep-mode pipeline.
type MaintenanceConfig struct {
	// DigestDir is where daily Markdown digests are written.
	DigestDir string `mapstructure:"digest_dir" validate:"required"`

	// DigestEnabled controls whether digests are written at all.
	DigestEnabled bool `mapstructure:"digest_enabled"`

	// MaxChunkChars bounds the size of analysis chunks.
	MaxChunkChars int `mapstructure:"max_chunk_chars" validate:"gte=0"`

	// DedupLimit caps how many existing memories are loaded as dedup context.
	DedupLimit int `mapstructure:"dedup_limit" validate:"gte=0"`

	// Schedule is the cron expression for daemon-mode nightly runs.
	Schedule string `mapstructure:"schedule"`
}

// MemoryConfig selects and configures the memory backend.
type MemoryConfig struct {
	// Backend selects the store implementation: local or platform.
	Backend string `mapstructure:"backend" validate:"oneof=local platform"`

	// Local configures the self-hosted Badger store.
	Local LocalMemoryConfig `mapstructure:"local"`

	// Platform configures the hosted memory API client.
	Platform PlatformMemoryConfig `mapstructure:"platform"`
}

// LocalMemoryConfig holds Badger store settings.
type LocalMemoryConfig struct {
	// Path is the Badger database directory.
	Path string `mapstructure:"path"`

	// SyncWrites forces fsync on every write.
	SyncWrites bool `mapstructure:"sync_writes"`
}

// PlatformMemoryConfig holds hosted backend settings.
type PlatformMemoryConfig struct {
	// BaseURL is the platform API endpoint.
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	// APIKey authenticates against the platform.
	APIKey string `mapstructure:"api_key"`

	// TimeoutSeconds bounds each API call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// OracleConfig holds text-generation service settings.
type OracleConfig struct {
	// BaseURL is the OpenAI-compatible endpoint.
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	// APIKey authenticates against the oracle.
	APIKey string `mapstructure:"api_key"`

	// Model names the completion model.
	Model string `mapstructure:"model"`

	// MaxTokens bounds the response length.
	MaxTokens int `mapstructure:"max_tokens" validate:"gte=0"`

	// Temperature controls sampling randomness.
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`

	// TimeoutSeconds bounds each oracle exchange.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// MetricsConfig holds observability configuration.
type MetricsConfig struct {
	// Enabled turns the Prometheus endpoint on.
	Enabled bool `mapstructure:"enabled"`

	// Port is the metrics listen port.
	Port int `mapstructure:"port" validate:"gte=0,lte=65535"`

	// Path is the metrics HTTP path.
	Path string `mapstructure:"path"`
}
