// Package config provides configuration management for the journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config represents the main configuration structure.
type Config struct {
	Journal     JournalConfig `mapstructure:"journal"`
	Storage     StorageConfig `mapstructure:"storage"`
	Advisor     AdvisorConfig `mapstructure:"advisor"`
	Server      ServerConfig  `mapstructure:"server"`
	UI          UIConfig      `mapstructure:"ui"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Credentials Credentials   `mapstructure:"-" json:"-"` // Loaded separately

	dir string
}

// JournalConfig holds aggregation settings.
type JournalConfig struct {
	Baseline      float64 `mapstructure:"baseline"`
	RecentTrades  int     `mapstructure:"recent_trades"`
	TimeframeMode string  `mapstructure:"timeframe_mode"` // "scaled", "range"
	Jitter        bool    `mapstructure:"jitter"`
}

// StorageConfig selects the durable key-value backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // "sqlite", "file", "memory"
	Path    string `mapstructure:"path"`
}

// AdvisorConfig holds text generation settings.
type AdvisorConfig struct {
	Provider          string `mapstructure:"provider"` // "gemini", "openai"
	Model             string `mapstructure:"model"`
	SearchModel       string `mapstructure:"search_model"`
	RefreshSchedule   string `mapstructure:"refresh_schedule"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"` // 0 disables the limit
}

// ServerConfig holds HTTP settings for serve mode.
type ServerConfig struct {
	Port    int  `mapstructure:"port"`
	DevMode bool `mapstructure:"dev_mode"`
}

// UIConfig holds display preferences.
type UIConfig struct {
	Language     string `mapstructure:"language"`
	ColorEnabled bool   `mapstructure:"color_enabled"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// Credentials holds API keys for the advisory providers.
type Credentials struct {
	Gemini GeminiCredentials `mapstructure:"gemini"`
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// GeminiCredentials holds the Gemini API key.
type GeminiCredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// OpenAICredentials holds the OpenAI API key.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
	StorageMemory = "memory"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	TimeframeScaled = "scaled"
	TimeframeRange  = "range"
)

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trademind"
	}
	return filepath.Join(home, ".config", "trademind")
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Journal: JournalConfig{
			Baseline:      47000,
			RecentTrades:  10,
			TimeframeMode: TimeframeScaled,
			Jitter:        true,
		},
		Storage: StorageConfig{Backend: StorageSQLite},
		Advisor: AdvisorConfig{
			Provider:          ProviderGemini,
			Model:             "gemini-3-flash-preview",
			SearchModel:       "gemini-3-pro-preview",
			RefreshSchedule:   "@every 15m",
			RequestsPerMinute: 30,
		},
		Server:  ServerConfig{Port: 8080},
		UI:      UIConfig{Language: "en", ColorEnabled: true},
		Logging: LoggingConfig{Level: "info", File: true},
	}
}

// Load loads configuration from the specified directory, writing templates
// for any missing file.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg := Default()
	cfg.dir = configDir

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, cfg *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := createTemplateConfig(configDir); err != nil {
			return err
		}
	}

	return v.Unmarshal(cfg)
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("journal.baseline", cfg.Journal.Baseline)
	v.SetDefault("journal.recent_trades", cfg.Journal.RecentTrades)
	v.SetDefault("journal.timeframe_mode", cfg.Journal.TimeframeMode)
	v.SetDefault("journal.jitter", cfg.Journal.Jitter)
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("advisor.provider", cfg.Advisor.Provider)
	v.SetDefault("advisor.model", cfg.Advisor.Model)
	v.SetDefault("advisor.search_model", cfg.Advisor.SearchModel)
	v.SetDefault("advisor.refresh_schedule", cfg.Advisor.RefreshSchedule)
	v.SetDefault("advisor.requests_per_minute", cfg.Advisor.RequestsPerMinute)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("ui.language", cfg.UI.Language)
	v.SetDefault("ui.color_enabled", cfg.UI.ColorEnabled)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	// API_KEY is the variable the browser build reads.
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Credentials.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Credentials.Gemini.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}

	if v := os.Getenv("TRADEMIND_STORAGE"); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("TRADEMIND_LANG"); v != "" {
		cfg.UI.Language = strings.ToLower(v)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageSQLite, StorageFile, StorageMemory:
	default:
		return fmt.Errorf("invalid storage backend: %s (must be 'sqlite', 'file' or 'memory')", c.Storage.Backend)
	}

	switch c.Advisor.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("invalid advisor provider: %s (must be 'gemini' or 'openai')", c.Advisor.Provider)
	}

	switch c.Journal.TimeframeMode {
	case TimeframeScaled, TimeframeRange:
	default:
		return fmt.Errorf("invalid timeframe_mode: %s (must be 'scaled' or 'range')", c.Journal.TimeframeMode)
	}

	switch c.UI.Language {
	case "en", "fr", "ar":
	default:
		return fmt.Errorf("invalid language: %s (must be 'en', 'fr' or 'ar')", c.UI.Language)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}
	if c.Journal.RecentTrades <= 0 {
		return fmt.Errorf("recent_trades must be positive")
	}

	if c.Advisor.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must not be negative")
	}

	if c.Advisor.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.Advisor.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid refresh_schedule %q: %w", c.Advisor.RefreshSchedule, err)
		}
	}

	return nil
}

// Dir returns the directory the configuration was loaded from.
func (c *Config) Dir() string {
	if c.dir == "" {
		return DefaultConfigDir()
	}
	return c.dir
}

// StoragePath resolves the backend location, defaulting into the config dir.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case StorageFile:
		return filepath.Join(c.Dir(), "data")
	default:
		return filepath.Join(c.Dir(), "trademind.db")
	}
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if c.Advisor.Provider == ProviderOpenAI {
		return c.Credentials.OpenAI.APIKey
	}
	return c.Credentials.Gemini.APIKey
}

// LogFilePath returns the rotating log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Dir(), "logs", "trademind.log")
}
