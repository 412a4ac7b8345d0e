package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# TradeMind Journal Configuration

[journal]
# Starting balance the equity curve is drawn from
baseline = 47000.0
# Number of trades in the dashboard feed
recent_trades = 10
# Timeframe summaries: "scaled" (fixed multipliers) or "range" (filter by trade time)
timeframe_mode = "scaled"
# Add a small random factor to the average gain figure
jitter = true

[storage]
# Backend: "sqlite", "file" or "memory"
backend = "sqlite"
# Database file or data directory (defaults inside the config directory)
# path = ""

[advisor]
# Provider: "gemini" or "openai"
provider = "gemini"
# Model for coaching and note refinement
model = "gemini-3-flash-preview"
# Model for web-search backed macro and scanner reports
search_model = "gemini-3-pro-preview"
# Advice refresh schedule in serve mode (cron spec or @every)
refresh_schedule = "@every 15m"
# Client-side cap on advisory calls (0 = unlimited)
requests_per_minute = 30

[server]
port = 8080
# Allow any origin for a local front-end dev server
dev_mode = false

[ui]
# Language: "en", "fr" or "ar"
language = "en"
color_enabled = true

[logging]
# debug, info, warn, error
level = "info"
# Write a rotating log file under logs/
file = true
`

const credentialsTemplate = `# TradeMind Credentials
# Keep this file private. Environment variables override these values.

[gemini]
# GEMINI_API_KEY or API_KEY
api_key = ""

[openai]
# OPENAI_API_KEY
api_key = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	// Use restricted permissions for credentials file
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	return nil
}

// TemplatePaths lists the files Load creates on first run.
func TemplatePaths(configDir string) []string {
	return []string{
		filepath.Join(configDir, "config.toml"),
		filepath.Join(configDir, "credentials.toml"),
	}
}
