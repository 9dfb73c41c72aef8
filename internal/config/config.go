package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the connection settings for a Veloera gateway plus console
// defaults. A project-local velo.json wins over the user-level file.
type Config struct {
	ServerURL   string `json:"serverUrl"`
	AccessToken string `json:"accessToken,omitempty"`
	UserID      string `json:"userId,omitempty"`
	Admin       bool   `json:"admin,omitempty"`

	DefaultGranularity string `json:"defaultGranularity,omitempty"` // hour, day, week
	DefaultModel       string `json:"defaultModel,omitempty"`
	DefaultGroup       string `json:"defaultGroup,omitempty"`
	SystemPrompt       string `json:"systemPrompt,omitempty"`

	WebhookURL    string `json:"webhookUrl,omitempty"`
	WebhookFormat string `json:"webhookFormat,omitempty"`

	MinChartBuckets int `json:"minChartBuckets,omitempty"` // 0 means default (7)
}

// ConfigPath is resolved at startup: project-local velo.json if present,
// otherwise ~/.velo/config.json.
var ConfigPath string

func init() {
	pwd, _ := os.Getwd()
	projectConfig := filepath.Join(pwd, "velo.json")
	if _, err := os.Stat(projectConfig); err == nil {
		ConfigPath = projectConfig
	} else {
		homeDir, _ := os.UserHomeDir()
		ConfigPath = filepath.Join(homeDir, ".velo", "config.json")
	}
}

// Dir returns the directory holding the console's local state (log file,
// local store, usage history database).
func Dir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".velo")
}

// Load reads the config file and applies .env / VELO_* environment
// overrides. A missing config file is not an error; env vars alone can
// configure the console.
func Load() (*Config, error) {
	// .env in the working directory, if any. Already-set vars win.
	_ = godotenv.Load()

	cfg := &Config{}
	data, err := os.ReadFile(ConfigPath)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func Save(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(ConfigPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(ConfigPath, data, 0o644)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("VELO_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("VELO_ACCESS_TOKEN"); v != "" {
		cfg.AccessToken = v
	}
	if v := os.Getenv("VELO_USER_ID"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("VELO_ADMIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Admin = b
		}
	}
	if v := os.Getenv("VELO_GRANULARITY"); v != "" {
		cfg.DefaultGranularity = v
	}
}
