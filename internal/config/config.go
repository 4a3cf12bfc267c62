// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/javiermolinar/dayplanner/internal/insight"
	"github.com/javiermolinar/dayplanner/internal/log"
	"github.com/javiermolinar/dayplanner/internal/slot"
)

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Storage   StorageConfig   `toml:"storage" yaml:"storage"`
	Client    ClientConfig    `toml:"client" yaml:"client"`
	Planner   PlannerConfig   `toml:"planner" yaml:"planner"`
	Insight   InsightConfig   `toml:"insight" yaml:"insight"`
	Integrity IntegrityConfig `toml:"integrity" yaml:"integrity"`
	Log       LogConfig       `toml:"log" yaml:"log"`
	UI        UIConfig        `toml:"ui" yaml:"ui"`
}

// ServerConfig holds REST server settings.
type ServerConfig struct {
	Listen         string `toml:"listen" yaml:"listen"`                   // e.g., "127.0.0.1:8080"
	RequestTimeout string `toml:"request_timeout" yaml:"request_timeout"` // e.g., "30s"
	OwnerID        int64  `toml:"owner_id" yaml:"owner_id"`
	AllowOrigin    string `toml:"allow_origin" yaml:"allow_origin"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path" yaml:"db_path"`
}

// ClientConfig holds settings for talking to a remote server.
type ClientConfig struct {
	BaseURL string `toml:"base_url" yaml:"base_url"` // empty means use the local database
	Timeout string `toml:"timeout" yaml:"timeout"`
}

// PlannerConfig holds placement settings.
type PlannerConfig struct {
	Durations []int `toml:"durations" yaml:"durations"` // minutes offered when confirming a session
}

// InsightConfig holds LLM provider settings.
type InsightConfig struct {
	Provider string `toml:"provider" yaml:"provider"` // "ollama", "openai", "lmstudio"
	Model    string `toml:"model" yaml:"model"`
	BaseURL  string `toml:"base_url" yaml:"base_url"`
}

// IntegrityConfig holds the background grid scan settings.
type IntegrityConfig struct {
	Schedule     string `toml:"schedule" yaml:"schedule"` // cron expression, empty disables
	LookbackDays int    `toml:"lookback_days" yaml:"lookback_days"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme" yaml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:         "127.0.0.1:8080",
			RequestTimeout: "30s",
			OwnerID:        1,
			AllowOrigin:    "*",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Client: ClientConfig{
			Timeout: "10s",
		},
		Planner: PlannerConfig{
			Durations: append([]int(nil), slot.DefaultDurations...),
		},
		Insight: InsightConfig{
			Provider: insight.ProviderOllama,
			Model:    "llama3.2",
			BaseURL:  "http://localhost:11434",
		},
		Integrity: IntegrityConfig{
			Schedule:     "@hourly",
			LookbackDays: 7,
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme: "mocha",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dayplanner.db"
	}
	return filepath.Join(home, ".local", "share", "dayplanner", "dayplanner.db")
}

// DefaultConfigPath returns the config file path, honoring DAYPLANNER_CONFIG.
func DefaultConfigPath() string {
	if v := os.Getenv("DAYPLANNER_CONFIG"); v != "" {
		return expandPath(v)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "dayplanner", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"DAYPLANNER_LISTEN":             &cfg.Server.Listen,
		"DAYPLANNER_REQUEST_TIMEOUT":    &cfg.Server.RequestTimeout,
		"DAYPLANNER_ALLOW_ORIGIN":       &cfg.Server.AllowOrigin,
		"DAYPLANNER_DB_PATH":            &cfg.Storage.DBPath,
		"DAYPLANNER_API_URL":            &cfg.Client.BaseURL,
		"DAYPLANNER_CLIENT_TIMEOUT":     &cfg.Client.Timeout,
		"DAYPLANNER_INSIGHT_PROVIDER":   &cfg.Insight.Provider,
		"DAYPLANNER_INSIGHT_MODEL":      &cfg.Insight.Model,
		"DAYPLANNER_INSIGHT_BASE_URL":   &cfg.Insight.BaseURL,
		"DAYPLANNER_INTEGRITY_SCHEDULE": &cfg.Integrity.Schedule,
		"DAYPLANNER_LOG_LEVEL":          &cfg.Log.Level,
		"DAYPLANNER_UI_THEME":           &cfg.UI.Theme,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v := os.Getenv("DAYPLANNER_OWNER_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("DAYPLANNER_OWNER_ID: %w", err)
		}
		cfg.Server.OwnerID = id
	}
	if v := os.Getenv("DAYPLANNER_LOOKBACK_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DAYPLANNER_LOOKBACK_DAYS: %w", err)
		}
		cfg.Integrity.LookbackDays = n
	}
	if v := os.Getenv("DAYPLANNER_DURATIONS"); v != "" {
		var durations []int
		for _, part := range strings.Split(v, ",") {
			d, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return fmt.Errorf("DAYPLANNER_DURATIONS: %w", err)
			}
			durations = append(durations, d)
		}
		cfg.Planner.Durations = durations
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return errors.New("server.listen must be set")
	}
	if _, err := positiveDuration(c.Server.RequestTimeout, "server.request_timeout"); err != nil {
		return err
	}
	if c.Server.OwnerID < 1 {
		return errors.New("server.owner_id must be positive")
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if c.Client.BaseURL != "" {
		u, err := url.Parse(c.Client.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("client.base_url must be an http(s) URL, got %q", c.Client.BaseURL)
		}
	}
	if _, err := positiveDuration(c.Client.Timeout, "client.timeout"); err != nil {
		return err
	}

	if len(c.Planner.Durations) == 0 {
		return errors.New("at least one planner duration must be configured")
	}
	for _, d := range c.Planner.Durations {
		if !slot.ValidDuration(d) {
			return fmt.Errorf("planner duration %d must be a positive multiple of %d", d, slot.Minutes)
		}
	}

	switch strings.ToLower(c.Insight.Provider) {
	case insight.ProviderOllama, insight.ProviderOpenAI, insight.ProviderLMStudio:
	default:
		return fmt.Errorf("unsupported insight provider: %s", c.Insight.Provider)
	}

	if c.Integrity.Schedule != "" && c.Integrity.LookbackDays < 1 {
		return errors.New("integrity.lookback_days must be at least 1")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func positiveDuration(s, field string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 30s, got %q", field, s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", field)
	}
	return d, nil
}

// RequestTimeout returns the parsed server request timeout.
func (c *Config) RequestTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.RequestTimeout)
	return d
}

// ClientTimeout returns the parsed client timeout.
func (c *Config) ClientTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Client.Timeout)
	return d
}

// Remote reports whether commands should go through the REST client.
func (c *Config) Remote() bool {
	return c.Client.BaseURL != ""
}

// SaveTo writes the configuration to the specified path, as YAML when the
// path ends in .yaml or .yml and TOML otherwise.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = toml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
