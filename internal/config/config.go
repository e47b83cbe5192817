package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/devflow/chronicle-go/internal/llm"
)

// Config holds all settings for an analysis run.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Quality  QualityConfig  `yaml:"quality" mapstructure:"quality"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	API      APIConfig      `yaml:"api" mapstructure:"api"`
	GitHub   GitHubConfig   `yaml:"github" mapstructure:"github"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Webhook  WebhookConfig  `yaml:"webhook" mapstructure:"webhook"`
	Slack    SlackConfig    `yaml:"slack" mapstructure:"slack"`
	Schedule ScheduleConfig `yaml:"schedule" mapstructure:"schedule"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
}

type AnalysisConfig struct {
	CommitLimit     int      `yaml:"commit_limit" mapstructure:"commit_limit"`
	SessionGapHours int      `yaml:"session_gap_hours" mapstructure:"session_gap_hours"`
	Formats         []string `yaml:"formats" mapstructure:"formats"`
}

type QualityConfig struct {
	HighThreshold float64 `yaml:"high_threshold" mapstructure:"high_threshold"`
	LowThreshold  float64 `yaml:"low_threshold" mapstructure:"low_threshold"`
	SizeSmall     int     `yaml:"size_small" mapstructure:"size_small"`
	SizeMedium    int     `yaml:"size_medium" mapstructure:"size_medium"`
	SizeLarge     int     `yaml:"size_large" mapstructure:"size_large"`
}

type CacheConfig struct {
	Enabled       bool   `yaml:"enabled" mapstructure:"enabled"`
	Directory     string `yaml:"directory" mapstructure:"directory"`
	MaxAgeHours   int    `yaml:"max_age_hours" mapstructure:"max_age_hours"`
	PurgeAfterDay int    `yaml:"purge_after_days" mapstructure:"purge_after_days"`
}

type APIConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	Model             string `yaml:"model" mapstructure:"model"`
	RequestTimeoutSec int    `yaml:"request_timeout_seconds" mapstructure:"request_timeout_seconds"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	UseKeychain       bool   `yaml:"use_keychain" mapstructure:"use_keychain"`
}

type GitHubConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	RateLimit int    `yaml:"rate_limit" mapstructure:"rate_limit"`
}

type OutputConfig struct {
	Directory string `yaml:"directory" mapstructure:"directory"`
}

type WebhookConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	Port    int  `yaml:"port" mapstructure:"port"`
}

type SlackConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Token   string `yaml:"token" mapstructure:"token"`
	Channel string `yaml:"channel" mapstructure:"channel"`
}

type ScheduleConfig struct {
	Spec    string   `yaml:"spec" mapstructure:"spec"`
	Formats []string `yaml:"formats" mapstructure:"formats"`
}

type StoreConfig struct {
	RunDBPath       string `yaml:"run_db_path" mapstructure:"run_db_path"`
	SearchIndexPath string `yaml:"search_index_path" mapstructure:"search_index_path"`
}

// CacheMaxAge returns the cache freshness window as a duration.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.Cache.MaxAgeHours) * time.Hour
}

// SessionGap returns the session gap threshold as a duration.
func (c *Config) SessionGap() time.Duration {
	return time.Duration(c.Analysis.SessionGapHours) * time.Hour
}

// Default returns the standard configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".chronicle")

	return &Config{
		Analysis: AnalysisConfig{
			CommitLimit:     20,
			SessionGapHours: 3,
			Formats:         slices.Clone(llm.NarrativeFormats),
		},
		Quality: QualityConfig{
			HighThreshold: 0.8,
			LowThreshold:  0.6,
			SizeSmall:     50,
			SizeMedium:    200,
			SizeLarge:     500,
		},
		Cache: CacheConfig{
			Enabled:       true,
			Directory:     filepath.Join(base, "cache"),
			MaxAgeHours:   24,
			PurgeAfterDay: 7,
		},
		API: APIConfig{
			Model:             "gpt-4o-mini",
			RequestTimeoutSec: 60,
			RequestsPerMinute: 20,
		},
		GitHub: GitHubConfig{
			RateLimit: 10,
		},
		Output: OutputConfig{
			Directory: "output",
		},
		Webhook: WebhookConfig{
			Port: 5000,
		},
		Slack: SlackConfig{
			Channel: "#standup",
		},
		Schedule: ScheduleConfig{
			Spec:    "0 9 * * 1-5",
			Formats: []string{"standup"},
		},
		Store: StoreConfig{
			RunDBPath:       filepath.Join(base, "runs.db"),
			SearchIndexPath: filepath.Join(base, "search.bleve"),
		},
	}
}

// Load reads configuration from the given file (or the standard search
// paths when empty), then applies environment overrides.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CHRONICLE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".chronicle")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".chronicle"))
	}

	// A missing file in the search paths is fine; a file that exists but
	// does not parse is not, whether or not the path was explicit.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnv := filepath.Join(homeDir, ".chronicle", ".env")
	if _, err := os.Stat(homeEnv); err == nil {
		godotenv.Load(homeEnv)
	}
}

// applyEnvOverrides applies environment variables on top of file values.
// Key precedence: env var, then keychain, then config file.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("CHRONICLE_API_KEY"); key != "" {
		cfg.API.Key = key
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.API.Key = key
	} else if cfg.API.Key == "" {
		km := NewKeyringManager()
		if km.IsAvailable() {
			if keychainKey, err := km.GetAPIKey(); err == nil && keychainKey != "" {
				cfg.API.Key = keychainKey
			}
		}
	}

	if model := os.Getenv("CHRONICLE_MODEL"); model != "" {
		cfg.API.Model = model
	}

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if token := os.Getenv("SLACK_TOKEN"); token != "" {
		cfg.Slack.Token = token
	}
	if channel := os.Getenv("SLACK_CHANNEL"); channel != "" {
		cfg.Slack.Channel = channel
	}

	if limit := os.Getenv("CHRONICLE_COMMIT_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			cfg.Analysis.CommitLimit = n
		}
	}
	if gap := os.Getenv("CHRONICLE_SESSION_GAP_HOURS"); gap != "" {
		if n, err := strconv.Atoi(gap); err == nil {
			cfg.Analysis.SessionGapHours = n
		}
	}
	if enabled := os.Getenv("CHRONICLE_CACHE_ENABLED"); enabled != "" {
		cfg.Cache.Enabled = enabled == "true"
	}
	if dir := os.Getenv("CHRONICLE_CACHE_DIR"); dir != "" {
		cfg.Cache.Directory = expandPath(dir)
	}
	if dir := os.Getenv("CHRONICLE_OUTPUT_DIR"); dir != "" {
		cfg.Output.Directory = expandPath(dir)
	}
	if port := os.Getenv("CHRONICLE_WEBHOOK_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Webhook.Port = n
		}
	}
}

// Validate checks the configuration is usable. Invalid configuration is
// fatal: the pipeline never starts on a config that cannot work.
func (c *Config) Validate() error {
	if c.Analysis.CommitLimit <= 0 {
		return fmt.Errorf("analysis.commit_limit must be positive, got %d", c.Analysis.CommitLimit)
	}
	if c.Analysis.SessionGapHours <= 0 {
		return fmt.Errorf("analysis.session_gap_hours must be positive, got %d", c.Analysis.SessionGapHours)
	}
	for _, format := range c.Analysis.Formats {
		if !validFormat(format) {
			return fmt.Errorf("unknown output format %q", format)
		}
	}
	if c.Quality.LowThreshold <= 0 || c.Quality.HighThreshold <= c.Quality.LowThreshold || c.Quality.HighThreshold > 1 {
		return fmt.Errorf("quality thresholds must satisfy 0 < low < high <= 1, got low=%.2f high=%.2f",
			c.Quality.LowThreshold, c.Quality.HighThreshold)
	}
	if c.Quality.SizeSmall <= 0 || c.Quality.SizeMedium <= c.Quality.SizeSmall || c.Quality.SizeLarge <= c.Quality.SizeMedium {
		return fmt.Errorf("quality size tiers must be increasing, got %d/%d/%d",
			c.Quality.SizeSmall, c.Quality.SizeMedium, c.Quality.SizeLarge)
	}
	if c.Cache.MaxAgeHours <= 0 {
		return fmt.Errorf("cache.max_age_hours must be positive, got %d", c.Cache.MaxAgeHours)
	}
	if c.Webhook.Port <= 0 || c.Webhook.Port > 65535 {
		return fmt.Errorf("webhook.port out of range: %d", c.Webhook.Port)
	}
	return nil
}

func validFormat(format string) bool {
	return slices.Contains(llm.NarrativeFormats, format)
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("analysis", c.Analysis)
	v.Set("quality", c.Quality)
	v.Set("cache", c.Cache)
	v.Set("api", c.API)
	v.Set("github", c.GitHub)
	v.Set("output", c.Output)
	v.Set("webhook", c.Webhook)
	v.Set("slack", c.Slack)
	v.Set("schedule", c.Schedule)
	v.Set("store", c.Store)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath expands a leading ~ to the home directory.
func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, path[1:])
}
