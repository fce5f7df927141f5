package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the timeline crawler
type Config struct {
	// Feed API settings
	Sina SinaConfig `yaml:"sina" json:"sina"`

	// Checkpoint store
	Checkpoint CheckpointConfig `yaml:"checkpoint" json:"checkpoint"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Retry behaviour of the fetch layer
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Prometheus listener
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// SinaConfig holds feed API configuration
type SinaConfig struct {
	BaseURL    string        `yaml:"base_url" json:"base_url"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	UserAgents []string      `yaml:"user_agents" json:"user_agents"`
}

// CheckpointConfig selects and configures the checkpoint store
type CheckpointConfig struct {
	Backend       string `yaml:"backend" json:"backend"`
	Platform      string `yaml:"platform" json:"platform"`
	RedisAddr     string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string `yaml:"redis_password" json:"redis_password"`
	RedisDB       int    `yaml:"redis_db" json:"redis_db"`
	FileDirectory string `yaml:"file_directory" json:"file_directory"`
}

// OutputConfig holds export configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// RetryConfig holds retry configuration for page requests
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// MetricsConfig holds the optional Prometheus listener address
type MetricsConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Checkpoint backends
const (
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// DefaultUserAgents is the user-agent pool rotated across requests
var DefaultUserAgents = []string{
	"Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Mobile Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0",
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Sina: SinaConfig{
			BaseURL:    "https://m.weibo.cn",
			Timeout:    30 * time.Second,
			UserAgents: append([]string(nil), DefaultUserAgents...),
		},
		Checkpoint: CheckpointConfig{
			Backend:   BackendRedis,
			Platform:  "sina",
			RedisAddr: "localhost:6379",
			RedisDB:   3,
		},
		Output: OutputConfig{
			Directory: ".",
		},
		Retry: RetryConfig{
			Enabled:     true,
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// REDIS_HOST is kept for deployments that predate the prefixed variables
	if host := os.Getenv("REDIS_HOST"); host != "" {
		c.Checkpoint.RedisAddr = host + ":6379"
	}
	if addr := os.Getenv("SINACRAWLER_REDIS_ADDR"); addr != "" {
		c.Checkpoint.RedisAddr = addr
	}
	if password := os.Getenv("SINACRAWLER_REDIS_PASSWORD"); password != "" {
		c.Checkpoint.RedisPassword = password
	}
	if db := os.Getenv("SINACRAWLER_REDIS_DB"); db != "" {
		val, err := strconv.Atoi(db)
		if err != nil {
			return fmt.Errorf("invalid SINACRAWLER_REDIS_DB %q: %w", db, err)
		}
		c.Checkpoint.RedisDB = val
	}
	if backend := os.Getenv("SINACRAWLER_CHECKPOINT_BACKEND"); backend != "" {
		c.Checkpoint.Backend = strings.ToLower(backend)
	}
	if dir := os.Getenv("SINACRAWLER_CHECKPOINT_DIR"); dir != "" {
		c.Checkpoint.FileDirectory = dir
	}

	if outputDir := os.Getenv("SINACRAWLER_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}

	if attempts := os.Getenv("SINACRAWLER_MAX_ATTEMPTS"); attempts != "" {
		val, err := strconv.Atoi(attempts)
		if err != nil {
			return fmt.Errorf("invalid SINACRAWLER_MAX_ATTEMPTS %q: %w", attempts, err)
		}
		c.Retry.MaxAttempts = val
	}

	if ua := os.Getenv("SINACRAWLER_USER_AGENT"); ua != "" {
		c.Sina.UserAgents = []string{ua}
	}

	if logLevel := os.Getenv("SINACRAWLER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("SINACRAWLER_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	if addr := os.Getenv("SINACRAWLER_METRICS_ADDR"); addr != "" {
		c.Metrics.Addr = addr
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".sinacrawler.yaml",
		".sinacrawler.yml",
		filepath.Join(home, ".config", "sinacrawler", "config.yaml"),
		filepath.Join(home, ".config", "sinacrawler", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Sina.BaseURL == "" {
		errs = append(errs, errors.New("feed base URL is required"))
	}
	if c.Sina.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if len(c.Sina.UserAgents) == 0 {
		errs = append(errs, errors.New("at least one user agent is required"))
	}

	switch c.Checkpoint.Backend {
	case BackendRedis:
		if c.Checkpoint.RedisAddr == "" {
			errs = append(errs, errors.New("redis address is required for the redis backend"))
		}
		if c.Checkpoint.RedisDB < 0 {
			errs = append(errs, errors.New("redis db cannot be negative"))
		}
	case BackendFile, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown checkpoint backend %q", c.Checkpoint.Backend))
	}
	if c.Checkpoint.Platform == "" {
		errs = append(errs, errors.New("checkpoint platform is required"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max attempts cannot be negative"))
	}
	if c.Retry.Enabled && c.Retry.BaseDelay <= 0 {
		errs = append(errs, errors.New("retry base delay must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if backend, ok := flags["store"].(string); ok && backend != "" {
		c.Checkpoint.Backend = strings.ToLower(backend)
	}
	if addr, ok := flags["redis-addr"].(string); ok && addr != "" {
		c.Checkpoint.RedisAddr = addr
	}
	if dir, ok := flags["checkpoint-dir"].(string); ok && dir != "" {
		c.Checkpoint.FileDirectory = dir
	}
	if attempts, ok := flags["max-attempts"].(int); ok && attempts >= 0 {
		c.Retry.MaxAttempts = attempts
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if addr, ok := flags["metrics-addr"].(string); ok && addr != "" {
		c.Metrics.Addr = addr
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".sinacrawler.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
