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

// Config holds all configuration options for the comment fetcher
type Config struct {
	// Instagram endpoint constants and identifiers
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Rate limiting and retry configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Login handshake configuration
	Login LoginConfig `yaml:"login" json:"login"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig carries the endpoint identifiers and signing material.
// These were module-level constants in earlier versions; they are injected
// here so nothing in the fetch path reads process-global state.
type InstagramConfig struct {
	QueryHash           string `yaml:"query_hash" json:"query_hash"`
	CommentsPerPage     int    `yaml:"comments_per_page" json:"comments_per_page"`
	WebAppID            string `yaml:"web_app_id" json:"web_app_id"`
	WebUserAgent        string `yaml:"web_user_agent" json:"web_user_agent"`
	AppUserAgent        string `yaml:"app_user_agent" json:"app_user_agent"`
	AppID               string `yaml:"app_id" json:"app_id"`
	Capabilities        string `yaml:"capabilities" json:"capabilities"`
	SignatureKey        string `yaml:"signature_key" json:"signature_key"`
	SignatureKeyVersion string `yaml:"signature_key_version" json:"signature_key_version"`
}

// RateLimitConfig holds request pacing and retry bounds
type RateLimitConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
	MaxAuthRecoveries int           `yaml:"max_auth_recoveries" json:"max_auth_recoveries"`
	RequestTimeout    time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// LoginConfig holds login handshake timeouts
type LoginConfig struct {
	PreloginTimeout time.Duration `yaml:"prelogin_timeout" json:"prelogin_timeout"`
	LoginTimeout    time.Duration `yaml:"login_timeout" json:"login_timeout"`
}

// OutputConfig holds output and session-file locations
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	SessionFile   string `yaml:"session_file" json:"session_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with the stock endpoint identifiers
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			QueryHash:           "97b41c52301f77ce508f55e66d17620e",
			CommentsPerPage:     50,
			WebAppID:            "936619743392459",
			WebUserAgent:        "Mozilla/5.0 (Linux; Android 13; SM-A125F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Mobile Safari/537.36",
			AppUserAgent:        "Instagram 123.0.0.0 Android (30/11; 420dpi; 1080x1920; Google; Pixel; sailfish; qcom; en_US)",
			AppID:               "567067343352427",
			Capabilities:        "3brTvw",
			SignatureKey:        "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
			SignatureKeyVersion: "4",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2.0,
			MaxRetries:        3,
			RetryDelay:        time.Second,
			MaxAuthRecoveries: 3,
			RequestTimeout:    20 * time.Second,
		},
		Login: LoginConfig{
			PreloginTimeout: 10 * time.Second,
			LoginTimeout:    20 * time.Second,
		},
		Output: OutputConfig{
			BaseDirectory: "download_comments",
			SessionFile:   "",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration overrides from environment variables
func (c *Config) LoadFromEnv() error {
	if rps := os.Getenv("IGCOMMENTS_REQUESTS_PER_SECOND"); rps != "" {
		if val, err := strconv.ParseFloat(rps, 64); err == nil && val > 0 {
			c.RateLimit.RequestsPerSecond = val
		}
	}
	if retries := os.Getenv("IGCOMMENTS_MAX_RETRIES"); retries != "" {
		if val, err := strconv.Atoi(retries); err == nil && val >= 0 {
			c.RateLimit.MaxRetries = val
		}
	}
	if outputDir := os.Getenv("IGCOMMENTS_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if sessionFile := os.Getenv("IGCOMMENTS_SESSION_FILE"); sessionFile != "" {
		c.Output.SessionFile = sessionFile
	}
	if userAgent := os.Getenv("IGCOMMENTS_WEB_USER_AGENT"); userAgent != "" {
		c.Instagram.WebUserAgent = userAgent
	}
	if logLevel := os.Getenv("IGCOMMENTS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
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
	locations := []string{
		".igcomments.yaml",
		".igcomments.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igcomments", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igcomments", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igcomments.yaml"),
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

	if c.Instagram.QueryHash == "" {
		errs = append(errs, errors.New("query hash is required"))
	}
	if c.Instagram.CommentsPerPage <= 0 {
		errs = append(errs, errors.New("comments per page must be positive"))
	}
	if c.Instagram.SignatureKey == "" {
		errs = append(errs, errors.New("signature key is required"))
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("requests per second must be positive"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.RateLimit.MaxAuthRecoveries < 0 {
		errs = append(errs, errors.New("max auth recoveries cannot be negative"))
	}
	if c.RateLimit.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
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

// SessionFilePath resolves the session bundle location, defaulting to the
// per-user config directory when no explicit path is configured.
func (c *Config) SessionFilePath() (string, error) {
	if c.Output.SessionFile != "" {
		return c.Output.SessionFile, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(configDir, "igcomments", "session.json"), nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if rps, ok := flags["rate"].(float64); ok && rps > 0 {
		c.RateLimit.RequestsPerSecond = rps
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if sessionFile, ok := flags["session-file"].(string); ok && sessionFile != "" {
		c.Output.SessionFile = sessionFile
	}
	if maxRetries, ok := flags["max-retries"].(int); ok && maxRetries >= 0 {
		c.RateLimit.MaxRetries = maxRetries
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igcomments.env"))

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
