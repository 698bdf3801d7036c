// Package config loads the gateway's environment-based settings. Values
// here are operator-provisioned defaults; the configure command overlays
// its runtime input on top of them, so an operator can pre-fill the client
// secret without it ever passing through the command surface.
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
)

// Built-in defaults applied when neither environment nor config file set a
// value.
const (
	DefaultTimeoutMs    = 30000
	DefaultMaxRetries   = 3
	DefaultRetryDelayMs = 1000
	DefaultLogLevel     = "info"
)

// Settings holds all environment-based configuration for the gateway.
type Settings struct {
	// Platform connection defaults. All of these can be overridden by the
	// configure command at runtime.
	BaseURL      string `env:"ICONECT_BASE_URL" yaml:"baseUrl"`
	ClientID     string `env:"ICONECT_CLIENT_ID" yaml:"clientId"`
	ClientSecret string `env:"ICONECT_CLIENT_SECRET" yaml:"clientSecret"`

	// Request pipeline tuning. Zero means "use the default"; negative
	// values are rejected by Validate.
	TimeoutMs    int `env:"ICONECT_TIMEOUT_MS" yaml:"timeoutMs"`
	MaxRetries   int `env:"ICONECT_MAX_RETRIES" yaml:"maxRetries"`
	RetryDelayMs int `env:"ICONECT_RETRY_DELAY_MS" yaml:"retryDelayMs"`

	// Process settings, not overridable per configure call.
	LogLevel   string `env:"ICONECT_LOG_LEVEL" yaml:"logLevel"`
	ListenAddr string `env:"ICONECT_LISTEN_ADDR" yaml:"listenAddr"`
}

// LoadOptions selects the files Load reads before the environment.
type LoadOptions struct {
	// EnvFile is loaded into the process environment via godotenv. When
	// empty, a .env in the working directory is loaded best-effort.
	EnvFile string

	// ConfigFile is an optional YAML settings file. Environment variables
	// take precedence over values from it.
	ConfigFile string
}

// warnInsecureEnvFile checks whether the env file (if present) has overly
// permissive permissions. On Unix systems, group or world readable files
// risk exposing the client secret to other users.
func warnInsecureEnvFile(path string) {
	if runtime.GOOS == "windows" {
		return
	}

	if path == "" {
		path = ".env"
	}

	info, err := os.Stat(path)
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: %s has insecure permissions %04o; recommended 0600", path, mode)
	}
}

// Load reads configuration from the optional files and the environment.
// Precedence, lowest to highest: built-in defaults, config file,
// environment variables.
func Load(opts LoadOptions) (*Settings, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", opts.EnvFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	warnInsecureEnvFile(opts.EnvFile)

	settings := &Settings{}

	if opts.ConfigFile != "" {
		raw, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", opts.ConfigFile, err)
		}

		if err := yaml.Unmarshal(raw, settings); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", opts.ConfigFile, err)
		}
	}

	if err := env.Parse(settings); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	settings.ApplyDefaults()

	return settings, nil
}

// ApplyDefaults fills unset tuning fields with the built-in defaults.
func (s *Settings) ApplyDefaults() {
	if s.TimeoutMs == 0 {
		s.TimeoutMs = DefaultTimeoutMs
	}

	if s.MaxRetries == 0 {
		s.MaxRetries = DefaultMaxRetries
	}

	if s.RetryDelayMs == 0 {
		s.RetryDelayMs = DefaultRetryDelayMs
	}

	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
}

// Merged returns a copy of s with every non-zero field of over taking
// precedence. Negative tuning values flow through so Validate can reject
// them instead of silently replacing them with defaults.
func (s Settings) Merged(over Settings) Settings {
	out := s

	if over.BaseURL != "" {
		out.BaseURL = over.BaseURL
	}

	if over.ClientID != "" {
		out.ClientID = over.ClientID
	}

	if over.ClientSecret != "" {
		out.ClientSecret = over.ClientSecret
	}

	if over.TimeoutMs != 0 {
		out.TimeoutMs = over.TimeoutMs
	}

	if over.MaxRetries != 0 {
		out.MaxRetries = over.MaxRetries
	}

	if over.RetryDelayMs != 0 {
		out.RetryDelayMs = over.RetryDelayMs
	}

	return out
}

// Validate checks the settings a configured session requires: a valid
// http(s) base URL, a client identifier, and positive tuning values.
func (s *Settings) Validate() error {
	if s.BaseURL == "" {
		return iconerr.New(iconerr.CodeConfiguration, "baseUrl is required")
	}

	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return iconerr.Newf(iconerr.CodeConfiguration, "baseUrl %q is not a valid http(s) URL", s.BaseURL)
	}

	if s.ClientID == "" {
		return iconerr.New(iconerr.CodeConfiguration, "clientId is required")
	}

	if s.TimeoutMs <= 0 {
		return iconerr.New(iconerr.CodeConfiguration, "timeoutMs must be positive")
	}

	if s.MaxRetries <= 0 {
		return iconerr.New(iconerr.CodeConfiguration, "maxRetries must be positive")
	}

	if s.RetryDelayMs <= 0 {
		return iconerr.New(iconerr.CodeConfiguration, "retryDelayMs must be positive")
	}

	return nil
}

// Timeout returns the per-request HTTP timeout as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// RetryDelay returns the delay between transient retries as a duration.
func (s Settings) RetryDelay() time.Duration {
	return time.Duration(s.RetryDelayMs) * time.Millisecond
}
