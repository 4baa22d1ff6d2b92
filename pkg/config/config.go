package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Default configuration values exported for documentation and validation
const (
	DefaultBind            = "127.0.0.1:4444"
	DefaultRateLimit       = 200.0
	DefaultRateBurst       = 50
	DefaultMaxBodyBytes    = 8 << 20
	DefaultShutdownTimeout = 10 * time.Second

	DefaultMaxSessions   = 16
	DefaultIdleTimeout   = 30 * time.Minute
	DefaultReapInterval  = time.Minute
	DefaultPollInterval  = 200 * time.Millisecond
	DefaultResponsePoll  = time.Millisecond
	DefaultMaxFrameDepth = 32
	DefaultScriptTimeout = 30 * time.Second
	DefaultPageLoad      = 300 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Config represents the complete webdriverd configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Session   SessionConfig   `yaml:"session"`
	Browser   BrowserConfig   `yaml:"browser"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the JSON wire front end.
type ServerConfig struct {
	Bind string `yaml:"bind"`
	// AllowRemote must be set to listen on a non-loopback address.
	AllowRemote     bool          `yaml:"allow_remote"`
	RateLimit       float64       `yaml:"rate_limit"` // requests per second, 0 disables
	RateBurst       int           `yaml:"rate_burst"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SessionConfig configures session workers and housekeeping.
type SessionConfig struct {
	MaxSessions     int           `yaml:"max_sessions"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ReapInterval    time.Duration `yaml:"reap_interval"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	ResponsePoll    time.Duration `yaml:"response_poll"`
	MaxFrameDepth   int           `yaml:"max_frame_depth"`
	ImplicitWait    time.Duration `yaml:"implicit_wait"`
	ScriptTimeout   time.Duration `yaml:"script_timeout"`
	PageLoadTimeout time.Duration `yaml:"page_load_timeout"`
	InitialURL      string        `yaml:"initial_url"`
}

// BrowserConfig configures the in-process reference browser.
type BrowserConfig struct {
	UserAgent     string        `yaml:"user_agent"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	ScriptTimeout time.Duration `yaml:"script_timeout"`
	MaxFrameDepth int           `yaml:"max_frame_depth"`
}

// LoggingConfig configures the operational log and the command journal.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// JournalDir enables per-session JSONL journals when set.
	JournalDir   string `yaml:"journal_dir"`
	JournalLevel string `yaml:"journal_level"`
}

// TelemetryConfig configures tracing and the event hub.
type TelemetryConfig struct {
	Tracing bool `yaml:"tracing"`
	// TraceFile receives exported spans; empty means stdout.
	TraceFile    string `yaml:"trace_file"`
	HubRateLimit int    `yaml:"hub_rate_limit"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Bind:            DefaultBind,
			RateLimit:       DefaultRateLimit,
			RateBurst:       DefaultRateBurst,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Session: SessionConfig{
			MaxSessions:     DefaultMaxSessions,
			IdleTimeout:     DefaultIdleTimeout,
			ReapInterval:    DefaultReapInterval,
			PollInterval:    DefaultPollInterval,
			ResponsePoll:    DefaultResponsePoll,
			MaxFrameDepth:   DefaultMaxFrameDepth,
			ScriptTimeout:   DefaultScriptTimeout,
			PageLoadTimeout: DefaultPageLoad,
			InitialURL:      "about:blank",
		},
		Browser: BrowserConfig{
			UserAgent:     "webdriverd-gojadom/1.0",
			HTTPTimeout:   30 * time.Second,
			ScriptTimeout: DefaultScriptTimeout,
			MaxFrameDepth: 8,
		},
		Logging: LoggingConfig{
			Level:        DefaultLogLevel,
			Format:       DefaultLogFormat,
			JournalLevel: "info",
		},
	}
}

// Load loads configuration from default locations with proper precedence:
// defaults, ~/.webdriverd/config.yaml, ./.webdriverd/config.yaml, then WEBDRIVERD_* env.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home != "" {
		userConfigPath := filepath.Join(home, ".webdriverd", "config.yaml")
		if err := loadAndMerge(cfg, userConfigPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	projectConfigPath := filepath.Join(".", ".webdriverd", "config.yaml")
	if err := loadAndMerge(cfg, projectConfigPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.Logging.JournalDir = expandHomeDir(cfg.Logging.JournalDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadAndMerge(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.Logging.JournalDir = expandHomeDir(cfg.Logging.JournalDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("WEBDRIVERD_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v, ok := envBool("WEBDRIVERD_ALLOW_REMOTE"); ok {
		cfg.Server.AllowRemote = v
	}
	if v := os.Getenv("WEBDRIVERD_MAX_SESSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WEBDRIVERD_MAX_SESSIONS: %w", err)
		}
		cfg.Session.MaxSessions = n
	}
	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"WEBDRIVERD_IDLE_TIMEOUT", &cfg.Session.IdleTimeout},
		{"WEBDRIVERD_POLL_INTERVAL", &cfg.Session.PollInterval},
		{"WEBDRIVERD_SCRIPT_TIMEOUT", &cfg.Session.ScriptTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.target = parsed
	}
	if v := os.Getenv("WEBDRIVERD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WEBDRIVERD_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("WEBDRIVERD_JOURNAL_DIR"); v != "" {
		cfg.Logging.JournalDir = v
	}
	if v, ok := envBool("WEBDRIVERD_TRACING"); ok {
		cfg.Telemetry.Tracing = v
	}
	return nil
}

func envBool(key string) (bool, bool) {
	val := os.Getenv(key)
	if val == "" {
		return false, false
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

func isLoopbackBindAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return false
	}
	switch strings.ToLower(host) {
	case "localhost":
		return true
	case "0.0.0.0", "::":
		return false
	default:
		ip := net.ParseIP(host)
		if ip == nil {
			return false
		}
		return ip.IsLoopback()
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Bind) == "" {
		return fmt.Errorf("server.bind is required")
	}
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("invalid server.bind %q: %w", c.Server.Bind, err)
	}
	if !isLoopbackBindAddress(c.Server.Bind) && !c.Server.AllowRemote {
		return fmt.Errorf("server.bind %s is not a loopback address; set server.allow_remote to expose it", c.Server.Bind)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be zero or positive")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		return fmt.Errorf("server.rate_burst must be positive when rate limiting")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}

	if c.Session.MaxSessions < 0 {
		return fmt.Errorf("session.max_sessions must be zero (unlimited) or positive")
	}
	if c.Session.PollInterval <= 0 {
		return fmt.Errorf("session.poll_interval must be positive")
	}
	if c.Session.ResponsePoll <= 0 {
		return fmt.Errorf("session.response_poll must be positive")
	}
	nonNegative := map[string]time.Duration{
		"session.idle_timeout":      c.Session.IdleTimeout,
		"session.reap_interval":     c.Session.ReapInterval,
		"session.implicit_wait":     c.Session.ImplicitWait,
		"session.script_timeout":    c.Session.ScriptTimeout,
		"session.page_load_timeout": c.Session.PageLoadTimeout,
		"browser.http_timeout":      c.Browser.HTTPTimeout,
		"browser.script_timeout":    c.Browser.ScriptTimeout,
	}
	for name, d := range nonNegative {
		if d < 0 {
			return fmt.Errorf("%s must be zero or positive", name)
		}
	}
	if c.Session.MaxFrameDepth < 0 || c.Browser.MaxFrameDepth < 0 {
		return fmt.Errorf("max_frame_depth must be zero or positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid logging.level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}
	if c.Logging.JournalLevel != "" && !validLevels[strings.ToLower(c.Logging.JournalLevel)] {
		return fmt.Errorf("invalid logging.journal_level: %s", c.Logging.JournalLevel)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging.format: %s (valid: json, console)", c.Logging.Format)
	}
	if c.Telemetry.HubRateLimit < 0 {
		return fmt.Errorf("telemetry.hub_rate_limit must be zero or positive")
	}
	return nil
}
