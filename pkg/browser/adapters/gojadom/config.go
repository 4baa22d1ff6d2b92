package gojadom

import (
	"errors"
	"strings"
	"time"
)

// Config controls the in-process reference browser.
type Config struct {
	UserAgent     string
	ScriptTimeout time.Duration
	HTTPTimeout   time.Duration
	// MaxFrameDepth bounds iframe nesting; deeper iframes are left unloaded.
	MaxFrameDepth int
	// Loader fetches documents. Nil uses DefaultLoader.
	Loader Loader
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		UserAgent:     "webdriverd-gojadom/1.0",
		ScriptTimeout: 30 * time.Second,
		HTTPTimeout:   30 * time.Second,
		MaxFrameDepth: 8,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.UserAgent) != "" {
		defaults.UserAgent = c.UserAgent
	}
	if c.ScriptTimeout != 0 {
		defaults.ScriptTimeout = c.ScriptTimeout
	}
	if c.HTTPTimeout != 0 {
		defaults.HTTPTimeout = c.HTTPTimeout
	}
	if c.MaxFrameDepth != 0 {
		defaults.MaxFrameDepth = c.MaxFrameDepth
	}
	defaults.Loader = c.Loader
	if defaults.Loader == nil {
		defaults.Loader = DefaultLoader(defaults.HTTPTimeout, defaults.UserAgent)
	}
	return defaults
}

// Validate checks whether the config is usable.
func (c Config) Validate() error {
	if c.ScriptTimeout < 0 {
		return errors.New("script_timeout must be zero or positive")
	}
	if c.HTTPTimeout < 0 {
		return errors.New("http_timeout must be zero or positive")
	}
	if c.MaxFrameDepth < 0 {
		return errors.New("max_frame_depth must be zero or positive")
	}
	return nil
}
