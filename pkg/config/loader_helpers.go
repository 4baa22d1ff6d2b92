package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadAndMerge loads a YAML file and merges it into the config.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	mergeConfigs(cfg, &override, raw)
	return nil
}

// mergeConfigs merges override into base. Zero values keep the base value except for
// booleans explicitly present in raw.
func mergeConfigs(base, override *Config, raw map[string]any) {
	if override == nil {
		return
	}

	if override.Server.Bind != "" {
		base.Server.Bind = override.Server.Bind
	}
	if boolFieldSet(raw, "server", "allow_remote") {
		base.Server.AllowRemote = override.Server.AllowRemote
	}
	if fieldSet(raw, "server", "rate_limit") {
		base.Server.RateLimit = override.Server.RateLimit
	}
	if override.Server.RateBurst != 0 {
		base.Server.RateBurst = override.Server.RateBurst
	}
	if override.Server.MaxBodyBytes != 0 {
		base.Server.MaxBodyBytes = override.Server.MaxBodyBytes
	}
	if override.Server.ShutdownTimeout != 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}

	if fieldSet(raw, "session", "max_sessions") {
		base.Session.MaxSessions = override.Session.MaxSessions
	}
	if fieldSet(raw, "session", "idle_timeout") {
		base.Session.IdleTimeout = override.Session.IdleTimeout
	}
	if override.Session.ReapInterval != 0 {
		base.Session.ReapInterval = override.Session.ReapInterval
	}
	if override.Session.PollInterval != 0 {
		base.Session.PollInterval = override.Session.PollInterval
	}
	if override.Session.ResponsePoll != 0 {
		base.Session.ResponsePoll = override.Session.ResponsePoll
	}
	if override.Session.MaxFrameDepth != 0 {
		base.Session.MaxFrameDepth = override.Session.MaxFrameDepth
	}
	if fieldSet(raw, "session", "implicit_wait") {
		base.Session.ImplicitWait = override.Session.ImplicitWait
	}
	if override.Session.ScriptTimeout != 0 {
		base.Session.ScriptTimeout = override.Session.ScriptTimeout
	}
	if override.Session.PageLoadTimeout != 0 {
		base.Session.PageLoadTimeout = override.Session.PageLoadTimeout
	}
	if override.Session.InitialURL != "" {
		base.Session.InitialURL = override.Session.InitialURL
	}

	if override.Browser.UserAgent != "" {
		base.Browser.UserAgent = override.Browser.UserAgent
	}
	if override.Browser.HTTPTimeout != 0 {
		base.Browser.HTTPTimeout = override.Browser.HTTPTimeout
	}
	if override.Browser.ScriptTimeout != 0 {
		base.Browser.ScriptTimeout = override.Browser.ScriptTimeout
	}
	if override.Browser.MaxFrameDepth != 0 {
		base.Browser.MaxFrameDepth = override.Browser.MaxFrameDepth
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}
	if override.Logging.JournalDir != "" {
		base.Logging.JournalDir = override.Logging.JournalDir
	}
	if override.Logging.JournalLevel != "" {
		base.Logging.JournalLevel = override.Logging.JournalLevel
	}

	if boolFieldSet(raw, "telemetry", "tracing") {
		base.Telemetry.Tracing = override.Telemetry.Tracing
	}
	if override.Telemetry.TraceFile != "" {
		base.Telemetry.TraceFile = override.Telemetry.TraceFile
	}
	if override.Telemetry.HubRateLimit != 0 {
		base.Telemetry.HubRateLimit = override.Telemetry.HubRateLimit
	}
}

func boolFieldSet(raw map[string]any, path ...string) bool {
	return fieldSet(raw, path...)
}

// fieldSet reports whether the YAML document spells out path, so explicit zero values
// can override non-zero defaults.
func fieldSet(raw map[string]any, path ...string) bool {
	if len(path) == 0 || raw == nil {
		return false
	}
	current := any(raw)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		val, ok := m[key]
		if !ok {
			return false
		}
		current = val
	}
	return true
}

func expandHomeDir(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
