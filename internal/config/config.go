// Package config loads the process environment of the legacy bridge.
//
// Nothing here is persisted: every value comes from the environment at
// startup and lives for one session.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
)

// Config is the environment surface of the bridge.
type Config struct {
	// LogFile mirrors every legacy log message to this file when set.
	LogFile string `env:"IJ_LOG_FILE"`
	// Debug switches the zap logger to debug level.
	Debug bool `env:"LEGACY_BRIDGE_DEBUG"`
	// LegacyMode runs the engine without host notifications.
	LegacyMode bool `env:"LEGACY_BRIDGE_LEGACY_MODE"`
	// Unresolved selects what Map does with unregistered type names: "fail" or "skip".
	Unresolved string `env:"LEGACY_BRIDGE_UNRESOLVED" envDefault:"fail"`
	// PluginsDir is handed to the engine's plugin class loader at boot.
	PluginsDir string `env:"IJ_PLUGINS_DIR"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Unresolved = strings.ToLower(strings.TrimSpace(cfg.Unresolved))
	switch cfg.Unresolved {
	case "":
		cfg.Unresolved = "fail"
	case "fail", "skip":
	default:
		return nil, fmt.Errorf("invalid LEGACY_BRIDGE_UNRESOLVED %q (want fail or skip)", cfg.Unresolved)
	}

	return &cfg, nil
}

// Setting is a session-scoped string setting that can be cleared at runtime.
// The zero value is an unset setting.
type Setting struct {
	mu    sync.RWMutex
	value string
	set   bool
}

// NewSetting returns a setting holding value; an empty value leaves it unset.
func NewSetting(value string) *Setting {
	s := &Setting{}
	if value != "" {
		s.Set(value)
	}

	return s
}

// Get returns the value and whether it is set.
func (s *Setting) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.value, s.set
}

// Set stores value.
func (s *Setting) Set(value string) {
	s.mu.Lock()
	s.value, s.set = value, true
	s.mu.Unlock()
}

// Clear unsets the setting.
func (s *Setting) Clear() {
	s.mu.Lock()
	s.value, s.set = "", false
	s.mu.Unlock()
}
