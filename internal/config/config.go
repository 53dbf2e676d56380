package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/haasonsaas/nexus/pkg/models"
)

// Config is the full, resolved configuration for a wave-agent runtime
// instance: the dynamic gateway connection settings, model selection,
// loop/compression tuning, session storage location, and logging. It is
// the decoded shape of the YAML/JSON5 settings tree loaded by Load (see
// loader.go); Gateway-level fields are additionally overridable by
// environment variables and programmatic setters at runtime (see
// config_gateway.go), since those need to change without a process
// restart.
type Config struct {
	Version int `yaml:"version"`

	Gateway GatewayConfig `yaml:"gateway"`
	LLM     LLMConfig     `yaml:"llm"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
	Hooks   HooksConfig   `yaml:"hooks"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|text
}

// HooksConfig controls the Hook Engine's default timeout.
type HooksConfig struct {
	DefaultTimeout time.Duration `yaml:"default_timeout"`
	MaxTimeout     time.Duration `yaml:"max_timeout"`
}

// Load reads path (YAML, JSON, or JSON5, by extension) through the
// $include-aware loader, decodes it strictly, validates its version, and
// applies defaults.
func Load(path string) (*Config, error) {
	raw, err := LoadRaw(path)
	if err != nil {
		return nil, err
	}

	cfg, err := decodeRawConfig(raw)
	if err != nil {
		return nil, err
	}

	if err := ValidateVersion(cfg.Version); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyGatewayDefaults(&cfg.Gateway)
	applyLLMDefaults(&cfg.LLM)
	applySessionDefaults(&cfg.Session)
	applyLoggingDefaults(&cfg.Logging)
	applyHooksDefaults(&cfg.Hooks)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
}

func applyHooksDefaults(cfg *HooksConfig) {
	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = 10 * time.Second
	}
	if cfg.MaxTimeout == 0 {
		cfg.MaxTimeout = 300 * time.Second
	}
}

// ConfigValidationError aggregates every validation problem found in a
// Config so a user sees all of them in a single error, not one-at-a-time.
type ConfigValidationError struct {
	Issues []string
}

func (e *ConfigValidationError) Error() string {
	return "config validation failed:\n- " + strings.Join(e.Issues, "\n- ")
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	var issues []string

	if cfg.Session.PermissionMode != "" && !models.ValidPermissionMode(models.PermissionMode(cfg.Session.PermissionMode)) {
		issues = append(issues, fmt.Sprintf("session.permission_mode %q must be one of default, acceptEdits, bypassPermissions, plan", cfg.Session.PermissionMode))
	}
	if cfg.Session.MaxInputTokens < 0 {
		issues = append(issues, "session.max_input_tokens must be >= 0")
	}
	if cfg.Session.FreshWindow < 0 {
		issues = append(issues, "session.fresh_window must be >= 0")
	}
	if cfg.Hooks.DefaultTimeout < 0 || cfg.Hooks.DefaultTimeout > cfg.Hooks.MaxTimeout {
		issues = append(issues, "hooks.default_timeout must be >= 0 and <= hooks.max_timeout")
	}

	if len(issues) > 0 {
		return &ConfigValidationError{Issues: issues}
	}
	return nil
}
