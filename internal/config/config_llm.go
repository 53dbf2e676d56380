package config

import "time"

// LLMConfig tunes the LLMProvider client used to reach the gateway.
// Model selection itself (agent_model / fast_model) lives on
// SessionConfig, since the Turn Controller and Compression Engine pick
// models per call rather than per provider.
type LLMConfig struct {
	// RequestTimeout bounds a single model call, streaming included.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// MaxRetries is the number of retries on a retryable transport or
	// rate-limit error before the call is reported as failed.
	MaxRetries int `yaml:"max_retries"`
}

func applyLLMDefaults(cfg *LLMConfig) {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 120 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
}
