package config

// SessionConfig controls how the Turn Controller manages a session:
// model selection, the compression trigger threshold, the permission
// gate's default mode, and where session transcripts are stored on
// disk.
type SessionConfig struct {
	// AgentModel is the primary model used for turns.
	AgentModel string `yaml:"agent_model"`
	// FastModel is the cheaper model used by the Compression Engine's
	// secondary summarization call.
	FastModel string `yaml:"fast_model"`

	// MaxInputTokens is the compression trigger threshold: once
	// prompt_tokens+completion_tokens from a model call exceeds this,
	// the Compression Engine runs before the next recursion. Unifies the
	// legacy "token_limit" name from earlier config versions.
	MaxInputTokens int64 `yaml:"max_input_tokens"`

	// FreshWindow is the number of most recent messages the Compression
	// Engine always keeps verbatim.
	FreshWindow int `yaml:"fresh_window"`

	// PermissionMode is the default Permission Gate mode for new
	// sessions: default, acceptEdits, bypassPermissions, or plan.
	PermissionMode string `yaml:"permission_mode"`

	// Dir is the root directory session transcripts are stored under.
	// Empty means DefaultSessionRoot(workdir) is used.
	Dir string `yaml:"dir"`
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.AgentModel == "" {
		cfg.AgentModel = "claude-sonnet-4-5"
	}
	if cfg.FastModel == "" {
		cfg.FastModel = "claude-haiku-4-5"
	}
	if cfg.MaxInputTokens == 0 {
		cfg.MaxInputTokens = 96000
	}
	if cfg.FreshWindow == 0 {
		cfg.FreshWindow = 7
	}
	if cfg.PermissionMode == "" {
		cfg.PermissionMode = "default"
	}
}
