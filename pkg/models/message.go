// Package models provides the domain types shared across the wave-agent
// runtime: the Block/Message conversation model, Session metadata, Usage
// accounting, and the small value types (Tool, PermissionRule,
// BackgroundTask, SubagentInstance) the rest of the engine builds on.
package models

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// BlockType discriminates the tagged Block variant. Consumers must switch
// on Type, never infer the variant from which optional field is set.
type BlockType string

const (
	BlockText     BlockType = "text"
	BlockTool     BlockType = "tool"
	BlockError    BlockType = "error"
	BlockCompress BlockType = "compress"
	BlockSubagent BlockType = "subagent"
)

// ToolStage is the nested ordered enum a tool Block moves through while
// streaming. Stages only move forward: start -> streaming* -> running -> end.
type ToolStage string

const (
	ToolStageStart     ToolStage = "start"
	ToolStageStreaming ToolStage = "streaming"
	ToolStageRunning   ToolStage = "running"
	ToolStageEnd       ToolStage = "end"
)

// SubagentStatus tracks a subagent block's child-session lifecycle.
type SubagentStatus string

const (
	SubagentStatusRunning   SubagentStatus = "running"
	SubagentStatusCompleted SubagentStatus = "completed"
	SubagentStatusFailed    SubagentStatus = "failed"
)

// Block is the unit of Message content. Exactly one payload group below is
// meaningful, selected by Type. Unmarshaling tolerates unknown fields so
// future block variants round-trip through session storage without loss.
type Block struct {
	Type BlockType `json:"type"`

	// text / error
	Content string `json:"content,omitempty"`

	// tool
	ID                     string    `json:"id,omitempty"`
	Name                   string    `json:"name,omitempty"`
	ParametersJSON         string    `json:"parameters_json_string,omitempty"`
	ParametersChunk        string    `json:"parameters_chunk,omitempty"`
	Stage                  ToolStage `json:"stage,omitempty"`
	Success                *bool     `json:"success,omitempty"`
	Result                 string    `json:"result,omitempty"`
	Error                  string    `json:"error,omitempty"`
	IsManuallyBackgrounded bool      `json:"is_manually_backgrounded,omitempty"`
	BackgroundTaskID       string    `json:"background_task_id,omitempty"`

	// compress
	SessionID string `json:"session_id,omitempty"`

	// subagent
	SubagentID    string          `json:"subagent_id,omitempty"`
	SubagentName  string          `json:"subagent_name,omitempty"`
	Status        SubagentStatus  `json:"status,omitempty"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

// NewTextBlock builds a finalized text Block.
func NewTextBlock(content string) Block {
	return Block{Type: BlockText, Content: content}
}

// NewErrorBlock builds a finalized error Block.
func NewErrorBlock(content string) Block {
	return Block{Type: BlockError, Content: content}
}

// NewToolBlockStart builds a tool Block at its initial streaming stage.
func NewToolBlockStart(id, name string) Block {
	return Block{Type: BlockTool, ID: id, Name: name, Stage: ToolStageStart}
}

// Attachment represents an inline image attached to a user Message.
type Attachment struct {
	Type     string `json:"type"` // "image" today; reserved for future kinds
	MimeType string `json:"mime_type,omitempty"`
	Data     string `json:"data,omitempty"` // base64-encoded payload
	URL      string `json:"url,omitempty"`
}

// OperationType classifies which subsystem produced a Usage record.
type OperationType string

const (
	OperationAgent    OperationType = "agent"
	OperationCompress OperationType = "compress"
	OperationSubagent OperationType = "subagent"
)

// Usage is a single token-accounting record, appended to a session's Usage
// list whenever the model returns usage alongside a response.
type Usage struct {
	PromptTokens     int64         `json:"prompt_tokens"`
	CompletionTokens int64         `json:"completion_tokens"`
	TotalTokens      int64         `json:"total_tokens"`
	Model            string        `json:"model,omitempty"`
	OperationType    OperationType `json:"operation_type"`
	RecordedAt       time.Time     `json:"recorded_at,omitempty"`
}

// Message is an ordered sequence of Blocks authored by a single Role. Once
// finalised (the streaming turn that produced it has ended) a Message is
// never mutated in place; only the trailing in-progress assistant Message
// may still be mutated by the store.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Blocks    []Block   `json:"blocks"`
	Usage     *Usage    `json:"usage,omitempty"`
	SessionID string    `json:"session_id,omitempty"` // set for subagent cross-reference messages
	CreatedAt time.Time `json:"created_at"`
}

// AppendBlock appends a new Block to the Message.
func (m *Message) AppendBlock(b Block) {
	m.Blocks = append(m.Blocks, b)
}

// LastBlock returns a pointer to the trailing Block, or nil if empty.
func (m *Message) LastBlock() *Block {
	if len(m.Blocks) == 0 {
		return nil
	}
	return &m.Blocks[len(m.Blocks)-1]
}

// FindToolBlock locates a tool Block by its tool-call ID.
func (m *Message) FindToolBlock(toolCallID string) *Block {
	for i := range m.Blocks {
		if m.Blocks[i].Type == BlockTool && m.Blocks[i].ID == toolCallID {
			return &m.Blocks[i]
		}
	}
	return nil
}

// Text concatenates every text Block's content, in order.
func (m *Message) Text() string {
	var out string
	for _, b := range m.Blocks {
		if b.Type == BlockText {
			out += b.Content
		}
	}
	return out
}

// SessionMetadata is the persisted, restorable metadata for a Session.
type SessionMetadata struct {
	Workdir           string    `json:"workdir"`
	LastActiveAt      time.Time `json:"lastActiveAt"`
	LatestTotalTokens int64     `json:"latestTotalTokens"`
}

// Session is the top-level conversation entity: an identifier, a working
// directory, and the ordered Messages it owns. The on-disk sequence is
// always a prefix of the in-memory sequence; see the sessions package.
type Session struct {
	ID        string          `json:"id"`
	Metadata  SessionMetadata `json:"metadata"`
	Messages  []*Message      `json:"messages"`
	Usages    []Usage         `json:"-"`
	CreatedAt time.Time       `json:"createdAt"`

	// Extra preserves unknown top-level fields encountered on restore so a
	// re-save never silently drops forward-compatible data.
	Extra map[string]json.RawMessage `json:"-"`
}

// ToolClassification determines whether a Tool must pass the Permission Gate.
type ToolClassification string

const (
	ToolRestricted   ToolClassification = "restricted"
	ToolUnrestricted ToolClassification = "unrestricted"
)

// Tool describes a single callable tool: its wire schema, its handler, and
// whether it requires permission approval before it can run.
type Tool struct {
	Name           string
	Description    string
	Schema         json.RawMessage
	Classification ToolClassification
}

// PermissionMode controls how the Permission Gate treats restricted tools.
type PermissionMode string

const (
	PermissionModeDefault           PermissionMode = "default"
	PermissionModeAcceptEdits       PermissionMode = "acceptEdits"
	PermissionModeBypassPermissions PermissionMode = "bypassPermissions"
	PermissionModePlan              PermissionMode = "plan"
)

// ValidPermissionMode reports whether m is one of the four known modes.
func ValidPermissionMode(m PermissionMode) bool {
	switch m {
	case PermissionModeDefault, PermissionModeAcceptEdits, PermissionModeBypassPermissions, PermissionModePlan:
		return true
	default:
		return false
	}
}

// PermissionRuleSource identifies which settings file a rule was loaded from.
type PermissionRuleSource string

const (
	RuleSourceUser         PermissionRuleSource = "user"
	RuleSourceWorkdir      PermissionRuleSource = "workdir"
	RuleSourceWorkdirLocal PermissionRuleSource = "workdir-local"
)

// PermissionRule is a parsed "ToolName(arg-predicate)" pattern, e.g.
// "Bash(whoami)". An empty predicate matches any invocation of the tool.
type PermissionRule struct {
	Raw       string               `json:"rule"`
	ToolName  string               `json:"-"`
	Predicate string               `json:"-"`
	Source    PermissionRuleSource `json:"-"`
}

// BackgroundTaskKind distinguishes shell-backed tasks from generic async tools.
type BackgroundTaskKind string

const (
	BackgroundKindShell BackgroundTaskKind = "shell"
	BackgroundKindTask  BackgroundTaskKind = "task"
)

// BackgroundTaskStatus is the lifecycle state of a BackgroundTask.
type BackgroundTaskStatus string

const (
	BackgroundRunning   BackgroundTaskStatus = "running"
	BackgroundCompleted BackgroundTaskStatus = "completed"
	BackgroundFailed    BackgroundTaskStatus = "failed"
	BackgroundKilled    BackgroundTaskStatus = "killed"
)

// Terminal reports whether the status is one that will not change again.
func (b BackgroundTaskStatus) Terminal() bool {
	switch b {
	case BackgroundCompleted, BackgroundFailed, BackgroundKilled:
		return true
	default:
		return false
	}
}

// BackgroundTask is a long-running tool invocation that outlives the turn
// that spawned it; its completion triggers a fresh turn via a synthetic
// tool-result message (see the Turn Controller's background-completion rule).
type BackgroundTask struct {
	ID         string
	Kind       BackgroundTaskKind
	Status     BackgroundTaskStatus
	SessionID  string
	Command    string
	ExitCode   *int
	StartedAt  time.Time
	FinishedAt time.Time
}

// SubagentConfiguration describes how a child Turn Controller should run:
// its persona, the tools it may call, and which model it should use.
type SubagentConfiguration struct {
	Name         string   `json:"name"`
	SystemPrompt string   `json:"system_prompt"`
	Tools        []string `json:"tools,omitempty"`
	Model        string   `json:"model,omitempty"` // "inherit" or a concrete model name
}

// SubagentInstance links a parent session to a child session running under
// a SubagentConfiguration.
type SubagentInstance struct {
	ID            string
	Name          string
	Status        SubagentStatus
	SessionID     string
	ParentID      string
	Configuration SubagentConfiguration
}
