package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/haasonsaas/nexus/internal/sessions"
	"github.com/haasonsaas/nexus/pkg/models"
)

// scriptedProvider replays one CompletionChunk stream per call to Complete,
// in order. Each entry in turns is the full set of chunks for that turn.
type scriptedProvider struct {
	turns [][]*CompletionChunk
	calls int
}

func (p *scriptedProvider) Complete(ctx context.Context, req *CompletionRequest) (<-chan *CompletionChunk, error) {
	if p.calls >= len(p.turns) {
		return nil, errors.New("scriptedProvider: no more turns scripted")
	}
	turn := p.turns[p.calls]
	p.calls++

	ch := make(chan *CompletionChunk, len(turn))
	for _, c := range turn {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func (p *scriptedProvider) Name() string       { return "scripted" }
func (p *scriptedProvider) Models() []Model    { return nil }
func (p *scriptedProvider) SupportsTools() bool { return true }

// echoTool returns its "value" input verbatim.
type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes its input" }
func (echoTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"value":{"type":"string"}},"required":["value"]}`)
}
func (echoTool) Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error) {
	var in struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, err
	}
	return &ToolResult{Content: in.Value}, nil
}

func newTestSession(t *testing.T, store sessions.Store, id string) *models.Session {
	t.Helper()
	sess, err := store.Create(context.Background(), id, t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return sess
}

func drain(chunks <-chan *ResponseChunk) (text string, toolResults []*ToolResult) {
	for c := range chunks {
		if c == nil {
			continue
		}
		text += c.Text
		if c.ToolResult != nil {
			toolResults = append(toolResults, c.ToolResult)
		}
	}
	return text, toolResults
}

func TestRuntime_Process_SimpleTextResponse(t *testing.T) {
	provider := &scriptedProvider{
		turns: [][]*CompletionChunk{
			{{Text: "hello there"}, {Done: true}},
		},
	}
	store := sessions.NewMemoryStore()
	runtime := NewRuntime(provider, store)

	session := newTestSession(t, store, "sess-1")
	msg := &models.Message{ID: "m1", Role: models.RoleUser, SessionID: session.ID, CreatedAt: time.Now()}
	msg.AppendBlock(models.NewTextBlock("hi"))

	chunks, err := runtime.Process(context.Background(), session, msg)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	text, _ := drain(chunks)
	if text != "hello there" {
		t.Errorf("text = %q, want %q", text, "hello there")
	}

	loaded, err := store.Load(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("expected 2 persisted messages (user + assistant), got %d", len(loaded.Messages))
	}
	if loaded.Messages[1].Role != models.RoleAssistant {
		t.Errorf("second message role = %q, want assistant", loaded.Messages[1].Role)
	}
	if got := loaded.Messages[1].Text(); got != "hello there" {
		t.Errorf("assistant text = %q, want %q", got, "hello there")
	}
}

func TestRuntime_Process_ToolCallLoop(t *testing.T) {
	provider := &scriptedProvider{
		turns: [][]*CompletionChunk{
			{
				{ToolCall: &ToolCall{ID: "call-1", Name: "echo", Input: json.RawMessage(`{"value":"ping"}`)}},
				{Done: true},
			},
			{
				{Text: "the tool said: ping"},
				{Done: true},
			},
		},
	}
	store := sessions.NewMemoryStore()
	runtime := NewRuntime(provider, store)
	runtime.RegisterTool(echoTool{})

	session := newTestSession(t, store, "sess-2")
	msg := &models.Message{ID: "m1", Role: models.RoleUser, SessionID: session.ID, CreatedAt: time.Now()}
	msg.AppendBlock(models.NewTextBlock("please echo ping"))

	chunks, err := runtime.Process(context.Background(), session, msg)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	text, toolResults := drain(chunks)
	if text != "the tool said: ping" {
		t.Errorf("text = %q, want %q", text, "the tool said: ping")
	}
	if len(toolResults) != 1 || toolResults[0].Content != "ping" {
		t.Fatalf("toolResults = %+v, want single result with content %q", toolResults, "ping")
	}

	loaded, err := store.Load(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// user, assistant(tool-call), tool(result), assistant(final text)
	if len(loaded.Messages) != 4 {
		t.Fatalf("expected 4 persisted messages, got %d", len(loaded.Messages))
	}
	toolBlock := loaded.Messages[1].FindToolBlock("call-1")
	if toolBlock == nil {
		t.Fatal("expected a tool block for call-1 on the assistant message")
	}
	if toolBlock.Name != "echo" {
		t.Errorf("tool block name = %q, want echo", toolBlock.Name)
	}
	if loaded.Messages[2].Role != models.RoleTool {
		t.Errorf("third message role = %q, want tool", loaded.Messages[2].Role)
	}
	resultBlock := loaded.Messages[2].FindToolBlock("call-1")
	if resultBlock == nil || resultBlock.Result != "ping" {
		t.Fatalf("expected tool result block with Result=%q, got %+v", "ping", resultBlock)
	}
}

func TestRuntime_Process_ApprovalDenied(t *testing.T) {
	provider := &scriptedProvider{
		turns: [][]*CompletionChunk{
			{
				{ToolCall: &ToolCall{ID: "call-1", Name: "echo", Input: json.RawMessage(`{"value":"ping"}`)}},
				{Done: true},
			},
			{
				{Text: "done"},
				{Done: true},
			},
		},
	}
	store := sessions.NewMemoryStore()

	checker := NewApprovalChecker(&ApprovalPolicy{
		Denylist:        []string{"echo"},
		DefaultDecision: ApprovalAllowed,
	})
	opts := DefaultRuntimeOptions()
	opts.ApprovalChecker = checker
	runtime := NewRuntimeWithOptions(provider, store, opts)
	runtime.RegisterTool(echoTool{})

	session := newTestSession(t, store, "sess-3")
	msg := &models.Message{ID: "m1", Role: models.RoleUser, SessionID: session.ID, CreatedAt: time.Now()}
	msg.AppendBlock(models.NewTextBlock("please echo ping"))

	chunks, err := runtime.Process(context.Background(), session, msg)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	drain(chunks)

	loaded, err := store.Load(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var toolMsg *models.Message
	for _, m := range loaded.Messages {
		if m.Role == models.RoleTool {
			toolMsg = m
			break
		}
	}
	if toolMsg == nil {
		t.Fatal("expected a persisted tool-result message")
	}
	resultBlock := toolMsg.FindToolBlock("call-1")
	if resultBlock == nil || resultBlock.Success == nil || *resultBlock.Success {
		t.Fatalf("expected a failed tool block for the denied call, got %+v", resultBlock)
	}
}

func TestRuntime_Process_MultiTurnHistoryPersists(t *testing.T) {
	provider := &scriptedProvider{
		turns: [][]*CompletionChunk{
			{{Text: "first reply"}, {Done: true}},
			{{Text: "second reply"}, {Done: true}},
		},
	}
	store := sessions.NewMemoryStore()
	runtime := NewRuntime(provider, store)

	session := newTestSession(t, store, "sess-4")

	msg1 := &models.Message{ID: "m1", Role: models.RoleUser, SessionID: session.ID, CreatedAt: time.Now()}
	msg1.AppendBlock(models.NewTextBlock("first question"))
	chunks1, err := runtime.Process(context.Background(), session, msg1)
	if err != nil {
		t.Fatalf("Process turn 1: %v", err)
	}
	drain(chunks1)

	msg2 := &models.Message{ID: "m2", Role: models.RoleUser, SessionID: session.ID, CreatedAt: time.Now()}
	msg2.AppendBlock(models.NewTextBlock("second question"))
	chunks2, err := runtime.Process(context.Background(), session, msg2)
	if err != nil {
		t.Fatalf("Process turn 2: %v", err)
	}
	text2, _ := drain(chunks2)
	if text2 != "second reply" {
		t.Errorf("turn 2 text = %q, want %q", text2, "second reply")
	}

	loaded, err := store.Load(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Messages) != 4 {
		t.Fatalf("expected 4 persisted messages across both turns, got %d", len(loaded.Messages))
	}
	if provider.calls != 2 {
		t.Errorf("provider called %d times, want 2", provider.calls)
	}
}
