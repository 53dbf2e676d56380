// Package compaction implements the Compression Engine: it picks the
// compression boundary, summarises the older prefix via a secondary
// ("fast") model call, and splices the summary back into a message list
// while leaving session history on disk intact.
package compaction

import (
	"context"
	"fmt"

	"github.com/haasonsaas/nexus/pkg/models"
)

// FreshWindow is the number of most-recent messages that are always kept
// verbatim and never summarised.
const FreshWindow = 7

// MinRangeSize is the minimum number of messages a compressible range must
// contain before compression is worth doing.
const MinRangeSize = 1

// CharsPerToken is the character-to-token ratio used for the rough token
// estimate that decides whether compression is worth attempting at all.
const CharsPerToken = 4

// Summarizer generates a natural-language summary of a range of messages.
// The concrete implementation calls a secondary, cheaper ("fast") model.
type Summarizer interface {
	Summarize(ctx context.Context, wireMessages []WireMessage, instructions string) (summary string, usage models.Usage, err error)
}

// WireMessage is the minimal projection of a Message a Summarizer needs:
// role plus flattened text content, including a synthesized system
// message carrying any prior compression summary for continuity.
type WireMessage struct {
	Role    string
	Content string
}

// Plan describes a boundary selection: the range to summarise and where
// the new compress Block should be spliced in.
type Plan struct {
	// RangeStart and RangeEnd are the half-open [start, end) message
	// indices to summarise. RangeEnd == SpliceIndex.
	RangeStart  int
	RangeEnd    int
	SpliceIndex int
}

// FindLatestCompressBlock returns the index of the message containing the
// most recent compress Block, or -1 if none exists.
func FindLatestCompressBlock(messages []*models.Message) int {
	for i := len(messages) - 1; i >= 0; i-- {
		for _, b := range messages[i].Blocks {
			if b.Type == models.BlockCompress {
				return i
			}
		}
	}
	return -1
}

// PlanCompression implements steps 1-3 of the algorithm: keep the last
// FreshWindow messages verbatim, find the latest compress boundary K, and
// propose summarising (K, N-FreshWindow]. Returns ok=false if the range is
// empty or below the minimum threshold, in which case compaction should be
// skipped for this turn.
func PlanCompression(messages []*models.Message) (plan Plan, ok bool) {
	n := len(messages)
	spliceIndex := n - FreshWindow
	if spliceIndex <= 0 {
		return Plan{}, false
	}

	k := FindLatestCompressBlock(messages)
	rangeStart := k + 1
	if rangeStart >= spliceIndex {
		return Plan{}, false
	}
	if spliceIndex-rangeStart < MinRangeSize {
		return Plan{}, false
	}

	return Plan{RangeStart: rangeStart, RangeEnd: spliceIndex, SpliceIndex: spliceIndex}, true
}

// ProjectForSummary turns the planned range into wire messages for the
// summarizer call, prefixing any prior compression summary as a system
// message so the fast model has continuity with earlier compactions.
func ProjectForSummary(messages []*models.Message, plan Plan) []WireMessage {
	var out []WireMessage

	if plan.RangeStart > 0 {
		if prior := messages[plan.RangeStart-1]; prior != nil {
			for _, b := range prior.Blocks {
				if b.Type == models.BlockCompress {
					out = append(out, WireMessage{Role: "system", Content: "Summary of earlier conversation:\n" + b.Content})
				}
			}
		}
	}

	for i := plan.RangeStart; i < plan.RangeEnd; i++ {
		msg := messages[i]
		if msg == nil {
			continue
		}
		text := msg.Text()
		if text == "" {
			continue
		}
		out = append(out, WireMessage{Role: string(msg.Role), Content: text})
	}
	return out
}

// DefaultSummarizationInstructions is the prompt sent to the fast model
// alongside the projected range.
const DefaultSummarizationInstructions = "Summarize the conversation so far in a few dense paragraphs, preserving " +
	"concrete facts, file paths, decisions, and open threads. The summary replaces the raw transcript for " +
	"this range, so do not omit anything a continuation of this conversation would need."

// Result carries the outcome of a successful compaction.
type Result struct {
	Plan    Plan
	Block   models.Block
	Message *models.Message
	Usage   models.Usage
}

// Compact runs the full Compression Engine algorithm against messages for
// sessionID. It is best-effort: the caller should log and continue on
// error rather than fail the turn (spec: "failure logs and continues
// without summarising").
func Compact(ctx context.Context, sessionID string, messages []*models.Message, summarizer Summarizer) (*Result, error) {
	plan, ok := PlanCompression(messages)
	if !ok {
		return nil, nil
	}
	if summarizer == nil {
		return nil, fmt.Errorf("compaction: no summarizer configured")
	}

	wire := ProjectForSummary(messages, plan)
	summary, usage, err := summarizer.Summarize(ctx, wire, DefaultSummarizationInstructions)
	if err != nil {
		return nil, fmt.Errorf("compaction: summarize: %w", err)
	}
	usage.OperationType = models.OperationCompress

	block := models.Block{Type: models.BlockCompress, Content: summary, SessionID: sessionID}
	msg := &models.Message{Role: models.RoleAssistant, Blocks: []models.Block{block}, Usage: &usage, SessionID: sessionID}

	return &Result{Plan: plan, Block: block, Message: msg, Usage: usage}, nil
}

// ShouldCompress reports whether the Turn Controller's compression
// trigger has fired: prompt_tokens + completion_tokens exceeds
// maxInputTokens after a model call.
func ShouldCompress(usage models.Usage, maxInputTokens int64) bool {
	if maxInputTokens <= 0 {
		return false
	}
	return usage.PromptTokens+usage.CompletionTokens > maxInputTokens
}

// EstimateTokens gives a rough character-based token estimate for content
// that hasn't gone through the model yet (used only to decide whether a
// proposed range is worth sending to the fast model at all; the
// authoritative count always comes from the provider's usage response).
func EstimateTokens(content string) int {
	return (len(content) + CharsPerToken - 1) / CharsPerToken
}
