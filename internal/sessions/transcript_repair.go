package sessions

import (
	"github.com/haasonsaas/nexus/pkg/models"
)

// RepairReport summarizes what RepairTranscript changed while restoring a
// session from disk.
type RepairReport struct {
	// ClosedDanglingTools is the number of tool blocks that were left in a
	// non-terminal stage (process killed mid-write) and were closed out
	// with a synthetic error result.
	ClosedDanglingTools int
}

// RepairTranscript closes out any trailing tool block left in a
// non-terminal stage by a process that was killed mid-turn, so a restored
// session is always safe to hand back to the model: every tool_use the
// model sees has a matching result.
//
// Only the last message can have a dangling tool block, since every
// earlier message's turn has already ended by definition; but a restore
// scans from the end just in case more than one trailing message was
// left incomplete (e.g. an aborted subagent reference).
func RepairTranscript(messages []*models.Message) RepairReport {
	var report RepairReport

	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg == nil || msg.Role != models.RoleAssistant {
			continue
		}
		dangling := false
		for bi := range msg.Blocks {
			b := &msg.Blocks[bi]
			if b.Type != models.BlockTool {
				continue
			}
			if b.Stage == models.ToolStageEnd {
				continue
			}
			b.Stage = models.ToolStageEnd
			if b.Success == nil {
				f := false
				b.Success = &f
			}
			if b.Error == "" {
				b.Error = "tool result missing: session terminated before the tool call completed"
			}
			report.ClosedDanglingTools++
			dangling = true
		}
		// Only the trailing in-progress message can legitimately have a
		// dangling block; once we've handled one assistant message, stop
		// unless it too was mid-stream (blocks but zero content, e.g. the
		// process died before the first token).
		if !dangling {
			break
		}
	}

	return report
}
