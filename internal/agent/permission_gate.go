package agent

import (
	"encoding/json"
	"strings"

	"github.com/haasonsaas/nexus/internal/permission"
	"github.com/haasonsaas/nexus/pkg/models"
)

// renderToolInput extracts the string a permission rule's predicate matches
// against: a Bash-like tool's command field, or the raw JSON input otherwise.
func renderToolInput(tc ToolCall) string {
	var in struct {
		Command string `json:"command"`
	}
	if json.Unmarshal(tc.Input, &in) == nil && in.Command != "" {
		return in.Command
	}
	return strings.TrimSpace(string(tc.Input))
}

// permissionGate implements the Permission Gate's four-mode switch. It
// settles unrestricted tools and mode-level decisions (bypassPermissions,
// plan, acceptEdits) on its own; a restricted tool in default mode that
// doesn't match a persisted rule resolves to ApprovalPending, leaving the
// dispatcher's ApprovalChecker as the user-callback fallback.
func (r *Runtime) permissionGate(opts RuntimeOptions, tc ToolCall) (ApprovalDecision, string) {
	if r.tools.ClassificationOf(tc.Name) == models.ToolUnrestricted {
		return ApprovalAllowed, "unrestricted tool"
	}

	switch opts.PermissionMode {
	case models.PermissionModeBypassPermissions:
		return ApprovalAllowed, "bypassPermissions mode"

	case models.PermissionModePlan:
		planExitTool := opts.PlanExitTool
		if planExitTool == "" {
			planExitTool = defaultPlanExitTool
		}
		if tc.Name == planExitTool {
			return ApprovalAllowed, "plan exit tool"
		}
		return ApprovalDenied, "plan mode disallows effectful tools"

	case models.PermissionModeAcceptEdits:
		if matchesToolPatterns(opts.AcceptEditsTools, tc.Name, nil) {
			return ApprovalAllowed, "acceptEdits mode"
		}
	}

	if opts.PermissionRuleStore != nil {
		rules := opts.PermissionRuleStore.Load()
		if permission.Match(rules, tc.Name, renderToolInput(tc)) {
			return ApprovalAllowed, "matched persisted rule"
		}
	}

	return ApprovalPending, "no matching permission rule"
}
