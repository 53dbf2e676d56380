// Package permission implements the Permission Gate: the four-mode
// restricted-tool authorization check the Tool Dispatcher runs before
// executing anything classified ToolRestricted.
package permission

import (
	"strings"

	"github.com/haasonsaas/nexus/pkg/models"
)

// ParseRule parses a "ToolName(arg-predicate)" string into a Rule. A bare
// tool name with no parens matches any invocation of that tool.
func ParseRule(raw string, source models.PermissionRuleSource) models.PermissionRule {
	raw = strings.TrimSpace(raw)
	rule := models.PermissionRule{Raw: raw, Source: source}

	open := strings.IndexByte(raw, '(')
	if open < 0 || !strings.HasSuffix(raw, ")") {
		rule.ToolName = raw
		return rule
	}

	rule.ToolName = strings.TrimSpace(raw[:open])
	rule.Predicate = strings.TrimSpace(raw[open+1 : len(raw)-1])
	return rule
}

// FormatRule renders a Rule back to its "ToolName(predicate)" form.
func FormatRule(toolName, predicate string) string {
	if predicate == "" {
		return toolName
	}
	return toolName + "(" + predicate + ")"
}

// ruleMatches reports whether rule authorizes a call to toolName with the
// given input string (the rendered command for Bash, or the tool's
// primary argument for other restricted tools).
func ruleMatches(rule models.PermissionRule, toolName, input string) bool {
	if rule.ToolName != toolName {
		return false
	}
	if rule.Predicate == "" {
		return true
	}
	return rule.Predicate == strings.TrimSpace(input)
}

// Match reports whether any rule in rules authorizes toolName invoked
// with input. This is the check the Permission Gate runs in default
// mode once the mode-level switch hasn't already settled the call.
func Match(rules []models.PermissionRule, toolName, input string) bool {
	for _, rule := range rules {
		if ruleMatches(rule, toolName, input) {
			return true
		}
	}
	return false
}

// SplitBashAnd splits a Bash command on top-level "&&" so that a compound
// command like "mkdir -p x && cd x" can be decomposed into sub-commands,
// each of which may be persisted as its own rule independently of whether
// the whole compound was considered safe. Splits only on bare "&&" outside
// of single or double quotes.
func SplitBashAnd(command string) []string {
	var parts []string
	var current strings.Builder
	var quote byte

	runes := []rune(command)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case quote != 0:
			current.WriteRune(c)
			if byte(c) == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = byte(c)
			current.WriteRune(c)
		case c == '&' && i+1 < len(runes) && runes[i+1] == '&':
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
			i++
		default:
			current.WriteRune(c)
		}
	}
	if tail := strings.TrimSpace(current.String()); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}
