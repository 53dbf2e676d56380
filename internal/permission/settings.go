package permission

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/haasonsaas/nexus/pkg/models"
)

// settingsFile is the on-disk shape of .wave/settings.json and
// .wave/settings.local.json: permission rules, the default permission
// mode, hook commands, and environment overrides.
type settingsFile struct {
	Permissions struct {
		Allow       []string `json:"allow"`
		DefaultMode string   `json:"defaultMode"`
	} `json:"permissions"`
	Hooks json.RawMessage   `json:"hooks"`
	Env   map[string]string `json:"env"`
}

func readSettingsFile(path string) (settingsFile, bool) {
	var out settingsFile
	data, err := os.ReadFile(path)
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false
	}
	return out, true
}

// SettingsPaths locates the three settings files the Permission Gate
// merges rules from, given the workdir of the current session.
type SettingsPaths struct {
	Workdir      string
	WorkdirLocal string
	User         string
}

// DefaultSettingsPaths resolves the standard <workdir>/.wave/settings*.json
// and <home>/.wave/settings.json locations.
func DefaultSettingsPaths(workdir string) (SettingsPaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return SettingsPaths{}, err
	}
	return SettingsPaths{
		Workdir:      filepath.Join(workdir, ".wave", "settings.json"),
		WorkdirLocal: filepath.Join(workdir, ".wave", "settings.local.json"),
		User:         filepath.Join(home, ".wave", "settings.json"),
	}, nil
}

// RuleStore loads the merged rule set from disk and serializes writes to
// settings.local.json through an in-process queue, so concurrent
// "newPermissionRule" persists from different tool calls never tear the
// JSON file.
type RuleStore struct {
	mu    sync.Mutex
	paths SettingsPaths
}

// NewRuleStore creates a RuleStore rooted at paths.
func NewRuleStore(paths SettingsPaths) *RuleStore {
	return &RuleStore{paths: paths}
}

// Load reads and merges rules from the user, workdir, and workdir-local
// settings files, in that precedence order (workdir-local rules are
// listed last so runtime-persisted rules are easy to find, but all three
// sources are checked for a match — precedence doesn't matter for
// matching, only for which file a new rule is written to).
func (s *RuleStore) Load() []models.PermissionRule {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rules []models.PermissionRule
	rules = append(rules, loadRules(s.paths.User, models.RuleSourceUser)...)
	rules = append(rules, loadRules(s.paths.Workdir, models.RuleSourceWorkdir)...)
	rules = append(rules, loadRules(s.paths.WorkdirLocal, models.RuleSourceWorkdirLocal)...)
	return rules
}

func loadRules(path string, source models.PermissionRuleSource) []models.PermissionRule {
	file, ok := readSettingsFile(path)
	if !ok {
		return nil
	}
	rules := make([]models.PermissionRule, 0, len(file.Permissions.Allow))
	for _, raw := range file.Permissions.Allow {
		rules = append(rules, ParseRule(raw, source))
	}
	return rules
}

// DefaultMode reads permissions.defaultMode from the workdir settings
// file, falling back to the user settings file, then to "".
func (s *RuleStore) DefaultMode() models.PermissionMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	if file, ok := readSettingsFile(s.paths.Workdir); ok && file.Permissions.DefaultMode != "" {
		return models.PermissionMode(file.Permissions.DefaultMode)
	}
	if file, ok := readSettingsFile(s.paths.User); ok && file.Permissions.DefaultMode != "" {
		return models.PermissionMode(file.Permissions.DefaultMode)
	}
	return ""
}

// PersistRule appends rule to settings.local.json, creating the file (and
// its parent directory) if it doesn't exist yet. Held under the store's
// mutex so two concurrent allow-with-newPermissionRule decisions never
// race on the read-modify-write.
func (s *RuleStore) PersistRule(rule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, _ := readSettingsFile(s.paths.WorkdirLocal)
	for _, existing := range file.Permissions.Allow {
		if existing == rule {
			return nil
		}
	}
	file.Permissions.Allow = append(file.Permissions.Allow, rule)

	if err := os.MkdirAll(filepath.Dir(s.paths.WorkdirLocal), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.paths.WorkdirLocal + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.paths.WorkdirLocal)
}
