package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/codebind/internal/types"
)

// Rule maps files matching a glob pattern to a class-name template.
// Templates substitute {name} (file base name without its extension) and
// {dir} (directory path relative to the project root, dotted).
type Rule struct {
	Pattern  string `toml:"pattern"`
	Template string `toml:"template"`
}

type ruleFile struct {
	Rule []Rule `toml:"rule"`
}

// RuleProvider derives code-behind class names from configured naming
// conventions instead of markup content. It covers project types whose
// markup carries no class annotation.
type RuleProvider struct {
	rules []Rule
}

// NewRuleProvider creates a rule provider from an in-memory rule list.
func NewRuleProvider(rules []Rule) *RuleProvider {
	return &RuleProvider{rules: rules}
}

// LoadRuleProvider reads rules from a codebehind.rules.toml file.
func LoadRuleProvider(path string) (*RuleProvider, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	var rf ruleFile
	if err := toml.Unmarshal(content, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rule file %s: %w", path, err)
	}

	for _, r := range rf.Rule {
		if r.Pattern == "" || r.Template == "" {
			return nil, fmt.Errorf("rule file %s: every rule needs pattern and template", path)
		}
	}
	return NewRuleProvider(rf.Rule), nil
}

func (p *RuleProvider) Name() string { return "rules" }

func (p *RuleProvider) ClassName(f *types.ProjectFile) (string, bool) {
	rel := f.Path
	if f.Project != nil && f.Project.Root != "" {
		if r, err := filepath.Rel(f.Project.Root, f.Path); err == nil {
			rel = filepath.ToSlash(r)
		}
	}

	for _, rule := range p.rules {
		matched, err := doublestar.Match(rule.Pattern, rel)
		if err != nil || !matched {
			continue
		}
		if name := expandTemplate(rule.Template, rel); name != "" {
			return name, true
		}
	}
	return "", false
}

func expandTemplate(template, rel string) string {
	base := filepath.Base(rel)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}

	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		dir = ""
	}
	dotDir := strings.ReplaceAll(dir, "/", ".")

	out := strings.ReplaceAll(template, "{name}", base)
	out = strings.ReplaceAll(out, "{dir}", dotDir)

	// A file at the root leaves {dir} empty; collapse the doubled dots
	for strings.Contains(out, "..") {
		out = strings.ReplaceAll(out, "..", ".")
	}
	return strings.Trim(out, ".")
}
