// Package compliance holds the housing-advertising phrasing policy every
// generated suggestion must follow.
package compliance

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicy []byte

// Rule pairs a disallowed phrase with its safe replacement.
type Rule struct {
	Avoid string `yaml:"avoid"`
	Use   string `yaml:"use"`
}

// Policy is the persistent instruction prefix plus the replacement rules.
type Policy struct {
	Preamble string `yaml:"preamble"`
	Rules    []Rule `yaml:"rules"`

	patterns []*regexp.Regexp
}

// Default returns the embedded policy.
func Default() (*Policy, error) {
	return Parse(defaultPolicy)
}

// Load reads the policy at path; an empty path selects the embedded policy.
func Load(path string) (*Policy, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compliance policy: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML policy document.
func Parse(data []byte) (*Policy, error) {
	var policy Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("parse compliance policy: %w", err)
	}

	policy.patterns = make([]*regexp.Regexp, len(policy.Rules))
	for i, rule := range policy.Rules {
		if strings.TrimSpace(rule.Avoid) == "" {
			return nil, fmt.Errorf("compliance rule %d: empty phrase", i+1)
		}
		policy.patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(rule.Avoid) + `\b`)
	}
	return &policy, nil
}

// Instruction renders the policy as a system-instruction prefix.
func (p *Policy) Instruction() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("COMPLIANCE POLICY\n")
	b.WriteString(strings.TrimSpace(p.Preamble))
	if len(p.Rules) > 0 {
		b.WriteString("\nNever use the phrasing on the left; use the replacement on the right:\n")
		for _, rule := range p.Rules {
			fmt.Fprintf(&b, "- %q -> %q\n", rule.Avoid, rule.Use)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Apply replaces every disallowed phrase in text with its safe form.
func (p *Policy) Apply(text string) string {
	if p == nil || text == "" {
		return text
	}
	for i, pattern := range p.patterns {
		text = pattern.ReplaceAllLiteralString(text, p.Rules[i].Use)
	}
	return text
}
