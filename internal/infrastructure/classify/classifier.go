// Package classify assigns categories and severities to failed commands via
// an ordered regex table.
package classify

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

// maxSummaryLen clips the summary so it fits a GitHub issue title.
const maxSummaryLen = 100

// Classifier implements the ErrorClassifier port. Rules are evaluated in
// declaration order and the first matching pattern wins, so the table is a
// slice, never a map.
type Classifier struct {
	rules []compiledRule
}

type compiledRule struct {
	re       *regexp.Regexp
	category domain.ErrorCategory
}

// Rule pairs a category with its signature pattern in the YAML rules file.
type Rule struct {
	Category string `yaml:"category"`
	Pattern  string `yaml:"pattern"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		ErrorPatterns []Rule `yaml:"error_patterns"`
	} `yaml:"rules"`
}

// New loads classification rules from disk (or the built-in table when the
// file is missing or empty).
func New(path string) (*Classifier, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}

	var compiled []compiledRule
	for _, rule := range rules.Rules.ErrorPatterns {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Category, err)
		}
		compiled = append(compiled, compiledRule{
			re:       re,
			category: domain.ErrorCategory(rule.Category),
		})
	}

	return &Classifier{rules: compiled}, nil
}

// Classify returns the category of the first matching rule, or
// CategoryUnknown when nothing matches. Deterministic for a fixed table.
func (c *Classifier) Classify(errText string) domain.ErrorCategory {
	for _, rule := range c.rules {
		if rule.re.MatchString(errText) {
			return rule.category
		}
	}
	return domain.CategoryUnknown
}

// Severity derives how serious a failure is from its text and exit code.
// Keyword checks take precedence over exit-code checks.
func Severity(errText string, exitCode int) domain.Severity {
	lowered := strings.ToLower(errText)
	switch {
	case strings.Contains(lowered, "critical"):
		return domain.SeverityCritical
	case strings.Contains(lowered, "warning") || exitCode == 2:
		return domain.SeverityWarning
	case exitCode == 1:
		return domain.SeverityMinor
	default:
		return domain.SeverityLow
	}
}

// Record builds the full derived error record for a failed command.
func (c *Classifier) Record(result domain.CommandResult) domain.ErrorRecord {
	text := result.CombinedText()
	category := c.Classify(text)
	severity := Severity(text, result.ExitCode)

	return domain.ErrorRecord{
		Category:    category,
		Summary:     summarize(text),
		Description: describe(result),
		Labels:      labels(category, severity),
		Severity:    severity,
		Command:     result,
	}
}

// summarize keeps the first line of the error output, clipped for use as an
// issue title.
func summarize(errText string) string {
	first := strings.TrimSpace(strings.SplitN(errText, "\n", 2)[0])
	if len(first) > maxSummaryLen {
		return first[:maxSummaryLen]
	}
	return first
}

func describe(result domain.CommandResult) string {
	errText := result.ErrorOutput
	if errText == "" {
		errText = "No error message available"
	}
	output := result.Output
	if output == "" {
		output = "No output available"
	}

	lines := []string{
		"## Error Details",
		"```",
		errText,
		"```",
		"",
		"## Command Information",
		fmt.Sprintf("- Command: `%s`", result.Command),
		fmt.Sprintf("- Exit Code: %d", result.ExitCode),
		fmt.Sprintf("- Execution Time: %.2f seconds", result.ExecutionTime.Seconds()),
		"",
		"## Output",
		"```",
		output,
		"```",
	}
	return strings.Join(lines, "\n")
}

func labels(category domain.ErrorCategory, severity domain.Severity) []string {
	return []string{"bug", string(category), "severity:" + string(severity)}
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	if path == "" {
		rules.Rules.ErrorPatterns = defaultRules()
		return rules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// fall back to defaults
		rules.Rules.ErrorPatterns = defaultRules()
		return rules, nil
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, err
	}
	if len(rules.Rules.ErrorPatterns) == 0 {
		rules.Rules.ErrorPatterns = defaultRules()
	}
	return rules, nil
}

// defaultRules is the built-in signature table. Order is part of the
// contract: earlier entries take priority when a traceback matches several
// patterns.
func defaultRules() []Rule {
	return []Rule{
		{Category: string(domain.CategoryImport), Pattern: `ImportError:|ModuleNotFoundError:|No module named`},
		{Category: string(domain.CategorySyntax), Pattern: `SyntaxError:`},
		{Category: string(domain.CategoryRuntime), Pattern: `RuntimeError:`},
		{Category: string(domain.CategoryAttribute), Pattern: `AttributeError:`},
		{Category: string(domain.CategoryType), Pattern: `TypeError:`},
		{Category: string(domain.CategoryValue), Pattern: `ValueError:`},
		{Category: string(domain.CategoryKey), Pattern: `KeyError:`},
		{Category: string(domain.CategoryIndex), Pattern: `IndexError:`},
		{Category: string(domain.CategoryPermission), Pattern: `PermissionError:|[Pp]ermission denied`},
		{Category: string(domain.CategoryOS), Pattern: `OSError:`},
		{Category: string(domain.CategoryFile), Pattern: `FileNotFoundError:|No such file or directory`},
	}
}

var _ ports.ErrorClassifier = (*Classifier)(nil)
