package classify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/sdkassist/internal/domain"
)

func newDefaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New("")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestClassifyCategories(t *testing.T) {
	c := newDefaultClassifier(t)

	cases := []struct {
		text string
		want domain.ErrorCategory
	}{
		{"ImportError: No module named 'foo'", domain.CategoryImport},
		{"ModuleNotFoundError: No module named 'foo'", domain.CategoryImport},
		{"SyntaxError: invalid syntax", domain.CategorySyntax},
		{"RuntimeError: dictionary changed size", domain.CategoryRuntime},
		{"AttributeError: 'NoneType' object has no attribute 'x'", domain.CategoryAttribute},
		{"TypeError: unsupported operand type(s)", domain.CategoryType},
		{"ValueError: invalid literal for int()", domain.CategoryValue},
		{"KeyError: 'missing'", domain.CategoryKey},
		{"IndexError: list index out of range", domain.CategoryIndex},
		{"PermissionError: [Errno 13] Permission denied", domain.CategoryPermission},
		{"OSError: [Errno 28] No space left on device", domain.CategoryOS},
		{"FileNotFoundError: [Errno 2] No such file", domain.CategoryFile},
		{"segmentation fault (core dumped)", domain.CategoryUnknown},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.text); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassifyFirstMatchingRuleWins(t *testing.T) {
	c := newDefaultClassifier(t)

	// A traceback matching both the import and runtime rules must classify
	// as import: it appears earlier in the fixed table.
	text := "Traceback (most recent call last):\nRuntimeError: boom\nImportError: No module named 'foo'"
	if got := c.Classify(text); got != domain.CategoryImport {
		t.Fatalf("Classify() = %s, want %s", got, domain.CategoryImport)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := newDefaultClassifier(t)
	text := "ValueError: bad input\nTypeError: also bad"
	first := c.Classify(text)
	for i := 0; i < 10; i++ {
		if got := c.Classify(text); got != first {
			t.Fatalf("Classify() flapped: %s then %s", first, got)
		}
	}
}

func TestSeverityTable(t *testing.T) {
	cases := []struct {
		text     string
		exitCode int
		want     domain.Severity
	}{
		{"CRITICAL: disk corruption detected", 0, domain.SeverityCritical},
		{"warning: deprecated flag", 0, domain.SeverityWarning},
		{"something broke", 2, domain.SeverityWarning},
		{"something broke", 1, domain.SeverityMinor},
		{"all fine", 0, domain.SeverityLow},
		// Keyword checks take precedence over exit codes.
		{"critical failure", 1, domain.SeverityCritical},
		{"warning issued", 1, domain.SeverityWarning},
		// Exit codes above 2 carry no special weight.
		{"command not found", 127, domain.SeverityLow},
	}
	for _, tc := range cases {
		if got := Severity(tc.text, tc.exitCode); got != tc.want {
			t.Errorf("Severity(%q, %d) = %s, want %s", tc.text, tc.exitCode, got, tc.want)
		}
	}
}

func TestRecordPipInstallScenario(t *testing.T) {
	c := newDefaultClassifier(t)

	record := c.Record(domain.CommandResult{
		Command:       "pip install nonexistentpkg123",
		ErrorOutput:   "ERROR: No module named 'nonexistentpkg123'",
		ExitCode:      1,
		ExecutionTime: 1200 * time.Millisecond,
	})

	if record.Category != domain.CategoryImport {
		t.Fatalf("category = %s, want %s", record.Category, domain.CategoryImport)
	}
	if record.Severity != domain.SeverityMinor {
		t.Fatalf("severity = %s, want %s", record.Severity, domain.SeverityMinor)
	}
	if record.Summary != "ERROR: No module named 'nonexistentpkg123'" {
		t.Fatalf("summary = %q", record.Summary)
	}
	wantLabels := []string{"bug", "import_error", "severity:minor"}
	if diff := cmp.Diff(wantLabels, record.Labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(record.Description, "- Command: `pip install nonexistentpkg123`") ||
		!strings.Contains(record.Description, "- Exit Code: 1") {
		t.Fatalf("description missing command details:\n%s", record.Description)
	}
}

func TestRecordClipsLongSummary(t *testing.T) {
	c := newDefaultClassifier(t)
	record := c.Record(domain.CommandResult{
		Command:     "python broken.py",
		ErrorOutput: "ValueError: " + strings.Repeat("x", 200),
		ExitCode:    1,
	})
	if len(record.Summary) != 100 {
		t.Fatalf("summary length = %d, want 100", len(record.Summary))
	}
}

func TestNewLoadsRulesOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  error_patterns:
    - category: quota_error
      pattern: "QuotaExceeded"
    - category: import_error
      pattern: "ImportError:"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	c, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := c.Classify("QuotaExceeded: too many requests"); got != domain.ErrorCategory("quota_error") {
		t.Fatalf("Classify() = %s, want quota_error", got)
	}
	if got := c.Classify("ImportError: nope"); got != domain.CategoryImport {
		t.Fatalf("Classify() = %s, want %s", got, domain.CategoryImport)
	}
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  error_patterns:
    - category: broken
      pattern: "(["
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	if _, err := New(path); err == nil {
		t.Fatal("New() accepted invalid regex")
	}
}
