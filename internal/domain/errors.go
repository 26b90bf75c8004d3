package domain

// ErrorCategory identifies the class of a captured failure. Categories are
// assigned by the classifier's ordered pattern table; CategoryUnknown is the
// sentinel returned when no pattern matched.
type ErrorCategory string

const (
	CategoryImport     ErrorCategory = "import_error"
	CategorySyntax     ErrorCategory = "syntax_error"
	CategoryRuntime    ErrorCategory = "runtime_error"
	CategoryAttribute  ErrorCategory = "attribute_error"
	CategoryType       ErrorCategory = "type_error"
	CategoryValue      ErrorCategory = "value_error"
	CategoryKey        ErrorCategory = "key_error"
	CategoryIndex      ErrorCategory = "index_error"
	CategoryPermission ErrorCategory = "permission_error"
	CategoryOS         ErrorCategory = "os_error"
	CategoryFile       ErrorCategory = "file_error"
	CategoryUnknown    ErrorCategory = "unknown_error"
)

// Severity ranks how serious a recorded error is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityMinor    Severity = "minor"
	SeverityLow      Severity = "low"
)

// ErrorRecord is the immutable classification of one failed command.
// Summary and Description are shaped for direct use as a GitHub issue
// title and body.
type ErrorRecord struct {
	Category    ErrorCategory `json:"category"`
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	Labels      []string      `json:"labels"`
	Severity    Severity      `json:"severity"`
	Command     CommandResult `json:"command_context"`
}
