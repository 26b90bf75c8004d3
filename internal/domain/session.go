package domain

import "time"

// SessionEntry ties one command to its registry context and analysis.
// Entries are appended in execution order.
type SessionEntry struct {
	Result   CommandResult  `json:"result"`
	Packages []string       `json:"packages,omitempty"`
	Intel    []PackageIntel `json:"intel,omitempty"`
	Analysis Analysis       `json:"analysis"`
}

// Session is the live state of one wrapped shell session. It is handed to
// the tutorial generator on close.
type Session struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	StartedAt   time.Time      `json:"started_at"`
	ClosedAt    time.Time      `json:"closed_at,omitzero"`
	Entries     []SessionEntry `json:"entries"`
	Errors      []ErrorRecord  `json:"errors"`
}

// CommandFrequency reports how often a command has been repeated within
// the session.
type CommandFrequency struct {
	Repeated bool
	Count    int
}
