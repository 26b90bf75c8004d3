package domain

import "time"

// HistoryRecord captures one tracked command for persistence. A flattened
// projection of SessionEntry, suitable for a table row.
type HistoryRecord struct {
	SessionID       string        `json:"session_id"`
	Timestamp       time.Time     `json:"timestamp"`
	Command         string        `json:"command"`
	ExitCode        int           `json:"exit_code"`
	Category        ErrorCategory `json:"category,omitempty"`
	Severity        Severity      `json:"severity,omitempty"`
	ExecutionTimeMS int64         `json:"execution_time_ms"`
	Analyzed        bool          `json:"analyzed"`
}
