package commands

// TimestampFormat is used when rendering record timestamps.
const TimestampFormat = "2006-01-02 15:04:05"

// Default listing limits.
const (
	DefaultHistoryLimit       = 20
	DefaultHistorySearchLimit = 50
)

// Error messages
const (
	ErrHistoryStoreUnavailable = "history store unavailable"
	ErrCacheStoreUnavailable   = "cache store unavailable"
	ErrSessionUnavailable      = "session service unavailable"
	ErrGathererUnavailable     = "registry lookup unavailable"
)

// Informational messages
const (
	MsgNoHistoryRecorded = "No history recorded yet."
	MsgNoCachedEntries   = "No cached lookups."
)
