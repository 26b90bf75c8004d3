// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). Following the Ports and Adapters
// (Hexagonal) pattern, these interfaces allow the application to remain
// independent of specific implementations like databases, HTTP clients, or
// CLI frameworks.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Provider, CacheRepository)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"
	"encoding/json"

	"github.com/doeshing/sdkassist/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.sdkassist/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// CacheRepository persists opaque JSON payloads keyed by arbitrary strings.
// Get fails soft: a missing, malformed or expired entry reads as a miss,
// never as an error.
type CacheRepository interface {
	Get(key string) (json.RawMessage, bool)
	Put(key string, payload json.RawMessage) error
	Sweep(maxAge string) (int, error)
	Entries() ([]CacheEntryInfo, error)
	Dir() string
	Clear() error
}

// CacheEntryInfo describes one stored cache file for inspection commands.
type CacheEntryInfo struct {
	File     string
	CachedAt string
	Size     int64
}

// RateLimiter throttles calls to external domains. Acquire blocks until the
// domain's window has capacity or ctx is done; unknown domains pass through.
type RateLimiter interface {
	Acquire(ctx context.Context, domain string) error
}

// SourceClient looks one subject up against a single external source.
// Lookup returns the raw payload, or an error the fetcher demotes to an
// absent marker; it must never panic on malformed responses.
type SourceClient interface {
	Name() string
	Domain() string
	Lookup(ctx context.Context, subject string) (json.RawMessage, error)
}

// IntelGatherer assembles the aggregate record for a subject across all
// configured sources.
type IntelGatherer interface {
	Gather(ctx context.Context, subject string) (domain.PackageIntel, error)
}

// ErrorClassifier assigns a category and severity to a failed command and
// produces the full derived record.
type ErrorClassifier interface {
	Classify(errText string) domain.ErrorCategory
	Record(result domain.CommandResult) domain.ErrorRecord
}

// ProviderFactory builds analysis backend instances from model definitions.
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (Provider, error)
}

// Provider defines one text-generation backend. Each implementation wraps a
// specific AI service API.
type Provider interface {
	Name() string
	Model() domain.ModelDefinition
	Generate(context.Context, ProviderRequest) (ProviderResponse, error)
}

// ProviderRequest contains all data needed to generate an analysis response.
type ProviderRequest struct {
	Content string
	Prompt  string
	Intel   []domain.PackageIntel
	Debug   bool
}

// ProviderResponse carries the backend's generated text.
type ProviderResponse struct {
	Text string
}

// Analyzer fans content out to every configured backend and merges the
// responses into one record.
type Analyzer interface {
	Analyze(ctx context.Context, req ProviderRequest) (domain.Analysis, error)
}

// CommandExecutor runs shell commands in the configured shell environment.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.CommandResult, error)
}

// HistoryRepository persists tracked command records across sessions.
type HistoryRepository interface {
	Save(record domain.HistoryRecord) error
	Records(limit int, search string) ([]domain.HistoryRecord, error)
	Clear() error
	ExportJSON(dest string) error
	Path() string
}

// IssueCreator files a tracker issue for one recorded error.
type IssueCreator interface {
	CreateIssue(ctx context.Context, record domain.ErrorRecord) (string, error)
}

// TutorialWriter renders a closed session into a markdown document and
// returns the written path.
type TutorialWriter interface {
	Write(session domain.Session) (string, error)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external
// services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
