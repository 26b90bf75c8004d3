package domain

import (
	"encoding/json"
	"time"
)

// Source names for the registry lookups.
const (
	SourcePyPI        = "pypi"
	SourceGitHub      = "github"
	SourceReadTheDocs = "readthedocs"
)

// SourceResult is the outcome of a single registry lookup: either data or
// an absence with a reason. Lookups never surface errors past this type.
type SourceResult struct {
	Source string          `json:"source"`
	Data   json.RawMessage `json:"data,omitempty"`
	Absent bool            `json:"absent"`
	Reason string          `json:"reason,omitempty"`
}

// SourceData wraps a successful lookup payload.
func SourceData(source string, data json.RawMessage) SourceResult {
	return SourceResult{Source: source, Data: data}
}

// SourceAbsent marks a lookup that produced nothing usable.
func SourceAbsent(source, reason string) SourceResult {
	return SourceResult{Source: source, Absent: true, Reason: reason}
}

// PackageIntel aggregates every source's result for one subject.
// Missing sources stay present as absent markers; the caller decides how
// to treat them.
type PackageIntel struct {
	Subject    string                  `json:"subject"`
	Sources    map[string]SourceResult `json:"sources"`
	GatheredAt time.Time               `json:"gathered_at"`
	FromCache  bool                    `json:"-"`
}

// Available returns the names of sources that produced data.
func (p PackageIntel) Available() []string {
	var names []string
	for name, res := range p.Sources {
		if !res.Absent {
			names = append(names, name)
		}
	}
	return names
}
