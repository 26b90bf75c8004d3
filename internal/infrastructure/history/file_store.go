package history

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

// FileStore appends history records to a jsonl file. It backs the sqlite
// store when the database cannot be opened.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a new history store under ~/.sdkassist/history/history.jsonl.
func NewFileStore() *FileStore {
	return &FileStore{
		path: filepath.Join(userHome(), ".sdkassist", "history", "history.jsonl"),
	}
}

// Save appends one record.
func (f *FileStore) Save(record domain.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = file.Write(data)
	return err
}

// Records loads history entries, newest first (limit/search optional).
// Corrupt lines are skipped.
func (f *FileStore) Records(limit int, search string) ([]domain.HistoryRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	var records []domain.HistoryRecord
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		var rec domain.HistoryRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if search != "" && !matches(rec, search) {
			continue
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Clear removes the history file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ExportJSON copies the records to dest as jsonl.
func (f *FileStore) ExportJSON(dest string) error {
	records, err := f.Records(0, "")
	if err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func matches(rec domain.HistoryRecord, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(rec.Command), search) ||
		strings.Contains(strings.ToLower(string(rec.Category)), search)
}

func userHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.HistoryRepository = (*FileStore)(nil)
