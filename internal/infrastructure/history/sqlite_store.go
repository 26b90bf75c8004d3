package history

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

// SQLiteStore persists tracked command records in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the ~/.sdkassist/history/history.db
// database. When the database cannot be opened it degrades to a jsonl
// file store next to it.
func NewSQLiteStore() *SQLiteStore {
	return newSQLiteStore(filepath.Join(userHome(), ".sdkassist", "history", "history.db"))
}

func newSQLiteStore(path string) *SQLiteStore {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path}
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		return &SQLiteStore{path: path}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		timestamp TEXT,
		command TEXT,
		exit_code INTEGER,
		category TEXT,
		severity TEXT,
		execution_time_ms INTEGER,
		analyzed INTEGER
	);`)
	return err
}

// Save inserts a new record.
func (s *SQLiteStore) Save(record domain.HistoryRecord) error {
	if s.db == nil {
		return s.fallback().Save(record)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO commands
		(session_id, timestamp, command, exit_code, category, severity, execution_time_ms, analyzed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.SessionID,
		record.Timestamp.Format(time.RFC3339),
		record.Command,
		record.ExitCode,
		string(record.Category),
		string(record.Severity),
		record.ExecutionTimeMS,
		boolToInt(record.Analyzed),
	)
	return err
}

// Records returns history entries, newest first (limit/search optional).
func (s *SQLiteStore) Records(limit int, search string) ([]domain.HistoryRecord, error) {
	if s.db == nil {
		return s.fallback().Records(limit, search)
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT session_id, timestamp, command, exit_code, category, severity, execution_time_ms, analyzed FROM commands")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE command LIKE ? OR category LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var ts, category, severity string
		var analyzed int
		if err := rows.Scan(&rec.SessionID, &ts, &rec.Command, &rec.ExitCode, &category, &severity, &rec.ExecutionTimeMS, &analyzed); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Category = domain.ErrorCategory(category)
		rec.Severity = domain.Severity(severity)
		rec.Analyzed = analyzed == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return s.fallback().Clear()
	}
	_, err := s.db.Exec("DELETE FROM commands")
	return err
}

// ExportJSON writes the command table to a jsonl file.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0, "")
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

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) fallback() *FileStore {
	return &FileStore{path: strings.TrimSuffix(s.path, ".db") + ".jsonl"}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
