// Package session orchestrates the wrapped shell session: command tracking,
// classification, registry context, dual-backend analysis, and the closing
// tutorial/issue generation.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

const analysisPrompt = "Explain what this command was trying to do, why it failed if it failed, and suggest the next step."

// Service is the session tracker. One command's full pipeline (execute,
// classify, gather, analyze) runs to completion before its entry is appended,
// so session state stays ordered even though lookups inside a gather finish
// in any order.
type Service struct {
	Executor   ports.CommandExecutor
	Classifier ports.ErrorClassifier
	Gatherer   ports.IntelGatherer
	Analyzer   ports.Analyzer
	History    ports.HistoryRepository
	Issues     ports.IssueCreator
	Tutorial   ports.TutorialWriter
	Logger     ports.Logger

	mu      sync.Mutex
	current *domain.Session
	freq    map[string]int
}

// CloseReport summarizes what Close produced.
type CloseReport struct {
	Session      domain.Session
	TutorialPath string
	IssueURLs    []string
}

// Start opens a new session. Only one session may be active per process.
func (s *Service) Start(description string) (domain.Session, error) {
	if s.Executor == nil || s.Classifier == nil || s.Analyzer == nil {
		return domain.Session{}, errors.New("session.Service dependencies not satisfied")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return domain.Session{}, errors.New("session already active")
	}
	s.current = &domain.Session{
		ID:          uuid.NewString(),
		Description: description,
		StartedAt:   time.Now(),
	}
	s.freq = make(map[string]int)

	if s.Logger != nil {
		s.Logger.Info("session started", map[string]interface{}{
			"id":          s.current.ID,
			"description": description,
		})
	}
	return *s.current, nil
}

// Record executes one command and runs the full tracking pipeline on it.
// External lookups and backend analysis degrade softly; only execution
// failures (process could not start) and a missing session are errors.
func (s *Service) Record(ctx context.Context, command string) (domain.SessionEntry, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return domain.SessionEntry{}, errors.New("no active session")
	}
	session := s.current
	s.freq[command]++
	s.mu.Unlock()

	entry, record, err := s.pipeline(ctx, command)
	if err != nil {
		return domain.SessionEntry{}, err
	}

	s.mu.Lock()
	session.Entries = append(session.Entries, entry)
	if record != nil {
		session.Errors = append(session.Errors, *record)
	}
	s.mu.Unlock()

	s.persist(session.ID, entry, record)
	return entry, nil
}

// RunOnce executes one command through the tracking pipeline without an
// active session. Nothing is persisted and no tutorial or issue is produced.
func (s *Service) RunOnce(ctx context.Context, command string) (domain.SessionEntry, error) {
	if s.Executor == nil || s.Classifier == nil || s.Analyzer == nil {
		return domain.SessionEntry{}, errors.New("session.Service dependencies not satisfied")
	}
	entry, _, err := s.pipeline(ctx, command)
	return entry, err
}

func (s *Service) pipeline(ctx context.Context, command string) (domain.SessionEntry, *domain.ErrorRecord, error) {
	result, err := s.Executor.Execute(ctx, command)
	if err != nil {
		return domain.SessionEntry{}, nil, fmt.Errorf("execute command: %w", err)
	}

	entry := domain.SessionEntry{
		Result:   result,
		Packages: extractPackages(command),
	}

	var record *domain.ErrorRecord
	if result.Failed() {
		rec := s.Classifier.Record(result)
		record = &rec
	}

	entry.Intel = s.gather(ctx, entry.Packages)

	analysis, err := s.Analyzer.Analyze(ctx, ports.ProviderRequest{
		Content: analysisContent(result),
		Prompt:  analysisPrompt,
		Intel:   entry.Intel,
	})
	if err != nil && s.Logger != nil {
		s.Logger.Warn("analysis degraded", map[string]interface{}{
			"command": command,
			"error":   err.Error(),
		})
	}
	entry.Analysis = analysis
	return entry, record, nil
}

// Frequency reports how often the command has been recorded this session.
func (s *Service) Frequency(command string) domain.CommandFrequency {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := s.freq[command]
	return domain.CommandFrequency{Repeated: count > 1, Count: count}
}

// Current returns a copy of the live session state.
func (s *Service) Current() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.Session{}, false
	}
	return *s.current, true
}

// Close finalizes the session: renders the tutorial, files issues for the
// recorded errors, and clears the active session. Tutorial and issue
// failures degrade to log warnings; the session always closes.
func (s *Service) Close(ctx context.Context) (CloseReport, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return CloseReport{}, errors.New("no active session")
	}
	s.current.ClosedAt = time.Now()
	closed := *s.current
	s.current = nil
	s.freq = nil
	s.mu.Unlock()

	report := CloseReport{Session: closed}

	if s.Tutorial != nil && len(closed.Entries) > 0 {
		path, err := s.Tutorial.Write(closed)
		if err != nil {
			s.warn("tutorial generation failed", err)
		} else {
			report.TutorialPath = path
		}
	}

	if s.Issues != nil {
		for _, record := range closed.Errors {
			url, err := s.Issues.CreateIssue(ctx, record)
			if err != nil {
				s.warn("issue creation failed", err)
				continue
			}
			report.IssueURLs = append(report.IssueURLs, url)
		}
	}

	if s.Logger != nil {
		s.Logger.Info("session closed", map[string]interface{}{
			"id":       closed.ID,
			"commands": len(closed.Entries),
			"errors":   len(closed.Errors),
		})
	}
	return report, nil
}

func (s *Service) gather(ctx context.Context, packages []string) []domain.PackageIntel {
	if s.Gatherer == nil {
		return nil
	}
	var intel []domain.PackageIntel
	for _, pkg := range packages {
		info, err := s.Gatherer.Gather(ctx, pkg)
		if err != nil {
			s.warn("intel gather interrupted", err)
			continue
		}
		intel = append(intel, info)
	}
	return intel
}

func (s *Service) persist(sessionID string, entry domain.SessionEntry, record *domain.ErrorRecord) {
	if s.History == nil {
		return
	}
	hist := domain.HistoryRecord{
		SessionID:       sessionID,
		Timestamp:       entry.Result.StartedAt,
		Command:         entry.Result.Command,
		ExitCode:        entry.Result.ExitCode,
		ExecutionTimeMS: entry.Result.ExecutionTime.Milliseconds(),
		Analyzed:        entry.Analysis.Merged != "",
	}
	if record != nil {
		hist.Category = record.Category
		hist.Severity = record.Severity
	}
	if err := s.History.Save(hist); err != nil {
		s.warn("history save failed", err)
	}
}

func (s *Service) warn(msg string, err error) {
	if s.Logger != nil {
		s.Logger.Warn(msg, map[string]interface{}{"error": err.Error()})
	}
}

func analysisContent(result domain.CommandResult) string {
	return fmt.Sprintf("Command: %s\nExit code: %d\nOutput: %s\nError: %s",
		result.Command, result.ExitCode, result.Output, result.ErrorOutput)
}
