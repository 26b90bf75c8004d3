package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

type stubExecutor struct {
	result domain.CommandResult
	err    error
}

func (s *stubExecutor) Execute(_ context.Context, command string) (domain.CommandResult, error) {
	result := s.result
	result.Command = command
	return result, s.err
}

type stubClassifier struct{}

func (stubClassifier) Classify(string) domain.ErrorCategory { return domain.CategoryImport }

func (stubClassifier) Record(result domain.CommandResult) domain.ErrorRecord {
	return domain.ErrorRecord{
		Category: domain.CategoryImport,
		Summary:  result.CombinedText(),
		Severity: domain.SeverityMinor,
		Command:  result,
	}
}

type stubGatherer struct {
	subjects []string
	err      error
}

func (s *stubGatherer) Gather(_ context.Context, subject string) (domain.PackageIntel, error) {
	s.subjects = append(s.subjects, subject)
	if s.err != nil {
		return domain.PackageIntel{}, s.err
	}
	return domain.PackageIntel{Subject: subject}, nil
}

type stubAnalyzer struct {
	requests []ports.ProviderRequest
	analysis domain.Analysis
	err      error
}

func (s *stubAnalyzer) Analyze(_ context.Context, req ports.ProviderRequest) (domain.Analysis, error) {
	s.requests = append(s.requests, req)
	return s.analysis, s.err
}

type stubHistory struct {
	saved []domain.HistoryRecord
}

func (s *stubHistory) Save(record domain.HistoryRecord) error {
	s.saved = append(s.saved, record)
	return nil
}
func (s *stubHistory) Records(int, string) ([]domain.HistoryRecord, error) { return nil, nil }
func (s *stubHistory) Clear() error                                        { return nil }
func (s *stubHistory) ExportJSON(string) error                             { return nil }
func (s *stubHistory) Path() string                                        { return "" }

type stubIssues struct {
	records []domain.ErrorRecord
	url     string
	err     error
}

func (s *stubIssues) CreateIssue(_ context.Context, record domain.ErrorRecord) (string, error) {
	s.records = append(s.records, record)
	return s.url, s.err
}

type stubTutorial struct {
	sessions []domain.Session
	path     string
	err      error
}

func (s *stubTutorial) Write(session domain.Session) (string, error) {
	s.sessions = append(s.sessions, session)
	return s.path, s.err
}

func newService(exec ports.CommandExecutor, analyzer ports.Analyzer) *Service {
	return &Service{
		Executor:   exec,
		Classifier: stubClassifier{},
		Analyzer:   analyzer,
	}
}

func TestStartRejectsSecondSession(t *testing.T) {
	svc := newService(&stubExecutor{}, &stubAnalyzer{})
	if _, err := svc.Start("first"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Start("second"); err == nil {
		t.Fatal("expected error starting a second session")
	}
}

func TestRecordRequiresActiveSession(t *testing.T) {
	svc := newService(&stubExecutor{}, &stubAnalyzer{})
	if _, err := svc.Record(context.Background(), "true"); err == nil {
		t.Fatal("expected error without an active session")
	}
}

func TestRecordSuccessfulCommand(t *testing.T) {
	exec := &stubExecutor{result: domain.CommandResult{Output: "ok", ExitCode: 0}}
	analyzer := &stubAnalyzer{analysis: domain.Analysis{Merged: "looks fine"}}
	history := &stubHistory{}
	svc := newService(exec, analyzer)
	svc.History = history

	if _, err := svc.Start("demo"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	entry, err := svc.Record(context.Background(), "echo hi")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if entry.Analysis.Merged != "looks fine" {
		t.Fatalf("analysis = %q", entry.Analysis.Merged)
	}
	session, ok := svc.Current()
	if !ok {
		t.Fatal("expected active session")
	}
	if len(session.Entries) != 1 || len(session.Errors) != 0 {
		t.Fatalf("entries=%d errors=%d", len(session.Entries), len(session.Errors))
	}
	if len(history.saved) != 1 {
		t.Fatalf("history records = %d", len(history.saved))
	}
	got := history.saved[0]
	if got.SessionID != session.ID || got.Command != "echo hi" || !got.Analyzed {
		t.Fatalf("unexpected history record %+v", got)
	}
}

func TestRecordFailedCommandClassifies(t *testing.T) {
	exec := &stubExecutor{result: domain.CommandResult{
		ErrorOutput: "ModuleNotFoundError: No module named 'requests'",
		ExitCode:    1,
	}}
	history := &stubHistory{}
	svc := newService(exec, &stubAnalyzer{})
	svc.History = history

	if _, err := svc.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Record(context.Background(), "python app.py"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	session, _ := svc.Current()
	if len(session.Errors) != 1 {
		t.Fatalf("errors = %d", len(session.Errors))
	}
	if session.Errors[0].Category != domain.CategoryImport {
		t.Fatalf("category = %s", session.Errors[0].Category)
	}
	if history.saved[0].Category != domain.CategoryImport || history.saved[0].Severity != domain.SeverityMinor {
		t.Fatalf("history record not annotated: %+v", history.saved[0])
	}
}

func TestRecordGathersPackageIntel(t *testing.T) {
	gatherer := &stubGatherer{}
	svc := newService(&stubExecutor{}, &stubAnalyzer{})
	svc.Gatherer = gatherer

	if _, err := svc.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	entry, err := svc.Record(context.Background(), "pip install requests flask")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if diff := cmp.Diff([]string{"requests", "flask"}, gatherer.subjects); diff != "" {
		t.Fatalf("gathered subjects mismatch (-want +got):\n%s", diff)
	}
	if len(entry.Intel) != 2 {
		t.Fatalf("intel entries = %d", len(entry.Intel))
	}
}

func TestRecordSurvivesGathererFailure(t *testing.T) {
	svc := newService(&stubExecutor{}, &stubAnalyzer{})
	svc.Gatherer = &stubGatherer{err: errors.New("network down")}

	if _, err := svc.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	entry, err := svc.Record(context.Background(), "pip install requests")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(entry.Intel) != 0 {
		t.Fatalf("expected no intel, got %d", len(entry.Intel))
	}
}

func TestRecordSurvivesAnalyzerFailure(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("all backends down")}
	svc := newService(&stubExecutor{}, analyzer)

	if _, err := svc.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Record(context.Background(), "true"); err != nil {
		t.Fatalf("Record should not propagate analyzer errors: %v", err)
	}
}

func TestRunOnceWithoutSession(t *testing.T) {
	exec := &stubExecutor{result: domain.CommandResult{ErrorOutput: "boom", ExitCode: 1}}
	history := &stubHistory{}
	svc := newService(exec, &stubAnalyzer{analysis: domain.Analysis{Merged: "fix it"}})
	svc.History = history

	entry, err := svc.RunOnce(context.Background(), "false")
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if entry.Analysis.Merged != "fix it" {
		t.Fatalf("analysis = %q", entry.Analysis.Merged)
	}
	if len(history.saved) != 0 {
		t.Fatal("RunOnce must not persist history")
	}
	if _, ok := svc.Current(); ok {
		t.Fatal("RunOnce must not open a session")
	}
}

func TestFrequency(t *testing.T) {
	svc := newService(&stubExecutor{}, &stubAnalyzer{})
	if _, err := svc.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Record(context.Background(), "ls"); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	freq := svc.Frequency("ls")
	if !freq.Repeated || freq.Count != 3 {
		t.Fatalf("frequency = %+v", freq)
	}
	if other := svc.Frequency("pwd"); other.Repeated || other.Count != 0 {
		t.Fatalf("unexpected frequency for unseen command: %+v", other)
	}
}

func TestCloseWritesTutorialAndFilesIssues(t *testing.T) {
	exec := &stubExecutor{result: domain.CommandResult{ErrorOutput: "boom", ExitCode: 1}}
	tutorial := &stubTutorial{path: "/tmp/tutorial.md"}
	issues := &stubIssues{url: "https://github.com/acme/sdk/issues/7"}
	svc := newService(exec, &stubAnalyzer{})
	svc.Tutorial = tutorial
	svc.Issues = issues

	if _, err := svc.Start("debugging"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Record(context.Background(), "python app.py"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	report, err := svc.Close(context.Background())
	if err != nil {
		t.Fatalf("Close: %v", err)
	}

	if report.TutorialPath != "/tmp/tutorial.md" {
		t.Fatalf("tutorial path = %q", report.TutorialPath)
	}
	if len(report.IssueURLs) != 1 || report.IssueURLs[0] != issues.url {
		t.Fatalf("issue urls = %v", report.IssueURLs)
	}
	if report.Session.ClosedAt.IsZero() {
		t.Fatal("ClosedAt not set")
	}
	if _, ok := svc.Current(); ok {
		t.Fatal("session should be cleared after Close")
	}
	if _, err := svc.Close(context.Background()); err == nil {
		t.Fatal("second Close should fail")
	}
}

func TestCloseSurvivesIssueFailure(t *testing.T) {
	exec := &stubExecutor{result: domain.CommandResult{ErrorOutput: "boom", ExitCode: 1}}
	svc := newService(exec, &stubAnalyzer{})
	svc.Issues = &stubIssues{err: errors.New("403")}

	if _, err := svc.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Record(context.Background(), "false"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	report, err := svc.Close(context.Background())
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(report.IssueURLs) != 0 {
		t.Fatalf("issue urls = %v", report.IssueURLs)
	}
}

func TestAnalysisContentIncludesOutputs(t *testing.T) {
	content := analysisContent(domain.CommandResult{
		Command:     "python app.py",
		Output:      "starting",
		ErrorOutput: "Traceback",
		ExitCode:    1,
	})
	for _, want := range []string{"python app.py", "Exit code: 1", "starting", "Traceback"} {
		if !strings.Contains(content, want) {
			t.Fatalf("content missing %q:\n%s", want, content)
		}
	}
}
