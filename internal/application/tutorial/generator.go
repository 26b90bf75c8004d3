// Package tutorial renders a closed session into a markdown walkthrough.
package tutorial

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

const tutorialTemplate = `# Session Tutorial: {{.Title}}

*Started: {{.Started}}*
*Closed: {{.Closed}}*

## Summary

{{.CommandCount}} commands recorded, {{.ErrorCount}} errors.

## Steps
{{range $i, $step := .Steps}}
### Step {{inc $i}}: {{$step.Command}}

` + "```console\n$ {{$step.Command}}\n{{$step.Output}}```" + `
{{if $step.Failed}}
**Failed** (exit code {{$step.ExitCode}}).
{{end}}{{if $step.Packages}}
Packages involved: {{join $step.Packages ", "}}
{{end}}{{if $step.Analysis}}
{{$step.Analysis}}
{{end}}{{end}}{{if .Errors}}
## Errors Encountered
{{range .Errors}}
- **{{.Category}}** ({{.Severity}}): {{.Summary}}
{{end}}{{end}}`

type templateStep struct {
	Command  string
	Output   string
	Failed   bool
	ExitCode int
	Packages []string
	Analysis string
}

type templateData struct {
	Title        string
	Started      string
	Closed       string
	CommandCount int
	ErrorCount   int
	Steps        []templateStep
	Errors       []domain.ErrorRecord
}

// Generator writes session tutorials into a directory.
type Generator struct {
	dir  string
	tmpl *template.Template
}

// NewGenerator builds a generator writing into dir.
func NewGenerator(dir string) *Generator {
	tmpl := template.Must(template.New("tutorial").Funcs(template.FuncMap{
		"inc":  func(i int) int { return i + 1 },
		"join": strings.Join,
	}).Parse(tutorialTemplate))
	return &Generator{dir: dir, tmpl: tmpl}
}

// Write renders the session and returns the written file path.
func (g *Generator) Write(session domain.Session) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", err
	}

	data := templateData{
		Title:        title(session),
		Started:      session.StartedAt.Format("2006-01-02 15:04:05"),
		Closed:       session.ClosedAt.Format("2006-01-02 15:04:05"),
		CommandCount: len(session.Entries),
		ErrorCount:   len(session.Errors),
		Errors:       session.Errors,
	}
	for _, entry := range session.Entries {
		data.Steps = append(data.Steps, templateStep{
			Command:  entry.Result.Command,
			Output:   terminalOutput(entry.Result),
			Failed:   entry.Result.Failed(),
			ExitCode: entry.Result.ExitCode,
			Packages: entry.Packages,
			Analysis: entry.Analysis.Merged,
		})
	}

	var buf strings.Builder
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render tutorial: %w", err)
	}

	path := filepath.Join(g.dir, fileName(session))
	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func title(session domain.Session) string {
	if session.Description != "" {
		return session.Description
	}
	return session.StartedAt.Format("2006-01-02 15:04")
}

func fileName(session domain.Session) string {
	stamp := session.StartedAt.Format("20060102_150405")
	return fmt.Sprintf("session_%s.md", stamp)
}

func terminalOutput(result domain.CommandResult) string {
	out := result.Output
	if result.ErrorOutput != "" {
		if out != "" && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += result.ErrorOutput
	}
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

var _ ports.TutorialWriter = (*Generator)(nil)
