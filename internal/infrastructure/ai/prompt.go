package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

// renderPromptMessages expands model prompt templates with the analysis
// request and ensures a user message exists. Models without a custom prompt
// template get a default analysis system prompt.
//
// Template Variables Available:
//   - {{.Prompt}}: The analysis instruction for this request
//   - {{.Content}}: The command and captured output under analysis
//   - {{.Packages}}: Package intel gathered from external registries
func renderPromptMessages(model domain.ModelDefinition, req ports.ProviderRequest) ([]domain.PromptMessage, error) {
	data := templateData{
		Prompt:   strings.TrimSpace(req.Prompt),
		Content:  strings.TrimSpace(req.Content),
		Packages: intelSummary(req.Intel),
	}

	messages := model.Prompt
	if len(messages) == 0 {
		messages = defaultTemplateMessages()
	}

	rendered := make([]domain.PromptMessage, 0, len(messages))
	for _, msg := range messages {
		content, err := executeTemplate(msg.Content, data)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, domain.PromptMessage{
			Role:    msg.Role,
			Content: strings.TrimSpace(content),
		})
	}

	if !hasUserMessage(rendered) {
		fallback, err := executeTemplate("{{.Prompt}}\n\n{{.Content}}", data)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, domain.PromptMessage{
			Role:    "user",
			Content: strings.TrimSpace(fallback),
		})
	}

	return rendered, nil
}

type templateData struct {
	Prompt   string
	Content  string
	Packages string
}

// intelSummary flattens gathered registry records into a compact block the
// model can quote from. Absent sources are listed so the model knows what
// context is missing.
func intelSummary(intel []domain.PackageIntel) string {
	if len(intel) == 0 {
		return ""
	}
	var lines []string
	for _, pkg := range intel {
		lines = append(lines, fmt.Sprintf("Package %s:", pkg.Subject))
		for name, res := range pkg.Sources {
			if res.Absent {
				lines = append(lines, fmt.Sprintf("  %s: unavailable (%s)", name, res.Reason))
				continue
			}
			lines = append(lines, fmt.Sprintf("  %s: %s", name, compactJSON(res.Data)))
		}
	}
	return strings.Join(lines, "\n")
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func executeTemplate(raw string, data templateData) (string, error) {
	tmpl, err := template.New("prompt").Parse(raw)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func hasUserMessage(messages []domain.PromptMessage) bool {
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "user") {
			return true
		}
	}
	return false
}

func defaultTemplateMessages() []domain.PromptMessage {
	return []domain.PromptMessage{
		{
			Role: "system",
			Content: `You are an SDK testing assistant.
Analyze the given shell command and its output. Explain what the command was
trying to do, why it failed if it failed, and suggest the next step.
{{if .Packages}}Package documentation context:
{{.Packages}}{{end}}`,
		},
		{
			Role:    "user",
			Content: "{{.Prompt}}\n\n{{.Content}}",
		},
	}
}
