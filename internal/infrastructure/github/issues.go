// Package github files tracker issues for recorded command errors.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

// IssueClient creates issues against one repository via the GitHub REST API.
type IssueClient struct {
	httpClient *http.Client
	baseURL    string
	repo       string
	token      string
}

// NewIssueClient validates the settings and resolves the token from the
// configured environment variable. Disabled or incomplete settings are an
// error so the caller can decide to run without issue filing.
func NewIssueClient(client *http.Client, settings domain.GitHubSettings) (*IssueClient, error) {
	if !settings.Enabled {
		return nil, errors.New("github issue filing disabled")
	}
	if settings.Repo == "" {
		return nil, errors.New("github.repo not configured")
	}
	envVar := settings.TokenEnvVar
	if envVar == "" {
		envVar = "GITHUB_TOKEN"
	}
	token := os.Getenv(envVar)
	if token == "" {
		return nil, fmt.Errorf("missing GitHub token: set %s environment variable", envVar)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &IssueClient{
		httpClient: client,
		baseURL:    "https://api.github.com",
		repo:       settings.Repo,
		token:      token,
	}, nil
}

type issueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

type issueResponse struct {
	HTMLURL string `json:"html_url"`
}

// CreateIssue files one issue and returns its URL.
func (c *IssueClient) CreateIssue(ctx context.Context, record domain.ErrorRecord) (string, error) {
	payload, err := json.Marshal(issueRequest{
		Title:  record.Summary,
		Body:   record.Description,
		Labels: record.Labels,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/repos/%s/issues", c.baseURL, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("github issue request failed: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var created issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode github response: %w", err)
	}
	return created.HTMLURL, nil
}

var _ ports.IssueCreator = (*IssueClient)(nil)
