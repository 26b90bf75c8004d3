package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

const githubAPIBaseURL = "https://api.github.com"

// GitHubClient resolves a package to its most relevant repository via the
// GitHub search API, then pulls the repository detail record. A GITHUB_TOKEN
// in the environment raises the unauthenticated search quota but is optional.
type GitHubClient struct {
	httpClient *http.Client
	baseURL    string
	tokenEnv   string
}

// NewGitHubClient builds the GitHub source client on a shared HTTP client.
func NewGitHubClient(client *http.Client) *GitHubClient {
	return &GitHubClient{httpClient: client, baseURL: githubAPIBaseURL, tokenEnv: "GITHUB_TOKEN"}
}

func (c *GitHubClient) Name() string   { return domain.SourceGitHub }
func (c *GitHubClient) Domain() string { return "github.com" }

// repoInfo is the slice of the repository detail record this tool cares about.
type repoInfo struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	Stars         int      `json:"stargazers_count"`
	Forks         int      `json:"forks_count"`
	OpenIssues    int      `json:"open_issues_count"`
	LastUpdate    string   `json:"updated_at"`
	Topics        []string `json:"topics"`
	Homepage      string   `json:"homepage"`
	DefaultBranch string   `json:"default_branch"`
	License       struct {
		Name string `json:"name"`
	} `json:"license"`
}

// Lookup implements ports.SourceClient.
func (c *GitHubClient) Lookup(ctx context.Context, subject string) (json.RawMessage, error) {
	query := url.QueryEscape(subject + " language:python")
	searchURL := fmt.Sprintf("%s/search/repositories?q=%s", c.baseURL, query)

	var search struct {
		Items []struct {
			URL string `json:"url"`
		} `json:"items"`
	}
	if err := c.getJSON(ctx, searchURL, &search); err != nil {
		return nil, fmt.Errorf("search repositories: %w", err)
	}
	if len(search.Items) == 0 {
		return nil, fmt.Errorf("no repository found for %q", subject)
	}

	var repo repoInfo
	if err := c.getJSON(ctx, search.Items[0].URL, &repo); err != nil {
		return nil, fmt.Errorf("fetch repository: %w", err)
	}
	return json.Marshal(repo)
}

func (c *GitHubClient) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if token := os.Getenv(c.tokenEnv); token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ ports.SourceClient = (*GitHubClient)(nil)
