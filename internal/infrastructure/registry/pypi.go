// Package registry implements the multi-source package lookup: independent
// clients for PyPI, GitHub and ReadTheDocs, and the Fetcher that runs them in
// parallel behind the cache and the rate limiter.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

const pypiBaseURL = "https://pypi.org"

// PyPIClient looks a package up against the PyPI JSON API.
type PyPIClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewPyPIClient builds the PyPI source client on a shared HTTP client.
func NewPyPIClient(client *http.Client) *PyPIClient {
	return &PyPIClient{httpClient: client, baseURL: pypiBaseURL}
}

func (c *PyPIClient) Name() string   { return domain.SourcePyPI }
func (c *PyPIClient) Domain() string { return "pypi.org" }

// pypiInfo is the slice of the PyPI "info" object this tool cares about.
type pypiInfo struct {
	Name           string            `json:"name"`
	Version        string            `json:"version"`
	Summary        string            `json:"summary"`
	Author         string            `json:"author"`
	License        string            `json:"license"`
	RequiresPython string            `json:"requires_python"`
	RequiresDist   []string          `json:"requires_dist"`
	ProjectURLs    map[string]string `json:"project_urls"`
}

// Lookup implements ports.SourceClient.
func (c *PyPIClient) Lookup(ctx context.Context, subject string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/pypi/%s/json", c.baseURL, subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var body struct {
		Info pypiInfo `json:"info"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return json.Marshal(body.Info)
}

var _ ports.SourceClient = (*PyPIClient)(nil)
