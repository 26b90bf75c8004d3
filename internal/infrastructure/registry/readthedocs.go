package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

// readTheDocsURLFormat expands the subject into its hosted docs URL.
const readTheDocsURLFormat = "https://%s.readthedocs.io/en/latest/"

var (
	titleRe   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	headingRe = regexp.MustCompile(`(?is)<h[1-3][^>]*>(.*?)</h[1-3]>`)
	tagRe     = regexp.MustCompile(`(?s)<[^>]*>`)
)

// ReadTheDocsClient probes the package's hosted documentation page and pulls
// out the title and section headings. The page is plain HTML; a shallow regex
// scan is enough for the fields this tool keeps.
type ReadTheDocsClient struct {
	httpClient *http.Client
	urlFormat  string
}

// NewReadTheDocsClient builds the ReadTheDocs source client on a shared HTTP client.
func NewReadTheDocsClient(client *http.Client) *ReadTheDocsClient {
	return &ReadTheDocsClient{httpClient: client, urlFormat: readTheDocsURLFormat}
}

func (c *ReadTheDocsClient) Name() string   { return domain.SourceReadTheDocs }
func (c *ReadTheDocsClient) Domain() string { return "readthedocs.org" }

// docsPage is the extracted documentation summary.
type docsPage struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Sections []string `json:"sections"`
}

// Lookup implements ports.SourceClient.
func (c *ReadTheDocsClient) Lookup(ctx context.Context, subject string) (json.RawMessage, error) {
	url := fmt.Sprintf(c.urlFormat, subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	page := docsPage{URL: url}
	if m := titleRe.FindSubmatch(body); m != nil {
		page.Title = cleanHTMLText(string(m[1]))
	}
	for _, m := range headingRe.FindAllSubmatch(body, -1) {
		if text := cleanHTMLText(string(m[1])); text != "" {
			page.Sections = append(page.Sections, text)
		}
	}
	return json.Marshal(page)
}

func cleanHTMLText(raw string) string {
	text := tagRe.ReplaceAllString(raw, "")
	return strings.TrimSpace(html.UnescapeString(text))
}

var _ ports.SourceClient = (*ReadTheDocsClient)(nil)
