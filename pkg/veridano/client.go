// Package veridano provides the client for the Veridano intelligence
// platform's search API. Each call is a fresh request; the client keeps
// no local cache.
package veridano

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veridano/threat-sentinel/internal/types"
	"github.com/veridano/threat-sentinel/internal/version"
)

// maxErrorBody bounds how much of an error response is retained for
// diagnostics.
const maxErrorBody = 4096

// Client handles communication with the Veridano search API.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        *logrus.Logger
}

// Config for the Veridano client.
type Config struct {
	Endpoint string
	APIKey   string // optional; the public platform is unauthenticated
	Timeout  time.Duration
}

// NewClient creates a new Veridano API client.
func NewClient(cfg Config, log *logrus.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// SearchRequest is one semantic search against the platform. An empty
// Sources list means all known sources.
type SearchRequest struct {
	Query    string   `json:"query"`
	TopK     int      `json:"top_k"`
	MinScore float64  `json:"min_score"`
	Sources  []string `json:"sources,omitempty"`
}

// searchResponse is the upstream wire format. Vulnerability sources
// report cvss_score; the rest carry only the similarity score.
type searchResponse struct {
	Documents []struct {
		ID            string   `json:"id"`
		Title         string   `json:"title"`
		Content       string   `json:"content"`
		Source        string   `json:"source"`
		Score         float64  `json:"score"`
		CVSSScore     *float64 `json:"cvss_score"`
		PublishedDate string   `json:"published_date"`
	} `json:"documents"`
	TotalResults int `json:"total_results"`
}

// Search runs one query and returns findings most-relevant first.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]types.Finding, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if req.TopK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", req.TopK)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/search", c.endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", "threat-sentinel/"+version.Version)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: fmt.Sprintf("malformed response: %v", err)}
	}

	findings := make([]types.Finding, 0, len(decoded.Documents))
	for _, doc := range decoded.Documents {
		score := doc.Score
		if doc.CVSSScore != nil {
			score = *doc.CVSSScore
		}
		findings = append(findings, types.Finding{
			ID:        doc.ID,
			Title:     doc.Title,
			Body:      doc.Content,
			Source:    doc.Source,
			Score:     score,
			Published: parsePublished(doc.PublishedDate),
		})
	}

	c.log.WithFields(logrus.Fields{
		"query":   req.Query,
		"results": len(findings),
		"total":   decoded.TotalResults,
	}).Debug("Veridano search complete")

	return findings, nil
}

// CVEDetails looks up a single CVE record from the NVD source.
func (c *Client) CVEDetails(ctx context.Context, cveID string) ([]types.Finding, error) {
	if cveID == "" {
		return nil, fmt.Errorf("cve id must not be empty")
	}
	return c.Search(ctx, SearchRequest{
		Query:    cveID,
		TopK:     1,
		MinScore: 0.9,
		Sources:  []string{"NVD"},
	})
}

// parsePublished parses the upstream ISO-8601 timestamp. A finding with
// an unparseable date keeps the zero time rather than failing the batch.
func parsePublished(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
