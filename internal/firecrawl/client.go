package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dealscout/shopping-mcp/internal/models"
)

// DefaultBaseURL is the hosted Firecrawl API.
const DefaultBaseURL = "https://api.firecrawl.dev"

// StatusError reports a non-success HTTP status from the API. Handlers
// branch on it to distinguish an unavailable upstream from other failures.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("firecrawl returned status %d", e.Code)
}

// Client is the narrow surface the tool handlers depend on: one search
// operation, one schema-driven extraction, and a credential probe. Swapping
// the provider or stubbing it in tests means implementing these three.
type Client interface {
	Configured() bool
	Search(ctx context.Context, query string, limit int) (*models.SearchResponse, error)
	Extract(ctx context.Context, pageURL string, schema map[string]interface{}, prompt string) (*models.ExtractResponse, error)
}

// Shared HTTP client with connection pooling. No request timeout is set
// here; outbound calls run on transport defaults.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// HTTPClient talks to the Firecrawl HTTP API.
type HTTPClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// New creates a Firecrawl client. An empty apiKey yields a client that
// reports itself unconfigured; callers short-circuit before any request.
func New(apiKey, baseURL string, log zerolog.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  sharedHTTPClient,
		log:     log,
	}
}

// Configured reports whether an API credential is present.
func (c *HTTPClient) Configured() bool {
	return c.apiKey != ""
}

// Search runs one query against the search endpoint.
func (c *HTTPClient) Search(ctx context.Context, query string, limit int) (*models.SearchResponse, error) {
	c.log.Debug().Str("query", query).Int("limit", limit).Msg("firecrawl search")

	body, err := c.post(ctx, "/v1/search", models.SearchRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, err
	}

	var resp models.SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	return &resp, nil
}

// Extract asks the extraction endpoint to pull schema-described fields out
// of the given page.
func (c *HTTPClient) Extract(ctx context.Context, pageURL string, schema map[string]interface{}, prompt string) (*models.ExtractResponse, error) {
	c.log.Debug().Str("url", pageURL).Msg("firecrawl extract")

	body, err := c.post(ctx, "/v1/extract", models.ExtractRequest{
		URLs:   []string{pageURL},
		Prompt: prompt,
		Schema: schema,
	})
	if err != nil {
		return nil, err
	}

	var resp models.ExtractResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing extract response: %w", err)
	}
	return &resp, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	reqJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("firecrawl non-success status")
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return body, nil
}
