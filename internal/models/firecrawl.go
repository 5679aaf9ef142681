package models

// Firecrawl API wire types. Only the fields this server reads are modeled;
// the upstream documents carry more.

// SearchRequest is the body POSTed to the search endpoint.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchResponse is the search endpoint's reply. A missing or empty Data
// array is not an error; callers substitute a not-found sentinel.
type SearchResponse struct {
	Success bool           `json:"success"`
	Data    []SearchResult `json:"data"`
}

// SearchResult is one hit in a search response.
type SearchResult struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExtractRequest is the body POSTed to the extract endpoint. Schema is a
// JSON Schema describing the fields the extractor should return.
type ExtractRequest struct {
	URLs   []string               `json:"urls"`
	Prompt string                 `json:"prompt,omitempty"`
	Schema map[string]interface{} `json:"schema,omitempty"`
}

// ExtractResponse is the extract endpoint's reply. Data holds whatever
// fields the extractor produced; absent fields degrade to sentinels at the
// call site.
type ExtractResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
}
