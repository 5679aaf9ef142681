package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/dealscout/shopping-mcp/internal/firecrawl"
	"github.com/dealscout/shopping-mcp/internal/models"
	"github.com/dealscout/shopping-mcp/pkg/mcp"
)

type retailSite struct {
	Name   string
	Domain string
}

// Fixed result order: Amazon first, then Walmart.
var retailSites = [2]retailSite{
	{Name: "Amazon", Domain: "amazon.com"},
	{Name: "Walmart", Domain: "walmart.com"},
}

const (
	searchResultLimit = 1

	missingCredentialText = "FIRECRAWL_API_KEY is not configured. Set it to enable product search and price extraction."
	searchFetchErrorText  = "Error fetching product URLs: the search API returned a non-success status."
	searchFailureText     = "Error searching for product URLs."
	extractFetchErrorText = "Error extracting price: the extraction API returned a non-success status."
	extractFailureText    = "Error extracting the product price."
	priceNotFoundText     = "Price not found"

	pricePrompt = "Extract the current price of the product on this page. Omit currency symbols."
)

// priceSchema is the output shape requested from the extraction API: a
// single string field named price, described without currency symbols.
var priceSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"price": map[string]interface{}{
			"type":        "string",
			"description": "The product price without any currency symbols",
		},
	},
	"required": []string{"price"},
}

// outcome is the tagged internal result of a shopping tool call. Handlers
// resolve every failure mode into one of these and flatten to the text-only
// ToolResult at the HandleTool edge, so tests and internal callers see a
// typed distinction while the wire contract stays text.
type outcome struct {
	kind  outcomeKind
	texts []string
}

type outcomeKind int

const (
	outcomeOK outcomeKind = iota
	outcomeConfigMissing
	outcomeUpstreamFailed
	outcomeFailed
)

func (o outcome) flatten() mcp.ToolResult {
	return mcp.TextResult(o.texts...)
}

// ShoppingHandler handles the product search and price extraction tools.
type ShoppingHandler struct {
	client firecrawl.Client
	log    zerolog.Logger
}

// NewShoppingHandler creates a new shopping handler.
func NewShoppingHandler(client firecrawl.Client, log zerolog.Logger) *ShoppingHandler {
	return &ShoppingHandler{client: client, log: log}
}

// ListTools returns the shopping tool definitions.
func (h *ShoppingHandler) ListTools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "find_product_urls",
			Description: "Find product page URLs for a product name on Amazon and Walmart",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"productName": map[string]interface{}{
						"type":        "string",
						"minLength":   1,
						"description": "Name of the product to search for, e.g. 'Echo Dot'",
					},
				},
				"required": []string{"productName"},
			},
		},
		{
			Name:        "extract_product_price",
			Description: "Extract the price from a product page URL",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"productUrl": map[string]interface{}{
						"type":        "string",
						"format":      "uri",
						"description": "Full URL of the product page",
					},
				},
				"required": []string{"productUrl"},
			},
		},
	}
}

// HandleTool dispatches a validated shopping tool call.
func (h *ShoppingHandler) HandleTool(ctx context.Context, call mcp.ToolCall) (mcp.ToolResult, error) {
	var out outcome
	switch call.Name {
	case "find_product_urls":
		out = h.findProductURLs(ctx, call.Arguments)
	case "extract_product_price":
		out = h.extractProductPrice(ctx, call.Arguments)
	default:
		return mcp.ToolResult{}, &mcp.ProtocolError{
			Code:    mcp.CodeInvalidParams,
			Message: fmt.Sprintf("unknown tool: %s", call.Name),
		}
	}
	return out.flatten(), nil
}

// findProductURLs issues one site-scoped search per retail site, joined
// before any result is produced. Either call failing fails the pair; the
// surviving site's data is never returned alongside an error.
func (h *ShoppingHandler) findProductURLs(ctx context.Context, args map[string]interface{}) outcome {
	productName, _ := args["productName"].(string)

	if !h.client.Configured() {
		return outcome{kind: outcomeConfigMissing, texts: []string{missingCredentialText}}
	}

	type siteResult struct {
		resp *models.SearchResponse
		err  error
	}
	var results [len(retailSites)]siteResult

	var wg conc.WaitGroup
	for i, site := range retailSites {
		wg.Go(func() {
			query := fmt.Sprintf("site:%s %s", site.Domain, productName)
			resp, err := h.client.Search(ctx, query, searchResultLimit)
			results[i] = siteResult{resp: resp, err: err}
		})
	}
	if rec := wg.WaitAndRecover(); rec != nil {
		h.log.Error().Str("panic", rec.String()).Msg("product search panicked")
		return outcome{kind: outcomeFailed, texts: []string{searchFailureText}}
	}

	for i, res := range results {
		if res.err == nil {
			continue
		}
		var statusErr *firecrawl.StatusError
		if errors.As(res.err, &statusErr) {
			h.log.Warn().Int("status", statusErr.Code).Str("site", retailSites[i].Domain).Msg("product search upstream failure")
			return outcome{kind: outcomeUpstreamFailed, texts: []string{searchFetchErrorText}}
		}
		h.log.Error().Err(res.err).Str("site", retailSites[i].Domain).Msg("product search failed")
		return outcome{kind: outcomeFailed, texts: []string{searchFailureText}}
	}

	texts := make([]string, 0, len(retailSites))
	for i, site := range retailSites {
		texts = append(texts, firstResultURL(results[i].resp, site))
	}
	return outcome{kind: outcomeOK, texts: texts}
}

// firstResultURL reduces a search response to its first hit's URL, degrading
// to a per-site sentinel when the result set is empty or carries no URL.
func firstResultURL(resp *models.SearchResponse, site retailSite) string {
	if resp != nil && len(resp.Data) > 0 && resp.Data[0].URL != "" {
		return resp.Data[0].URL
	}
	return fmt.Sprintf("No %s result found", site.Name)
}

// extractProductPrice asks the extraction API for the price field of the
// given page. A missing price field degrades to a sentinel, not an error.
func (h *ShoppingHandler) extractProductPrice(ctx context.Context, args map[string]interface{}) outcome {
	productURL, _ := args["productUrl"].(string)

	if !h.client.Configured() {
		return outcome{kind: outcomeConfigMissing, texts: []string{missingCredentialText}}
	}

	resp, err := h.client.Extract(ctx, productURL, priceSchema, pricePrompt)
	if err != nil {
		var statusErr *firecrawl.StatusError
		if errors.As(err, &statusErr) {
			h.log.Warn().Int("status", statusErr.Code).Str("url", productURL).Msg("price extraction upstream failure")
			return outcome{kind: outcomeUpstreamFailed, texts: []string{extractFetchErrorText}}
		}
		h.log.Error().Err(err).Str("url", productURL).Msg("price extraction failed")
		return outcome{kind: outcomeFailed, texts: []string{extractFailureText}}
	}

	price, ok := resp.Data["price"]
	if !ok || price == nil {
		return outcome{kind: outcomeOK, texts: []string{priceNotFoundText}}
	}
	return outcome{kind: outcomeOK, texts: []string{fmt.Sprintf("%v", price)}}
}
