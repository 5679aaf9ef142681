package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/dealscout/shopping-mcp/cmd/mcp-server/auth"
	"github.com/dealscout/shopping-mcp/cmd/mcp-server/handlers"
	"github.com/dealscout/shopping-mcp/internal/config"
	"github.com/dealscout/shopping-mcp/internal/firecrawl"
	"github.com/dealscout/shopping-mcp/pkg/mcp"
)

const serviceVersion = "1.0.0"

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "shopping-mcp").Logger()

	config.LoadEnv(log, "../../.env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	fc := firecrawl.New(cfg.FirecrawlAPIKey, cfg.FirecrawlBaseURL, log)
	if !fc.Configured() {
		log.Warn().Msg("FIRECRAWL_API_KEY not set; shopping tools will report the missing credential")
	}

	shopping := handlers.NewShoppingHandler(fc, log)
	calculator := handlers.NewCalculatorHandler()

	var defs []mcp.ToolDef
	for _, tool := range shopping.ListTools() {
		defs = append(defs, mcp.ToolDef{Tool: tool, Handler: shopping.HandleTool})
	}
	for _, tool := range calculator.ListTools() {
		defs = append(defs, mcp.ToolDef{Tool: tool, Handler: calculator.HandleTool})
	}

	registry, err := mcp.NewRegistry(defs...)
	if err != nil {
		log.Fatal().Err(err).Msg("building tool registry")
	}

	info := mcp.ServerInfo{Name: "shopping-mcp-server", Version: serviceVersion}
	sseServer := mcp.NewSSEServer(info, registry, log)
	httpServer := mcp.NewHTTPServer(info, registry, log)

	// The gate is optional: with no secret configured the server runs open.
	gated := func(fn http.HandlerFunc) http.Handler { return fn }
	if cfg.APIKey != "" {
		gate := auth.RequireKey(cfg.APIKey)
		gated = func(fn http.HandlerFunc) http.Handler { return gate.Handler(fn) }
	} else {
		log.Warn().Msg("MCP_API_KEY not set; running without the access gate")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpServer.HandleHealth)
	mux.Handle("/sse", gated(sseServer.HandleSSE))
	mux.Handle("/message", gated(sseServer.HandleMessage))
	mux.Handle("/mcp", gated(httpServer.HandleRPC))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Int("tools", len(defs)).Msg("starting shopping MCP server")
	if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+auth.APIKeyHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
