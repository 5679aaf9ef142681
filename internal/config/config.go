package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server reads at startup. Values come from an
// optional YAML file (CONFIG_FILE) with environment variables layered on
// top; env always wins.
type Config struct {
	// Port the unified server listens on.
	Port int `yaml:"port"`

	// APIKey is the inbound shared secret. When empty the server runs
	// ungated.
	APIKey string `yaml:"api_key"`

	// FirecrawlAPIKey authenticates outbound search/extract calls. When
	// empty the shopping tools report the missing credential instead of
	// calling out.
	FirecrawlAPIKey string `yaml:"firecrawl_api_key"`

	// FirecrawlBaseURL overrides the hosted API endpoint, mainly for tests.
	FirecrawlBaseURL string `yaml:"firecrawl_base_url"`
}

const defaultPort = 3000

// Load builds the Config from CONFIG_FILE (if set) and the environment.
func Load() (*Config, error) {
	cfg := &Config{Port: defaultPort}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = p
	}
	if v := os.Getenv("MCP_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("FIRECRAWL_API_KEY"); v != "" {
		cfg.FirecrawlAPIKey = v
	}
	if v := os.Getenv("FIRECRAWL_BASE_URL"); v != "" {
		cfg.FirecrawlBaseURL = v
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port %d out of range", cfg.Port)
	}
	return cfg, nil
}
