package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ryosukesatoh/arxiv-digest/internal/category"
)

type Config struct {
	Schedule   string         `yaml:"schedule"`
	DaysBack   int            `yaml:"days_back"`
	MaxPapers  int            `yaml:"max_papers"`
	RunOnStart bool           `yaml:"run_on_start"`
	Fetcher    FetcherConfig  `yaml:"fetcher"`
	Analyzer   AnalyzerConfig `yaml:"analyzer"`
	Notion     NotionConfig   `yaml:"notion"`
}

type FetcherConfig struct {
	Categories            []string `yaml:"categories"`
	MaxResultsPerCategory int      `yaml:"max_results_per_category"`
}

type AnalyzerConfig struct {
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	MaxTokens int    `yaml:"max_tokens"`
}

type NotionConfig struct {
	APIKey       string `yaml:"api_key"`
	DatabaseID   string `yaml:"database_id"`
	ParentPageID string `yaml:"parent_page_id"`
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

func setDefaults(cfg *Config) {
	if cfg.Schedule == "" {
		cfg.Schedule = "0 8 * * *"
	}
	if cfg.DaysBack == 0 {
		cfg.DaysBack = 1
	}
	if cfg.MaxPapers == 0 {
		cfg.MaxPapers = 15
	}
	if len(cfg.Fetcher.Categories) == 0 {
		cfg.Fetcher.Categories = category.DefaultCategories
	}
	if cfg.Fetcher.MaxResultsPerCategory == 0 {
		cfg.Fetcher.MaxResultsPerCategory = 50
	}
	if cfg.Analyzer.Model == "" {
		cfg.Analyzer.Model = "claude-sonnet-4-20250514"
	}
	if cfg.Analyzer.MaxTokens == 0 {
		cfg.Analyzer.MaxTokens = 2048
	}
	if cfg.Analyzer.APIKey == "" {
		cfg.Analyzer.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Notion.APIKey == "" {
		cfg.Notion.APIKey = os.Getenv("NOTION_API_KEY")
	}
	if cfg.Notion.DatabaseID == "" {
		cfg.Notion.DatabaseID = os.Getenv("NOTION_DATABASE_ID")
	}
	if cfg.Notion.ParentPageID == "" {
		cfg.Notion.ParentPageID = os.Getenv("NOTION_PARENT_PAGE_ID")
	}
}

func validate(cfg *Config) error {
	if cfg.Analyzer.APIKey == "" {
		return fmt.Errorf("config: analyzer.api_key is required (set ANTHROPIC_API_KEY env var)")
	}
	if cfg.Notion.APIKey == "" {
		return fmt.Errorf("config: notion.api_key is required (set NOTION_API_KEY env var)")
	}
	if cfg.DaysBack < 0 {
		return fmt.Errorf("config: days_back must not be negative")
	}
	if cfg.MaxPapers < 0 {
		return fmt.Errorf("config: max_papers must not be negative")
	}
	return nil
}

// Load reads the config file (when path is non-empty), expands
// environment variables, applies defaults and environment fallbacks,
// and validates the result. Credentials never have built-in defaults;
// a missing one fails here, before anything is fetched.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}

		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
