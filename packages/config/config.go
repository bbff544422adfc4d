package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AllCategories is the canonical ordering of analysis categories. The
// report always presents sections in this order no matter what the
// model produces.
var AllCategories = []string{
	"performance",
	"maintainability",
	"design_patterns",
	"code_quality",
	"security",
	"modularity",
}

var categoryTitles = map[string]string{
	"performance":     "Performance",
	"maintainability": "Maintainability",
	"design_patterns": "Design Patterns",
	"code_quality":    "Code Quality",
	"security":        "Security",
	"modularity":      "Modularity",
}

// CategoryTitle returns the human-readable heading for a category key.
func CategoryTitle(category string) string {
	if title, ok := categoryTitles[category]; ok {
		return title
	}
	return category
}

// Config represents the full application configuration. It is loaded
// once and passed explicitly to every component; there is no global
// configuration holder.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Limits   LimitsConfig   `yaml:"limits"`
	AI       AIConfig       `yaml:"ai"`
	Bot      BotConfig      `yaml:"bot"`
}

// AnalysisConfig selects what gets analyzed.
type AnalysisConfig struct {
	Categories      []string `yaml:"categories"`
	MaxFiles        int      `yaml:"max_files"`
	IncludeTests    bool     `yaml:"include_tests"`
	IncludeConfig   bool     `yaml:"include_config"`
	FocusLargeFiles bool     `yaml:"focus_large_files"`
}

// CategoryEnabled reports whether a category is selected for this run.
func (a AnalysisConfig) CategoryEnabled(category string) bool {
	for _, c := range a.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// EnabledCategories returns the enabled categories in canonical order.
func (a AnalysisConfig) EnabledCategories() []string {
	enabled := make([]string, 0, len(AllCategories))
	for _, c := range AllCategories {
		if a.CategoryEnabled(c) {
			enabled = append(enabled, c)
		}
	}
	return enabled
}

// ScoringConfig holds the file prioritization weights. These are
// policy knobs, not algorithmic necessities; the defaults below are
// the documented formula constants.
type ScoringConfig struct {
	SourceWeight      float64  `yaml:"source_weight"`
	ConfigWeight      float64  `yaml:"config_weight"`
	DocsWeight        float64  `yaml:"docs_weight"`
	SizeWeight        float64  `yaml:"size_weight"`
	IdealFileSize     int64    `yaml:"ideal_file_size"`
	DepthWeight       float64  `yaml:"depth_weight"`
	EntryPointBonus   float64  `yaml:"entry_point_bonus"`
	PriorityFileBonus float64  `yaml:"priority_file_bonus"`
	DenyPatterns      []string `yaml:"deny_patterns"`
}

// LimitsConfig bounds fetch and prompt sizes.
type LimitsConfig struct {
	MaxFileSize      int64 `yaml:"max_file_size"`      // per-file fetch ceiling, bytes
	FileContentCap   int   `yaml:"file_content_cap"`   // per-file bytes embedded in the prompt
	PromptByteBudget int   `yaml:"prompt_byte_budget"` // total prompt ceiling, bytes
}

// AIConfig contains model settings for the generation call.
type AIConfig struct {
	Model           string  `yaml:"model"`
	Temperature     float32 `yaml:"temperature"`
	TopK            int32   `yaml:"top_k"`
	TopP            float32 `yaml:"top_p"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// BotConfig configures the GitHub App mode. AnalyzedLabel marks issues
// that already received a report so redeliveries and re-labeling do
// not trigger another run.
type BotConfig struct {
	TriggerLabel  string `yaml:"trigger_label"`
	AnalyzedLabel string `yaml:"analyzed_label"`
}

// Default returns the built-in configuration. A YAML file loaded with
// Load overlays these values.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Categories:      append([]string(nil), AllCategories...),
			MaxFiles:        50,
			IncludeTests:    false,
			IncludeConfig:   true,
			FocusLargeFiles: true,
		},
		Scoring: ScoringConfig{
			SourceWeight:      30,
			ConfigWeight:      15,
			DocsWeight:        5,
			SizeWeight:        20,
			IdealFileSize:     8192,
			DepthWeight:       10,
			EntryPointBonus:   15,
			PriorityFileBonus: 25,
			DenyPatterns: []string{
				".git", ".github", ".vscode", ".idea",
				"node_modules", "__pycache__", ".pytest_cache", ".tox",
				"dist", "build", "target", "out", "coverage",
				"venv", ".venv", "logs", "tmp", "temp",
				"vendor", "public/assets", "static/assets", "assets/images",
			},
		},
		Limits: LimitsConfig{
			MaxFileSize:      512 * 1024,
			FileContentCap:   20000,
			PromptByteBudget: 800000,
		},
		AI: AIConfig{
			Model:           "gemini-2.5-pro",
			Temperature:     0.3,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 100000,
		},
		Bot: BotConfig{
			TriggerLabel:  "refactor-analyze",
			AnalyzedLabel: "refactor-analyzed",
		},
	}
}

// Load reads a YAML configuration file over the defaults. An empty
// path returns the defaults unchanged.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a run.
func (c *Config) Validate() error {
	if c.Analysis.MaxFiles <= 0 {
		return fmt.Errorf("analysis.max_files must be positive, got %d", c.Analysis.MaxFiles)
	}
	for _, cat := range c.Analysis.Categories {
		if _, ok := categoryTitles[cat]; !ok {
			return fmt.Errorf("unknown analysis category: %q", cat)
		}
	}
	if len(c.Analysis.Categories) == 0 {
		return fmt.Errorf("at least one analysis category must be enabled")
	}
	if c.Scoring.IdealFileSize <= 0 {
		return fmt.Errorf("scoring.ideal_file_size must be positive, got %d", c.Scoring.IdealFileSize)
	}
	if c.Limits.PromptByteBudget <= 0 {
		return fmt.Errorf("limits.prompt_byte_budget must be positive, got %d", c.Limits.PromptByteBudget)
	}
	return nil
}
