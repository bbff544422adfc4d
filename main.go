package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"refactor-agent/packages/ai"
	"refactor-agent/packages/analyzer"
	"refactor-agent/packages/config"
	"refactor-agent/packages/handlers"
	"refactor-agent/packages/repository"

	"github.com/cheggaaa/pb/v3"
	"github.com/joho/godotenv"
	"github.com/swinton/go-probot/probot"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	repoURL := flag.String("url", "", "GitHub repository URL to analyze")
	outFile := flag.String("out", "", "write the markdown report to this file (default stdout)")
	configPath := flag.String("config", "", "path to a YAML config file")
	maxFiles := flag.Int("max-files", 0, "maximum number of files to analyze")
	categories := flag.String("categories", "", "comma-separated analysis categories")
	includeTests := flag.Bool("include-tests", false, "analyze test files too")
	includeConfig := flag.Bool("include-config", true, "analyze configuration and build files")
	focusLarge := flag.Bool("focus-large", true, "prioritize larger files")
	botMode := flag.Bool("bot", false, "run as a GitHub App listening for issue events")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, *maxFiles, *categories, *includeTests, *includeConfig, *focusLarge)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if *botMode {
		loadPrivateKey()
		slog.Info("Starting in bot mode", "triggerLabel", cfg.Bot.TriggerLabel)
		probot.HandleEvent("issues", handlers.NewIssueHandler(cfg))
		probot.Start()
		return nil
	}

	if *repoURL == "" {
		flag.Usage()
		return fmt.Errorf("a repository URL is required (-url)")
	}
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY must be set")
	}

	ctx := context.Background()
	client := repository.NewClient(ctx, os.Getenv("GITHUB_TOKEN"), cfg.Limits.MaxFileSize)
	gen := ai.NewGeminiGenerator(apiKey, cfg.AI)

	var bar *pb.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = pb.Full.Start(total)
		}
		bar.SetCurrent(int64(done))
	}

	reportMD, err := analyzer.Run(ctx, client, gen, cfg, *repoURL, progress)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if *outFile == "" {
		fmt.Println(reportMD)
		return nil
	}
	if err := os.WriteFile(*outFile, []byte(reportMD), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	slog.Info("Report written", "path", *outFile)
	return nil
}

// loadPrivateKey reads the GitHub App private key from the path in
// GITHUB_APP_PRIVATE_KEY_PATH into GITHUB_APP_PRIVATE_KEY, where
// probot expects it.
func loadPrivateKey() {
	keyPath := os.Getenv("GITHUB_APP_PRIVATE_KEY_PATH")
	if keyPath == "" {
		return
	}
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		slog.Error("Failed to read private key", "keyPath", keyPath, "error", err)
		return
	}
	os.Setenv("GITHUB_APP_PRIVATE_KEY", string(keyData))
	slog.Info("Private key loaded", "keyPath", keyPath)
}

// applyFlags overrides config values with explicitly set CLI flags.
func applyFlags(cfg *config.Config, maxFiles int, categories string, includeTests, includeConfig, focusLarge bool) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["max-files"] && maxFiles > 0 {
		cfg.Analysis.MaxFiles = maxFiles
	}
	if set["categories"] && categories != "" {
		cfg.Analysis.Categories = cfg.Analysis.Categories[:0]
		for _, c := range strings.Split(categories, ",") {
			cfg.Analysis.Categories = append(cfg.Analysis.Categories, strings.TrimSpace(c))
		}
	}
	if set["include-tests"] {
		cfg.Analysis.IncludeTests = includeTests
	}
	if set["include-config"] {
		cfg.Analysis.IncludeConfig = includeConfig
	}
	if set["focus-large"] {
		cfg.Analysis.FocusLargeFiles = focusLarge
	}
}
