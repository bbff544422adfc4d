package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"refactor-agent/packages/config"
	"refactor-agent/types"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var (
	ErrPromptTooLarge   = errors.New("prompt exceeds the configured byte budget")
	ErrGenerationFailed = errors.New("text generation failed")
)

// Generator is the text-generation capability boundary: one prompt in,
// one text response out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator implements Generator against the Gemini API.
type GeminiGenerator struct {
	apiKey string
	cfg    config.AIConfig
}

func NewGeminiGenerator(apiKey string, cfg config.AIConfig) *GeminiGenerator {
	return &GeminiGenerator{apiKey: apiKey, cfg: cfg}
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set in environment")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		slog.Error("Failed to create Gemini client", "error", err)
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(g.cfg.Model)
	model.SetTemperature(g.cfg.Temperature)
	model.SetTopK(g.cfg.TopK)
	model.SetTopP(g.cfg.TopP)
	model.SetMaxOutputTokens(g.cfg.MaxOutputTokens)

	slog.Info("Sending request to Gemini API", "model", g.cfg.Model, "promptBytes", len(prompt))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		slog.Error("Failed to generate content", "error", err)
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	slog.Info("Successfully generated suggestions", "contentLength", len(text))
	return text, nil
}

// Engine builds the analysis prompt and invokes the generation
// capability once per run.
type Engine struct {
	gen Generator
	cfg *config.Config
}

func NewEngine(gen Generator, cfg *config.Config) *Engine {
	return &Engine{gen: gen, cfg: cfg}
}

// Analyze sends the selected files to the model and returns its raw
// text. Files must arrive ordered by descending importance score: when
// the assembled prompt exceeds the byte budget, the lowest-scoring
// files are dropped and the sizing pass re-runs once before the call
// fails with ErrPromptTooLarge.
func (e *Engine) Analyze(ctx context.Context, files []types.ScoredFile, meta types.RepoMetadata) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("%w: no files to analyze", ErrGenerationFailed)
	}

	prompt, err := e.sizedPrompt(files, meta)
	if err != nil {
		return "", err
	}

	out, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return out, nil
}

func (e *Engine) sizedPrompt(files []types.ScoredFile, meta types.RepoMetadata) (string, error) {
	budget := e.cfg.Limits.PromptByteBudget
	prompt := buildPrompt(files, meta, e.cfg)
	if len(prompt) <= budget {
		return prompt, nil
	}

	// Secondary truncation: shed lowest-scoring files until the
	// estimated overshoot is covered, then rebuild once.
	over := len(prompt) - budget
	keep := len(files)
	for keep > 1 && over > 0 {
		keep--
		over -= len(embeddedContent(files[keep].Content, e.cfg.Limits.FileContentCap))
	}

	slog.Warn("Prompt over budget, dropping lowest-scoring files",
		"budget", budget, "promptBytes", len(prompt), "kept", keep, "dropped", len(files)-keep)

	prompt = buildPrompt(files[:keep], meta, e.cfg)
	if len(prompt) > budget {
		return "", fmt.Errorf("%w: %d bytes after truncation (budget %d)", ErrPromptTooLarge, len(prompt), budget)
	}
	return prompt, nil
}
