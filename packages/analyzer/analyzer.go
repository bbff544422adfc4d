package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"refactor-agent/packages/ai"
	"refactor-agent/packages/config"
	"refactor-agent/packages/prioritizer"
	"refactor-agent/packages/report"
	"refactor-agent/packages/repository"
	"refactor-agent/types"
)

// Progress is invoked after each file content fetch. The CLI wires a
// progress bar to it; the bot passes nil.
type Progress func(done, total int)

// Run executes one analysis end to end, strictly sequentially:
// resolve, metadata, tree, rank, fetch, generate, assemble. Fatal
// errors abort the run with no partial report; oversized or binary
// files are skipped and counted instead.
func Run(ctx context.Context, client *repository.Client, gen ai.Generator, cfg *config.Config, rawURL string, progress Progress) (string, error) {
	ref, err := repository.Resolve(rawURL)
	if err != nil {
		return "", err
	}
	slog.Info("Resolved repository", "repo", ref.FullName())

	meta, err := client.GetMetadata(ctx, &ref)
	if err != nil {
		return "", fmt.Errorf("failed to fetch repository metadata: %w", err)
	}

	entries, err := client.ListTree(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("failed to list repository tree: %w", err)
	}
	slog.Info("Listed tree", "entries", len(entries), "branch", ref.DefaultBranch)

	ranked := prioritizer.Rank(entries, cfg)
	slog.Info("Ranked files", "selected", len(ranked), "maxFiles", cfg.Analysis.MaxFiles)

	fetched := make([]types.ScoredFile, 0, len(ranked))
	for i, f := range ranked {
		content, err := client.FetchContent(ctx, ref, f.Path)
		switch {
		case errors.Is(err, repository.ErrFileTooLarge), errors.Is(err, repository.ErrDecodeError):
			slog.Warn("Skipping file", "path", f.Path, "reason", err)
		case err != nil:
			return "", fmt.Errorf("failed to fetch %s: %w", f.Path, err)
		default:
			f.Content = content
			f.Complexity = prioritizer.ComplexityScore(content, f.Ext)
			fetched = append(fetched, f)
		}
		if progress != nil {
			progress(i+1, len(ranked))
		}
	}
	if len(fetched) == 0 {
		return "", fmt.Errorf("no analyzable files in %s", ref.FullName())
	}

	meta.Stats = buildStats(entries, fetched)

	slog.Info("Generating suggestions", "files", len(fetched), "model", cfg.AI.Model)
	engine := ai.NewEngine(gen, cfg)
	output, err := engine.Analyze(ctx, fetched, meta)
	if err != nil {
		return "", err
	}

	return report.Build(output, meta, cfg).Render(), nil
}

func buildStats(entries []types.FileEntry, fetched []types.ScoredFile) types.RunStats {
	code := 0
	for _, e := range entries {
		if prioritizer.IsSourceExt(e.Ext) {
			code++
		}
	}
	return types.RunStats{
		TotalFiles:    len(entries),
		CodeFiles:     code,
		AnalyzedFiles: len(fetched),
		SkippedFiles:  len(entries) - len(fetched),
	}
}
