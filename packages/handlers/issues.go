package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"refactor-agent/packages/ai"
	"refactor-agent/packages/analyzer"
	"refactor-agent/packages/config"
	"refactor-agent/packages/repository"

	"github.com/google/go-github/github"
	"github.com/swinton/go-probot/probot"
)

// commentLimit is GitHub's hard cap on issue comment bodies.
const commentLimit = 65536

// NewIssueHandler returns the probot handler for the bot mode: an
// issue labeled with the trigger label gets the full analysis pipeline
// run against its repository, and the rendered report posted back as a
// comment.
func NewIssueHandler(cfg *config.Config) func(ctx *probot.Context) error {
	return func(ctx *probot.Context) error {
		event := ctx.Payload.(*github.IssuesEvent)

		issueNumber := event.Issue.GetNumber()
		repoName := event.Repo.GetFullName()
		action := event.GetAction()

		slog.Info("Issue event", "action", action, "issueNumber", issueNumber, "repo", repoName)

		switch action {
		case "labeled":
			return handleIssueLabeled(ctx, event, cfg)
		default:
			slog.Info("Skipping action", "action", action)
			return nil
		}
	}
}

func handleIssueLabeled(ctx *probot.Context, event *github.IssuesEvent, cfg *config.Config) error {
	if !hasLabel(event.Issue.Labels, cfg.Bot.TriggerLabel) {
		slog.Info("Issue missing trigger label", "issueNumber", event.Issue.GetNumber(), "trigger", cfg.Bot.TriggerLabel)
		return nil
	}
	if hasLabel(event.Issue.Labels, cfg.Bot.AnalyzedLabel) {
		slog.Info("Issue already analyzed, skipping", "issueNumber", event.Issue.GetNumber(), "marker", cfg.Bot.AnalyzedLabel)
		return nil
	}

	owner := event.Repo.Owner.GetLogin()
	repo := event.Repo.GetName()
	issueNumber := event.Issue.GetNumber()

	slog.Info("Trigger label present, starting analysis", "repo", owner+"/"+repo, "issueNumber", issueNumber)

	client := repository.NewClientFrom(ctx.GitHub, cfg.Limits.MaxFileSize)
	gen := ai.NewGeminiGenerator(os.Getenv("GEMINI_API_KEY"), cfg.AI)

	reportMD, err := analyzer.Run(context.Background(), client, gen, cfg, event.Repo.GetHTMLURL(), nil)
	if err != nil {
		slog.Error("Analysis failed", "repo", owner+"/"+repo, "error", err)
		return postComment(ctx, owner, repo, issueNumber,
			fmt.Sprintf("Refactoring analysis failed: %v", err))
	}

	if len(reportMD) > commentLimit {
		reportMD = reportMD[:commentLimit-64] + "\n\n_Report truncated to fit the comment limit._\n"
	}
	if err := postComment(ctx, owner, repo, issueNumber, reportMD); err != nil {
		return err
	}
	markAnalyzed(ctx, owner, repo, issueNumber, cfg.Bot.AnalyzedLabel)
	return nil
}

// markAnalyzed puts the marker label on the issue so redelivered or
// re-labeled events skip it. The label is created in the repository on
// first use. Marking failures only log: the report is already posted.
func markAnalyzed(ctx *probot.Context, owner, repo string, issueNumber int, name string) {
	client := ctx.GitHub

	_, _, err := client.Issues.GetLabel(context.Background(), owner, repo, name)
	if err != nil {
		label := &github.Label{
			Name:        github.String(name),
			Color:       github.String("0e8a16"),
			Description: github.String("Refactoring analysis posted"),
		}
		if _, _, err := client.Issues.CreateLabel(context.Background(), owner, repo, label); err != nil {
			slog.Error("Failed to create marker label", "label", name, "error", err)
			return
		}
		slog.Info("Created marker label", "label", name, "repo", owner+"/"+repo)
	}

	if _, _, err := client.Issues.AddLabelsToIssue(context.Background(), owner, repo, issueNumber, []string{name}); err != nil {
		slog.Error("Failed to add marker label", "issueNumber", issueNumber, "label", name, "error", err)
		return
	}
	slog.Info("Marked issue analyzed", "issueNumber", issueNumber, "label", name)
}

func postComment(ctx *probot.Context, owner, repo string, issueNumber int, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}
	_, _, err := ctx.GitHub.Issues.CreateComment(context.Background(), owner, repo, issueNumber, comment)
	if err != nil {
		slog.Error("Failed to post comment", "issueNumber", issueNumber, "error", err)
		return err
	}
	slog.Info("Posted analysis comment", "issueNumber", issueNumber)
	return nil
}

func hasLabel(labels []github.Label, name string) bool {
	for _, l := range labels {
		if l.GetName() == name {
			return true
		}
	}
	return false
}
