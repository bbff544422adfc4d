package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"refactor-agent/packages/config"

	"github.com/google/go-github/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swinton/go-probot/probot"
)

func issuesEvent(action string, labels ...string) *github.IssuesEvent {
	gl := make([]github.Label, 0, len(labels))
	for _, l := range labels {
		gl = append(gl, github.Label{Name: github.String(l)})
	}
	return &github.IssuesEvent{
		Action: github.String(action),
		Issue:  &github.Issue{Number: github.Int(7), Labels: gl},
		Repo: &github.Repository{
			Name:     github.String("repo"),
			FullName: github.String("owner/repo"),
			HTMLURL:  github.String("https://github.com/owner/repo"),
			Owner:    &github.User{Login: github.String("owner")},
		},
	}
}

// probotContext backs a handler context with a fake API server and
// counts every request it receives.
func probotContext(t *testing.T, event *github.IssuesEvent, handler http.Handler, calls *atomic.Int64) *probot.Context {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	gh := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	gh.BaseURL = base
	return &probot.Context{Payload: event, GitHub: gh}
}

func TestIssueHandlerSkipsAlreadyAnalyzed(t *testing.T) {
	cfg := config.Default()
	var calls atomic.Int64
	event := issuesEvent("labeled", cfg.Bot.TriggerLabel, cfg.Bot.AnalyzedLabel)
	ctx := probotContext(t, event, http.NotFoundHandler(), &calls)

	err := NewIssueHandler(cfg)(ctx)

	require.NoError(t, err)
	assert.Zero(t, calls.Load(), "a marked issue triggers no API traffic")
}

func TestIssueHandlerIgnoresMissingTriggerLabel(t *testing.T) {
	cfg := config.Default()
	var calls atomic.Int64
	event := issuesEvent("labeled", "bug", "help wanted")
	ctx := probotContext(t, event, http.NotFoundHandler(), &calls)

	err := NewIssueHandler(cfg)(ctx)

	require.NoError(t, err)
	assert.Zero(t, calls.Load())
}

func TestIssueHandlerIgnoresOtherActions(t *testing.T) {
	cfg := config.Default()
	var calls atomic.Int64
	event := issuesEvent("opened", cfg.Bot.TriggerLabel)
	ctx := probotContext(t, event, http.NotFoundHandler(), &calls)

	err := NewIssueHandler(cfg)(ctx)

	require.NoError(t, err)
	assert.Zero(t, calls.Load())
}

func TestMarkAnalyzedCreatesMissingLabel(t *testing.T) {
	var created, added atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/labels/refactor-analyzed", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	mux.HandleFunc("/repos/owner/repo/labels", func(w http.ResponseWriter, r *http.Request) {
		created.Add(1)
		fmt.Fprint(w, `{"name": "refactor-analyzed"}`)
	})
	mux.HandleFunc("/repos/owner/repo/issues/7/labels", func(w http.ResponseWriter, r *http.Request) {
		added.Add(1)
		fmt.Fprint(w, `[{"name": "refactor-analyzed"}]`)
	})

	var calls atomic.Int64
	ctx := probotContext(t, issuesEvent("labeled"), mux, &calls)

	markAnalyzed(ctx, "owner", "repo", 7, "refactor-analyzed")

	assert.Equal(t, int64(1), created.Load(), "missing marker label is created")
	assert.Equal(t, int64(1), added.Load(), "marker label is put on the issue")
}

func TestMarkAnalyzedReusesExistingLabel(t *testing.T) {
	var created, added atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/labels/refactor-analyzed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name": "refactor-analyzed"}`)
	})
	mux.HandleFunc("/repos/owner/repo/labels", func(w http.ResponseWriter, r *http.Request) {
		created.Add(1)
	})
	mux.HandleFunc("/repos/owner/repo/issues/7/labels", func(w http.ResponseWriter, r *http.Request) {
		added.Add(1)
		fmt.Fprint(w, `[{"name": "refactor-analyzed"}]`)
	})

	var calls atomic.Int64
	ctx := probotContext(t, issuesEvent("labeled"), mux, &calls)

	markAnalyzed(ctx, "owner", "repo", 7, "refactor-analyzed")

	assert.Zero(t, created.Load(), "existing marker label is not recreated")
	assert.Equal(t, int64(1), added.Load())
}

func TestHasLabel(t *testing.T) {
	labels := []github.Label{
		{Name: github.String("bug")},
		{Name: github.String("refactor-analyze")},
	}
	assert.True(t, hasLabel(labels, "refactor-analyze"))
	assert.False(t, hasLabel(labels, "refactor-analyzed"))
	assert.False(t, hasLabel(nil, "bug"))
}
