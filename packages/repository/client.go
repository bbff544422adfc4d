package repository

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"regexp"
	"strings"

	"refactor-agent/types"

	"github.com/google/go-github/github"
	"golang.org/x/oauth2"
)

// repoURLPattern accepts the owner/name tail of a github.com URL, with
// an optional .git suffix and trailing slash. The host must start at a
// boundary so lookalike domains ending in "github.com" do not match.
var repoURLPattern = regexp.MustCompile(`(?:^|[/@.])github\.com[:/]([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?/?$`)

// Resolve parses an owner/name pair out of a GitHub URL. It performs
// no network calls; URL shape problems fail fast with
// ErrInvalidRepositoryURL.
func Resolve(rawURL string) (types.RepositoryRef, error) {
	m := repoURLPattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return types.RepositoryRef{}, fmt.Errorf("%w: %q", ErrInvalidRepositoryURL, rawURL)
	}
	return types.RepositoryRef{Owner: m[1], Name: m[2]}, nil
}

// Client wraps the GitHub REST API calls the analyzer needs. It does
// not retry beyond what the HTTP layer provides; typed errors surface
// to the caller unmasked.
type Client struct {
	gh          *github.Client
	maxFileSize int64
}

// NewClient builds a client, authenticated when a token is provided.
func NewClient(ctx context.Context, token string, maxFileSize int64) *Client {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(ctx, ts)
	}
	return &Client{gh: github.NewClient(hc), maxFileSize: maxFileSize}
}

// NewClientFrom wraps an existing GitHub client, e.g. the installation
// client handed to a bot event handler.
func NewClientFrom(gh *github.Client, maxFileSize int64) *Client {
	return &Client{gh: gh, maxFileSize: maxFileSize}
}

// GetMetadata fetches repository facts and the language distribution,
// and fills in the ref's default branch.
func (c *Client) GetMetadata(ctx context.Context, ref *types.RepositoryRef) (types.RepoMetadata, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return types.RepoMetadata{}, c.apiError(err)
	}
	ref.DefaultBranch = repo.GetDefaultBranch()

	languages, _, err := c.gh.Repositories.ListLanguages(ctx, ref.Owner, ref.Name)
	if err != nil {
		return types.RepoMetadata{}, c.apiError(err)
	}

	return types.RepoMetadata{
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		Language:      repo.GetLanguage(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		DefaultBranch: repo.GetDefaultBranch(),
		SizeKB:        repo.GetSize(),
		Languages:     languages,
	}, nil
}

// ListTree returns every blob on the ref's default branch via the Git
// Trees API, metadata only. Content is fetched later, and only for
// entries that survive ranking.
func (c *Client) ListTree(ctx context.Context, ref types.RepositoryRef) ([]types.FileEntry, error) {
	branch := ref.DefaultBranch
	if branch == "" {
		repo, _, err := c.gh.Repositories.Get(ctx, ref.Owner, ref.Name)
		if err != nil {
			return nil, c.apiError(err)
		}
		branch = repo.GetDefaultBranch()
	}

	tree, _, err := c.gh.Git.GetTree(ctx, ref.Owner, ref.Name, branch, true)
	if err != nil {
		return nil, c.apiError(err)
	}
	if tree.GetTruncated() {
		slog.Warn("Tree listing truncated by GitHub", "repo", ref.FullName())
	}

	entries := make([]types.FileEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		if e.GetType() != "blob" {
			continue
		}
		entries = append(entries, types.FileEntry{
			Path: e.GetPath(),
			Size: int64(e.GetSize()),
			Ext:  strings.ToLower(path.Ext(e.GetPath())),
		})
	}
	return entries, nil
}

// FetchContent retrieves and decodes one file via the Contents API.
// Files above the configured ceiling fail with ErrFileTooLarge so a
// single blob cannot blow the prompt budget; binary payloads fail with
// ErrDecodeError.
func (c *Client) FetchContent(ctx context.Context, ref types.RepositoryRef, filePath string) (string, error) {
	opts := &github.RepositoryContentGetOptions{Ref: ref.DefaultBranch}
	fc, _, _, err := c.gh.Repositories.GetContents(ctx, ref.Owner, ref.Name, filePath, opts)
	if err != nil {
		return "", c.apiError(err)
	}
	if fc == nil {
		return "", fmt.Errorf("%w: %s is not a file", ErrDecodeError, filePath)
	}
	if c.maxFileSize > 0 && int64(fc.GetSize()) > c.maxFileSize {
		return "", fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, filePath, fc.GetSize(), c.maxFileSize)
	}

	content, err := fc.GetContent()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDecodeError, filePath, err)
	}
	if isBinary([]byte(content)) {
		return "", fmt.Errorf("%w: %s looks binary", ErrDecodeError, filePath)
	}
	return content, nil
}

// apiError maps go-github errors onto the package taxonomy. go-github
// already turns 403s with an exhausted X-RateLimit-Remaining header
// into RateLimitError; the remaining status codes are mapped here.
func (c *Client) apiError(err error) error {
	if _, ok := err.(*github.RateLimitError); ok {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	if _, ok := err.(*github.AbuseRateLimitError); ok {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	if er, ok := err.(*github.ErrorResponse); ok && er.Response != nil {
		switch er.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrRepositoryNotFound, err)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrAuthenticationRequired, err)
		case http.StatusForbidden, http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}
	return err
}

// isBinary applies the NUL-byte and non-printable heuristics over the
// first 8 KiB of content.
func isBinary(content []byte) bool {
	checkSize := 8192
	if len(content) < checkSize {
		checkSize = len(content)
	}
	if checkSize == 0 {
		return false
	}

	nonPrintable := 0
	for i := 0; i < checkSize; i++ {
		if content[i] == 0 {
			return true
		}
		if content[i] < 32 && content[i] != '\n' && content[i] != '\r' && content[i] != '\t' {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(checkSize) > 0.30
}
