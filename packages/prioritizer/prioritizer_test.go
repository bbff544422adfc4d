package prioritizer

import (
	"path"
	"strings"
	"testing"

	"refactor-agent/packages/config"
	"refactor-agent/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(p string, size int64) types.FileEntry {
	return types.FileEntry{Path: p, Size: size, Ext: strings.ToLower(path.Ext(p))}
}

func TestRankScenario(t *testing.T) {
	cfg := config.Default()
	entries := []types.FileEntry{
		entry("src/main.py", 1200),
		entry("tests/test_main.py", 800),
		entry("vendor/lib.min.js", 50000),
	}

	ranked := Rank(entries, cfg)

	require.Len(t, ranked, 1)
	assert.Equal(t, "src/main.py", ranked[0].Path)
}

func TestRankProperties(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.MaxFiles = 5

	entries := []types.FileEntry{
		entry("main.go", 4000),
		entry("pkg/server/server.go", 9000),
		entry("pkg/server/handler.go", 3000),
		entry("pkg/util/strings.go", 500),
		entry("cmd/cli/main.go", 2000),
		entry("docs/style.css", 1500),
		entry("config.yaml", 300),
		entry("deep/a/b/c/d/leaf.go", 2500),
	}

	ranked := Rank(entries, cfg)

	assert.LessOrEqual(t, len(ranked), cfg.Analysis.MaxFiles)

	inputs := make(map[string]bool, len(entries))
	for _, e := range entries {
		inputs[e.Path] = true
	}
	for i, f := range ranked {
		assert.True(t, inputs[f.Path], "ranked file %s not in input", f.Path)
		if i > 0 {
			assert.GreaterOrEqual(t, ranked[i-1].Score, f.Score, "scores must be non-increasing")
		}
	}
}

func TestRankDeterministicTieBreak(t *testing.T) {
	cfg := config.Default()
	// Identical size, depth, tier and names that earn no bonus: the
	// scores tie, so ordering falls back to lexical path order.
	entries := []types.FileEntry{
		entry("zeta.go", 1000),
		entry("alpha.go", 1000),
		entry("mid.go", 1000),
	}

	ranked := Rank(entries, cfg)

	require.Len(t, ranked, 3)
	assert.Equal(t, "alpha.go", ranked[0].Path)
	assert.Equal(t, "mid.go", ranked[1].Path)
	assert.Equal(t, "zeta.go", ranked[2].Path)
}

func TestRankIdempotent(t *testing.T) {
	cfg := config.Default()
	entries := []types.FileEntry{
		entry("a/b.py", 100),
		entry("main.py", 5000),
		entry("lib/util.js", 7000),
	}

	first := Rank(entries, cfg)
	second := Rank(entries, cfg)
	assert.Equal(t, first, second)
}

func TestRankExcludesDenylist(t *testing.T) {
	cfg := config.Default()
	for _, pattern := range cfg.Scoring.DenyPatterns {
		p := pattern + "/file.js"
		ranked := Rank([]types.FileEntry{entry(p, 1000)}, cfg)
		assert.Empty(t, ranked, "pattern %q should exclude %q", pattern, p)
	}
}

func TestExcludedTestFiles(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		path         string
		includeTests bool
		excluded     bool
	}{
		{"tests/helper.py", false, true},
		{"src/feature_test.go", false, true},
		{"src/widget.spec.ts", false, true},
		{"src/test_widget.py", false, true},
		{"tests/helper.py", true, false},
		{"src/feature_test.go", true, false},
		{"src/latest.py", false, false}, // "test" inside a word is not a test marker
	}
	for _, tt := range tests {
		cfg.Analysis.IncludeTests = tt.includeTests
		assert.Equal(t, tt.excluded, Excluded(tt.path, cfg), "path=%s includeTests=%v", tt.path, tt.includeTests)
	}
}

func TestExcludedLockAndBinaryFiles(t *testing.T) {
	cfg := config.Default()
	for _, p := range []string{
		"package-lock.json", "yarn.lock", "go.sum",
		"assets/logo.png", "bin.exe", "app.min.js",
	} {
		assert.True(t, Excluded(p, cfg), "expected %s excluded", p)
	}
	assert.False(t, Excluded("src/app.js", cfg))
}

func TestRankUnsupportedExtensionsDropped(t *testing.T) {
	cfg := config.Default()
	ranked := Rank([]types.FileEntry{
		entry("notes.txt", 1000),
		entry("data.csv", 1000),
		entry("src/app.rb", 1000),
	}, cfg)

	require.Len(t, ranked, 1)
	assert.Equal(t, "src/app.rb", ranked[0].Path)
}

func TestRankConfigFilesToggle(t *testing.T) {
	cfg := config.Default()
	entries := []types.FileEntry{
		entry("package.json", 500),
		entry("Dockerfile", 300),
		entry("src/app.js", 1000),
	}

	cfg.Analysis.IncludeConfig = true
	withConfig := Rank(entries, cfg)
	assert.Len(t, withConfig, 3)

	cfg.Analysis.IncludeConfig = false
	withoutConfig := Rank(entries, cfg)
	require.Len(t, withoutConfig, 1)
	assert.Equal(t, "src/app.js", withoutConfig[0].Path)
}

func TestScoreFavorsMidSizedFiles(t *testing.T) {
	cfg := config.Default()

	tiny := Rank([]types.FileEntry{entry("a.go", 50)}, cfg)[0].Score
	ideal := Rank([]types.FileEntry{entry("a.go", cfg.Scoring.IdealFileSize)}, cfg)[0].Score
	huge := Rank([]types.FileEntry{entry("a.go", 40*cfg.Scoring.IdealFileSize)}, cfg)[0].Score

	assert.Greater(t, ideal, tiny, "ideal-sized file should beat a trivial one")
	assert.Greater(t, ideal, huge, "ideal-sized file should beat an extreme one")
}

func TestScoreDepthAndEntryPoint(t *testing.T) {
	cfg := config.Default()

	root := Rank([]types.FileEntry{entry("util.go", 1000)}, cfg)[0].Score
	nested := Rank([]types.FileEntry{entry("a/b/c/util.go", 1000)}, cfg)[0].Score
	assert.Greater(t, root, nested, "root-proximal files score higher")

	mainScore := Rank([]types.FileEntry{entry("pkg/main.go", 1000)}, cfg)[0].Score
	otherScore := Rank([]types.FileEntry{entry("pkg/util.go", 1000)}, cfg)[0].Score
	assert.Greater(t, mainScore, otherScore, "entry points score higher")
}

func TestComplexityScore(t *testing.T) {
	assert.Equal(t, 0, ComplexityScore("", ".txt"))

	simple := ComplexityScore("x = 1\ny = 2\n", ".py")
	busy := ComplexityScore(strings.Repeat("def f():\n    if x:\n        for i in y:\n", 20), ".py")
	assert.Greater(t, busy, simple)

	capped := ComplexityScore(strings.Repeat("if for while class function\n", 500), ".js")
	assert.Equal(t, 100, capped)
}

func TestLanguageForExt(t *testing.T) {
	assert.Equal(t, "python", LanguageForExt(".py"))
	assert.Equal(t, "go", LanguageForExt(".go"))
	assert.Equal(t, "text", LanguageForExt(".weird"))
}
