package prioritizer

import (
	"path"
	"sort"
	"strings"

	"refactor-agent/packages/config"
	"refactor-agent/types"
)

// sourceExtensions are the code extensions eligible for analysis.
var sourceExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".mjs": true, ".cjs": true, ".java": true, ".cpp": true, ".c": true,
	".h": true, ".cs": true, ".php": true, ".rb": true, ".go": true,
	".rs": true, ".swift": true, ".kt": true, ".scala": true,
	".vue": true, ".svelte": true, ".sql": true,
}

// configExtensions cover build and configuration formats.
var configExtensions = map[string]bool{
	".json": true, ".xml": true, ".yaml": true, ".yml": true,
	".toml": true, ".cfg": true,
}

// markupExtensions rank below source and config.
var markupExtensions = map[string]bool{
	".html": true, ".css": true, ".scss": true, ".sass": true,
	".less": true, ".styl": true,
}

// priorityFiles are manifests and build entry points that get a score
// bonus and are admitted even without a recognized extension.
var priorityFiles = map[string]bool{
	"package.json": true, "requirements.txt": true, "cargo.toml": true,
	"pom.xml": true, "build.gradle": true, "gemfile": true,
	"composer.json": true, "setup.py": true, "go.mod": true,
	"webpack.config.js": true, "vite.config.js": true,
	"rollup.config.js": true, "tsconfig.json": true,
	"babel.config.js": true, ".eslintrc.js": true, ".eslintrc.json": true,
	"dockerfile": true, "makefile": true, "gruntfile.js": true,
	"gulpfile.js": true,
}

// entryPointNames mark likely application entry points.
var entryPointNames = map[string]bool{
	"main": true, "index": true, "app": true, "server": true, "cli": true,
}

// testSegments and testNamePatterns identify test files, which are
// excluded unless the run opts in.
var testSegments = map[string]bool{
	"test": true, "tests": true, "__tests__": true,
	"spec": true, "specs": true,
}

var testNamePatterns = []string{".test.", ".spec.", "_test.", "_spec."}

// lockSuffixes are generated dependency manifests, never worth
// model attention.
var lockSuffixes = []string{
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "go.sum",
	"poetry.lock", "pipfile.lock", "gemfile.lock", "composer.lock",
	"cargo.lock", ".min.js", ".min.css",
}

var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".ico": true, ".webp": true, ".bmp": true, ".pdf": true, ".zip": true,
	".tar": true, ".gz": true, ".rar": true, ".7z": true, ".exe": true,
	".dll": true, ".so": true, ".dylib": true, ".dmg": true, ".app": true,
	".deb": true, ".rpm": true, ".msi": true, ".woff": true, ".woff2": true,
	".ttf": true, ".otf": true, ".eot": true, ".mp3": true, ".mp4": true,
	".wav": true, ".avi": true, ".mov": true, ".bin": true, ".dat": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
}

// Rank filters, scores and orders tree entries, returning at most
// cfg.Analysis.MaxFiles scored files. It is a pure function: identical
// inputs always produce the identical ordering, with score ties broken
// by lexical path order.
func Rank(entries []types.FileEntry, cfg *config.Config) []types.ScoredFile {
	scored := make([]types.ScoredFile, 0, len(entries))
	for _, e := range entries {
		if Excluded(e.Path, cfg) {
			continue
		}
		if !admitted(e, cfg) {
			continue
		}
		scored = append(scored, types.ScoredFile{
			FileEntry: e,
			Score:     score(e, cfg),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Path < scored[j].Path
	})

	if len(scored) > cfg.Analysis.MaxFiles {
		scored = scored[:cfg.Analysis.MaxFiles]
	}
	return scored
}

// Excluded reports whether a path matches the denylist, the lockfile
// and binary filters, or (unless opted in) the test patterns.
func Excluded(filePath string, cfg *config.Config) bool {
	lower := strings.ToLower(strings.ReplaceAll(filePath, "\\", "/"))
	segments := strings.Split(lower, "/")

	for _, pattern := range cfg.Scoring.DenyPatterns {
		if strings.Contains(pattern, "/") {
			if strings.Contains(lower, pattern) {
				return true
			}
			continue
		}
		for _, seg := range segments {
			if seg == pattern {
				return true
			}
		}
	}

	name := segments[len(segments)-1]
	for _, suffix := range lockSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	if binaryExtensions[strings.ToLower(path.Ext(name))] {
		return true
	}

	if !cfg.Analysis.IncludeTests && isTestPath(segments, name) {
		return true
	}
	return false
}

func isTestPath(segments []string, name string) bool {
	for _, seg := range segments[:len(segments)-1] {
		if testSegments[seg] {
			return true
		}
	}
	for _, p := range testNamePatterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return strings.HasPrefix(name, "test_") || strings.HasPrefix(name, "spec_")
}

// admitted checks that the entry is analyzable at all: a recognized
// source extension, or a config/markup file when the run includes
// configuration.
func admitted(e types.FileEntry, cfg *config.Config) bool {
	if sourceExtensions[e.Ext] || markupExtensions[e.Ext] {
		return true
	}
	if !cfg.Analysis.IncludeConfig {
		return false
	}
	return configExtensions[e.Ext] || priorityFiles[strings.ToLower(path.Base(e.Path))]
}

// IsSourceExt reports whether an extension counts as source code for
// run statistics.
func IsSourceExt(ext string) bool {
	return sourceExtensions[ext]
}

// score is a weighted sum: extension tier, a bell-shaped size term
// peaking at the ideal file size, a depth term favoring root-proximal
// files, and name bonuses for entry points and priority manifests.
func score(e types.FileEntry, cfg *config.Config) float64 {
	sc := cfg.Scoring
	s := tierWeight(e.Ext, sc)

	ideal := sc.IdealFileSize
	if !cfg.Analysis.FocusLargeFiles {
		ideal = ideal / 4
	}
	r := float64(e.Size) / float64(ideal)
	if r <= 1 {
		s += sc.SizeWeight * r
	} else {
		s += sc.SizeWeight / r
	}

	depth := strings.Count(e.Path, "/")
	s += sc.DepthWeight / float64(1+depth)

	name := strings.ToLower(path.Base(e.Path))
	base := strings.TrimSuffix(name, path.Ext(name))
	if entryPointNames[base] {
		s += sc.EntryPointBonus
	}
	if priorityFiles[name] {
		s += sc.PriorityFileBonus
	}
	return s
}

func tierWeight(ext string, sc config.ScoringConfig) float64 {
	switch {
	case sourceExtensions[ext]:
		return sc.SourceWeight
	case configExtensions[ext]:
		return sc.ConfigWeight
	case markupExtensions[ext]:
		return sc.DocsWeight
	default:
		return 0
	}
}
