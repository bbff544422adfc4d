package ai

import (
	"fmt"
	"sort"
	"strings"

	"refactor-agent/packages/config"
	"refactor-agent/packages/prioritizer"
	"refactor-agent/types"
)

// categoryFocus holds the instruction line injected per enabled
// analysis category.
var categoryFocus = map[string]string{
	"performance":     "**Performance Optimizations:** Identify slow algorithms, inefficient loops, unnecessary API calls, memory leaks, and optimization opportunities",
	"maintainability": "**Maintainability:** Find complex functions, improve naming, reduce code duplication, enhance readability",
	"design_patterns": "**Design Patterns:** Suggest better architectural patterns, SOLID principles, separation of concerns",
	"code_quality":    "**Code Quality:** Identify code smells, improve error handling, enhance documentation",
	"security":        "**Security:** Find vulnerabilities like SQL injection, XSS, insecure authentication, data exposure",
	"modularity":      "**Modularity:** Improve separation of concerns, reduce coupling, increase cohesion",
}

// buildPrompt assembles the single prompt for one analysis run:
// repository overview, embedded file contents with path-delimiting
// markers, and output-format instructions keyed to the enabled
// categories.
func buildPrompt(files []types.ScoredFile, meta types.RepoMetadata, cfg *config.Config) string {
	var b strings.Builder

	b.WriteString("## Repository Analysis for Refactoring\n\n")
	fmt.Fprintf(&b, "**Repository:** %s\n", meta.FullName)
	fmt.Fprintf(&b, "**Main Language:** %s\n", meta.Language)
	fmt.Fprintf(&b, "**Description:** %s\n\n", meta.Description)
	b.WriteString("**Codebase Statistics:**\n")
	fmt.Fprintf(&b, "- Total files in tree: %d\n", meta.Stats.TotalFiles)
	fmt.Fprintf(&b, "- Code files: %d\n", meta.Stats.CodeFiles)
	fmt.Fprintf(&b, "- Files embedded below: %d\n", len(files))
	if len(meta.Languages) > 0 {
		fmt.Fprintf(&b, "- Languages: %s\n", languageList(meta.Languages))
	}
	b.WriteString("\n## Source Code Files for Analysis\n\n")

	// Present the most structurally complex files first; larger wins
	// ties. The incoming importance order is preserved by the caller
	// for budget truncation.
	ordered := make([]types.ScoredFile, len(files))
	copy(ordered, files)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Complexity != ordered[j].Complexity {
			return ordered[i].Complexity > ordered[j].Complexity
		}
		return ordered[i].Size > ordered[j].Size
	})

	for _, f := range ordered {
		fmt.Fprintf(&b, "### File: `%s`\n", f.Path)
		fmt.Fprintf(&b, "- **Type:** %s\n", f.Ext)
		fmt.Fprintf(&b, "- **Size:** %d bytes\n", f.Size)
		fmt.Fprintf(&b, "- **Complexity Score:** %d/100\n\n", f.Complexity)
		fmt.Fprintf(&b, "```%s\n%s\n```\n\n",
			prioritizer.LanguageForExt(f.Ext),
			embeddedContent(f.Content, cfg.Limits.FileContentCap))
	}

	b.WriteString("## Refactoring Analysis Request\n\n")
	b.WriteString("As a senior software architect and code review expert, analyze the provided codebase and generate specific, actionable refactoring suggestions focusing on:\n\n")
	for _, cat := range cfg.Analysis.EnabledCategories() {
		b.WriteString(categoryFocus[cat])
		b.WriteString("\n")
	}

	b.WriteString("\n## Required Output Format\n\n")
	b.WriteString("Respond in markdown with exactly one level-2 heading per focus area, in this order:\n\n")
	for _, cat := range cfg.Analysis.EnabledCategories() {
		fmt.Fprintf(&b, "## %s\n", config.CategoryTitle(cat))
	}
	b.WriteString(`
Under each heading list concrete suggestions. For every suggestion give
the file path, a short description of the issue, a before/after code
example in fenced blocks, and why the change helps.

## Important Instructions
- Focus ONLY on the selected focus areas.
- Provide concrete, actionable suggestions with code examples.
- Include specific file paths and line numbers when possible.
- Prioritize high-impact improvements.
- Be specific and technical in your recommendations.

Generate your refactoring analysis now.
`)

	return b.String()
}

// embeddedContent applies the per-file cap: overly long files keep
// their head and tail with an elision marker between.
func embeddedContent(content string, limit int) string {
	if limit <= 0 || len(content) <= limit {
		return content
	}
	half := limit / 2
	return content[:half] + "\n\n... [File truncated for analysis] ...\n\n" + content[len(content)-half:]
}

func languageList(languages map[string]int) string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if languages[names[i]] != languages[names[j]] {
			return languages[names[i]] > languages[names[j]]
		}
		return names[i] < names[j]
	})
	return strings.Join(names, ", ")
}
