package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var anchorStrip = regexp.MustCompile(`[^a-z0-9 -]`)

// anchor converts a section title to its GitHub-style heading anchor.
func anchor(title string) string {
	a := anchorStrip.ReplaceAllString(strings.ToLower(title), "")
	return strings.ReplaceAll(a, " ", "-")
}

// Render produces the final markdown document. Pure formatting over
// the assembled report; no I/O.
func (r *Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	if r.Meta.Description != "" {
		fmt.Fprintf(&b, "> %s\n\n", r.Meta.Description)
	}

	b.WriteString("## Repository Summary\n\n")
	fmt.Fprintf(&b, "- **Repository:** %s (default branch `%s`)\n", r.Meta.FullName, r.Meta.DefaultBranch)
	fmt.Fprintf(&b, "- **Primary language:** %s\n", r.Meta.Language)
	fmt.Fprintf(&b, "- **Stars / Forks:** %d / %d\n", r.Meta.Stars, r.Meta.Forks)
	fmt.Fprintf(&b, "- **Files:** analyzed %d of %d tree entries (%d code files, %d skipped)\n",
		r.Meta.Stats.AnalyzedFiles, r.Meta.Stats.TotalFiles, r.Meta.Stats.CodeFiles, r.Meta.Stats.SkippedFiles)
	if dist := languageDistribution(r.Meta.Languages); dist != "" {
		fmt.Fprintf(&b, "- **Languages:** %s\n", dist)
	}
	b.WriteString("\n## Contents\n\n")
	for _, s := range r.Sections {
		fmt.Fprintf(&b, "- [%s](#%s)\n", s.Title, anchor(s.Title))
	}
	b.WriteString("\n")

	for _, s := range r.Sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Title, s.Body)
	}

	b.WriteString("---\n")
	fmt.Fprintf(&b, "_Generated by refactor-agent with %s on %s._\n",
		r.Model, r.GeneratedAt.Format("2006-01-02 15:04:05"))

	return b.String()
}

// languageDistribution renders language byte counts as percentages,
// largest first.
func languageDistribution(languages map[string]int) string {
	if len(languages) == 0 {
		return ""
	}
	total := 0
	for _, bytes := range languages {
		total += bytes
	}
	if total == 0 {
		return ""
	}

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

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (%.1f%%)", name, 100*float64(languages[name])/float64(total)))
	}
	return strings.Join(parts, ", ")
}
