package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"refactor-agent/packages/config"
	"refactor-agent/types"
)

// Section is a tagged variant of parsed model output: recognized
// sections carry their category; everything the parser could not place
// lands in a single unrecognized catch-all.
type Section struct {
	Category   string
	Title      string
	Body       string
	Recognized bool
}

// Report is the assembled analysis document. Built incrementally,
// rendered once, then discarded.
type Report struct {
	Title       string
	Meta        types.RepoMetadata
	Categories  []string
	Sections    []Section
	GeneratedAt time.Time
	Model       string
}

var headingPattern = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*$`)

// categoryAliases normalizes the heading spellings models actually
// produce onto category keys.
var categoryAliases = map[string]string{
	"performance":                  "performance",
	"performance optimizations":    "performance",
	"maintainability":              "maintainability",
	"code maintainability":         "maintainability",
	"design patterns":              "design_patterns",
	"design pattern recommendations": "design_patterns",
	"code quality":                 "code_quality",
	"code quality enhancements":    "code_quality",
	"security":                     "security",
	"security issues":              "security",
	"security recommendations":     "security",
	"modularity":                   "modularity",
	"modularity improvements":      "modularity",
}

// ParseSections splits model output on headings and tags each chunk
// with the category it matches, if any. Model output is never trusted
// to be structured: unmatched prose is collected into one catch-all
// section and the function cannot fail.
func ParseSections(output string, categories []string) []Section {
	enabled := make(map[string]bool, len(categories))
	for _, c := range categories {
		enabled[c] = true
	}

	recognized := make(map[string]*strings.Builder)
	var unrecognized strings.Builder
	var current *strings.Builder

	for _, line := range strings.Split(output, "\n") {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			if cat, ok := matchCategory(m[1]); ok && enabled[cat] {
				if recognized[cat] == nil {
					recognized[cat] = &strings.Builder{}
				}
				current = recognized[cat]
				continue
			}
			current = nil // unknown or disabled heading, keep the text
			unrecognized.WriteString(line)
			unrecognized.WriteString("\n")
			continue
		}
		if current != nil {
			current.WriteString(line)
			current.WriteString("\n")
		} else {
			unrecognized.WriteString(line)
			unrecognized.WriteString("\n")
		}
	}

	sections := make([]Section, 0, len(recognized)+1)
	keys := make([]string, 0, len(recognized))
	for cat := range recognized {
		keys = append(keys, cat)
	}
	sort.Strings(keys)
	for _, cat := range keys {
		sections = append(sections, Section{
			Category:   cat,
			Title:      config.CategoryTitle(cat),
			Body:       strings.TrimSpace(recognized[cat].String()),
			Recognized: true,
		})
	}
	if body := strings.TrimSpace(unrecognized.String()); body != "" {
		sections = append(sections, Section{
			Title: "Additional Notes",
			Body:  body,
		})
	}
	return sections
}

func matchCategory(heading string) (string, bool) {
	norm := strings.ToLower(strings.TrimSpace(heading))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	norm = strings.Join(strings.Fields(norm), " ")
	cat, ok := categoryAliases[norm]
	return cat, ok
}

// Build assembles the report from the model output and run metadata.
// Sections appear in the canonical category order regardless of model
// output order; enabled categories the model skipped get a
// placeholder.
func Build(modelOutput string, meta types.RepoMetadata, cfg *config.Config) *Report {
	categories := cfg.Analysis.EnabledCategories()
	parsed := ParseSections(modelOutput, categories)

	byCategory := make(map[string]Section, len(parsed))
	var catchAll *Section
	for i := range parsed {
		if parsed[i].Recognized {
			byCategory[parsed[i].Category] = parsed[i]
		} else {
			catchAll = &parsed[i]
		}
	}

	sections := make([]Section, 0, len(categories)+1)
	for _, cat := range categories {
		if s, ok := byCategory[cat]; ok && s.Body != "" {
			sections = append(sections, s)
			continue
		}
		sections = append(sections, Section{
			Category:   cat,
			Title:      config.CategoryTitle(cat),
			Body:       fmt.Sprintf("_No %s suggestions were produced in this run._", strings.ToLower(config.CategoryTitle(cat))),
			Recognized: true,
		})
	}
	if catchAll != nil {
		sections = append(sections, *catchAll)
	}

	return &Report{
		Title:       fmt.Sprintf("Refactoring Analysis: %s", meta.FullName),
		Meta:        meta,
		Categories:  categories,
		Sections:    sections,
		GeneratedAt: time.Now(),
		Model:       cfg.AI.Model,
	}
}
