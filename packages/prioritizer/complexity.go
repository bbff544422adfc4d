package prioritizer

import "strings"

// complexityKeywords are per-language indicators counted toward the
// complexity score.
var complexityKeywords = map[string][]string{
	".js":   {"function", "class", "if", "for", "while", "switch", "try", "catch"},
	".ts":   {"function", "class", "interface", "if", "for", "while", "switch", "try", "catch"},
	".py":   {"def ", "class ", "if ", "for ", "while ", "try:", "except", "lambda"},
	".go":   {"func ", "type ", "if ", "for ", "switch ", "select ", "go ", "defer "},
	".java": {"public class", "private", "protected", "if", "for", "while", "switch", "try", "catch"},
	".cpp":  {"class", "struct", "if", "for", "while", "switch", "try", "catch"},
	".cs":   {"class", "struct", "interface", "if", "for", "while", "switch", "try", "catch"},
}

var defaultKeywords = []string{"function", "class", "if", "for", "while"}

// ComplexityScore estimates how much structure a file carries, 0-100.
// Length contributes up to 50 points, keyword density the rest. Used
// to order files inside the prompt and reported per file.
func ComplexityScore(content, ext string) int {
	lines := strings.Count(content, "\n") + 1
	score := lines / 10
	if score > 50 {
		score = 50
	}

	keywords, ok := complexityKeywords[ext]
	if !ok {
		keywords = defaultKeywords
	}
	lower := strings.ToLower(content)
	for _, kw := range keywords {
		score += strings.Count(lower, kw) * 2
	}

	if score > 100 {
		score = 100
	}
	return score
}
