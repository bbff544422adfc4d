package prioritizer

var languageMap = map[string]string{
	".go":     "go",
	".js":     "javascript",
	".jsx":    "jsx",
	".mjs":    "javascript",
	".cjs":    "javascript",
	".ts":     "typescript",
	".tsx":    "tsx",
	".py":     "python",
	".java":   "java",
	".cpp":    "cpp",
	".c":      "c",
	".h":      "c",
	".cs":     "csharp",
	".php":    "php",
	".rb":     "ruby",
	".rs":     "rust",
	".swift":  "swift",
	".kt":     "kotlin",
	".scala":  "scala",
	".vue":    "vue",
	".svelte": "svelte",
	".html":   "html",
	".css":    "css",
	".scss":   "scss",
	".sass":   "sass",
	".less":   "less",
	".styl":   "stylus",
	".json":   "json",
	".xml":    "xml",
	".yaml":   "yaml",
	".yml":    "yaml",
	".toml":   "toml",
	".cfg":    "ini",
	".sql":    "sql",
}

// LanguageForExt maps an extension to the fence language used when
// embedding file content in the prompt and report.
func LanguageForExt(ext string) string {
	if lang, ok := languageMap[ext]; ok {
		return lang
	}
	return "text"
}
