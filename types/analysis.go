package types

// RepositoryRef identifies a GitHub repository. It is parsed once from
// the input URL; DefaultBranch is filled in by the metadata call.
type RepositoryRef struct {
	Owner         string
	Name          string
	DefaultBranch string
}

// FullName returns the owner/name form used by the GitHub API.
func (r RepositoryRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// FileEntry is a single blob from the repository tree. Content stays
// empty until the entry survives ranking and is fetched.
type FileEntry struct {
	Path    string
	Size    int64
	Ext     string
	Content string
}

// ScoredFile pairs a tree entry with its importance score. Instances
// live only for the duration of one analysis run.
type ScoredFile struct {
	FileEntry
	Score      float64
	Complexity int
}

// RepoMetadata holds repository-level facts plus per-run statistics.
type RepoMetadata struct {
	FullName      string
	Description   string
	Language      string
	Stars         int
	Forks         int
	DefaultBranch string
	SizeKB        int
	Languages     map[string]int
	Stats         RunStats
}

// RunStats counts what happened to the tree during one analysis run.
type RunStats struct {
	TotalFiles    int
	CodeFiles     int
	AnalyzedFiles int
	SkippedFiles  int
}
