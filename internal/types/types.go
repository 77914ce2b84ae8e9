// Package types defines every cross-package data structure used by the codeprompt CLI.
package types

// PatternSet is a duplicate-free collection of glob patterns. A path matches the set when
// any pattern matches it; the order of the patterns never changes the outcome.
type PatternSet []string

// IncludeFilter restricts content dumping to files matching at least one pattern.
// An empty filter admits every file.
type IncludeFilter []string

// Enabled reports whether the filter restricts anything.
func (filter IncludeFilter) Enabled() bool {
	return len(filter) > 0
}

// ExcludeFileSet holds exact slash-separated relative paths excluded from content dumping.
type ExcludeFileSet map[string]struct{}

// Contains reports whether relativePath is explicitly excluded.
func (set ExcludeFileSet) Contains(relativePath string) bool {
	if len(set) == 0 {
		return false
	}
	_, excluded := set[relativePath]
	return excluded
}

// SearchSpec restricts content dumping to files containing the needle.
type SearchSpec struct {
	Needle     string
	IgnoreCase bool
	WholeWord  bool
}

// Active reports whether the search has a needle to look for.
func (search *SearchSpec) Active() bool {
	return search != nil && search.Needle != ""
}

// ScanConfiguration is the immutable input shared by the tree renderer and the content dumper.
type ScanConfiguration struct {
	Root           string
	IgnorePatterns PatternSet
	Include        IncludeFilter
	ExcludeFiles   ExcludeFileSet
	Search         *SearchSpec
}

// DumpResult reports the statistics accumulated while dumping file contents.
type DumpResult struct {
	TotalMatches     int
	FilesWithMatches int
	FilesWritten     int
	BytesWritten     int64
}

// FileReadResult carries either the decoded content of a file or the reason it could not be read.
type FileReadResult struct {
	Content string
	Failure error
}

// Succeeded reports whether the content is usable.
func (result FileReadResult) Succeeded() bool {
	return result.Failure == nil
}

// ProgressEvent announces a file written to the artifact.
type ProgressEvent struct {
	RelativePath string
	Matches      int
}
