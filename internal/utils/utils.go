// Package utils contains path helpers and the exclusion pattern matcher shared by the scanners.
package utils

import (
	"path/filepath"
	"strings"
)

const pathSegmentSeparator = "/"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// NormalizeSeparators rewrites every backslash and platform separator to a forward slash.
func NormalizeSeparators(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), "\\", pathSegmentSeparator)
}

// JoinRelativePath appends name to a slash-separated relative directory, treating "." as the root.
func JoinRelativePath(relativeDirectory string, name string) string {
	if relativeDirectory == "" || relativeDirectory == "." {
		return name
	}
	return relativeDirectory + pathSegmentSeparator + name
}

// RelativeDepth returns the indentation depth of a slash-separated relative directory.
// The root has depth zero and every other directory is one deeper than its separator count.
func RelativeDepth(relativeDirectory string) int {
	if relativeDirectory == "" || relativeDirectory == "." {
		return 0
	}
	return strings.Count(relativeDirectory, pathSegmentSeparator) + 1
}
