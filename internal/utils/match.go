package utils

import (
	"strings"

	"github.com/danwakefield/fnmatch"
)

// globFlags leaves FNM_PATHNAME unset so wildcards cross path separators when a whole path is compared.
const globFlags = 0

// patternStrategy reports whether a normalized pattern matches a normalized relative path.
type patternStrategy func(normalizedPath string, pathSegments []string, normalizedPattern string) bool

// exclusionStrategies are evaluated in order for every pattern; the first match wins.
var exclusionStrategies = []patternStrategy{
	matchDirectoryMarker,
	matchWholePath,
	matchAnySegment,
}

// MatchesPattern reports whether relativePath is excluded by any of the ignore patterns.
// Both the path and the patterns are normalized to forward slashes before evaluation.
// A pattern ending with a slash excludes the named directory and everything beneath it.
// Any other pattern excludes the path when it matches the whole path as a glob, or when it
// matches any single slash-delimited segment of the path, so a bare name such as
// "node_modules" applies at every depth.
func MatchesPattern(relativePath string, ignorePatterns []string) bool {
	normalizedPath := NormalizeSeparators(relativePath)
	pathSegments := strings.Split(normalizedPath, pathSegmentSeparator)
	for _, patternValue := range ignorePatterns {
		normalizedPattern := NormalizeSeparators(patternValue)
		for _, strategy := range exclusionStrategies {
			if strategy(normalizedPath, pathSegments, normalizedPattern) {
				return true
			}
		}
	}
	return false
}

// MatchesIncludePattern reports whether a file qualifies for an include-only filter.
// The file qualifies when its relative path or its bare file name matches one of the patterns.
func MatchesIncludePattern(relativePath string, fileName string, includePatterns []string) bool {
	normalizedPath := NormalizeSeparators(relativePath)
	for _, patternValue := range includePatterns {
		normalizedPattern := NormalizeSeparators(patternValue)
		if fnmatch.Match(normalizedPattern, normalizedPath, globFlags) || fnmatch.Match(normalizedPattern, fileName, globFlags) {
			return true
		}
	}
	return false
}

// matchDirectoryMarker handles patterns ending with a separator: the base directory and every descendant match.
func matchDirectoryMarker(normalizedPath string, _ []string, normalizedPattern string) bool {
	if !strings.HasSuffix(normalizedPattern, pathSegmentSeparator) {
		return false
	}
	patternBase := strings.TrimSuffix(normalizedPattern, pathSegmentSeparator)
	return normalizedPath == patternBase || strings.HasPrefix(normalizedPath, patternBase+pathSegmentSeparator)
}

func matchWholePath(normalizedPath string, _ []string, normalizedPattern string) bool {
	if strings.HasSuffix(normalizedPattern, pathSegmentSeparator) {
		return false
	}
	return fnmatch.Match(normalizedPattern, normalizedPath, globFlags)
}

// matchAnySegment compares the pattern against each path segment independently.
// Multi-segment patterns are not special-cased here.
func matchAnySegment(_ string, pathSegments []string, normalizedPattern string) bool {
	if strings.HasSuffix(normalizedPattern, pathSegmentSeparator) {
		return false
	}
	for _, pathSegment := range pathSegments {
		if fnmatch.Match(normalizedPattern, pathSegment, globFlags) {
			return true
		}
	}
	return false
}
