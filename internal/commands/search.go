package commands

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/temirov/codeprompt/internal/types"
)

const (
	wordBoundary             = `\b`
	errorCompileSearchFormat = "compile search for %q: %w"
	errorMatchSearchFormat   = "search for %q: %w"
)

// SearchCounter counts non-overlapping occurrences of a search needle.
type SearchCounter struct {
	needle     string
	expression *regexp2.Regexp
}

// NewSearchCounter compiles the search once so it can be applied to many files.
// Whole-word searches require a word boundary on both sides of the needle; word characters are Unicode-aware.
func NewSearchCounter(search types.SearchSpec) (*SearchCounter, error) {
	if search.Needle == "" {
		return &SearchCounter{}, nil
	}
	pattern := regexp2.Escape(search.Needle)
	if search.WholeWord {
		pattern = wordBoundary + pattern + wordBoundary
	}
	var options regexp2.RegexOptions
	if search.IgnoreCase {
		options |= regexp2.IgnoreCase
	}
	expression, compileError := regexp2.Compile(pattern, options)
	if compileError != nil {
		return nil, fmt.Errorf(errorCompileSearchFormat, search.Needle, compileError)
	}
	return &SearchCounter{needle: search.Needle, expression: expression}, nil
}

// Count returns the number of matches in content. An empty needle never matches.
func (counter *SearchCounter) Count(content string) (int, error) {
	if counter == nil || counter.expression == nil {
		return 0, nil
	}
	matchCount := 0
	match, matchError := counter.expression.FindStringMatch(content)
	for match != nil && matchError == nil {
		matchCount++
		match, matchError = counter.expression.FindNextMatch(match)
	}
	if matchError != nil {
		return 0, fmt.Errorf(errorMatchSearchFormat, counter.needle, matchError)
	}
	return matchCount, nil
}

// CountMatches counts occurrences of search.Needle in content.
func CountMatches(content string, search types.SearchSpec) (int, error) {
	counter, counterError := NewSearchCounter(search)
	if counterError != nil {
		return 0, counterError
	}
	return counter.Count(content)
}
