package utils_test

import (
	"testing"

	"github.com/temirov/codeprompt/internal/utils"
)

// TestDeduplicatePatterns verifies that DeduplicatePatterns removes duplicate patterns.
func TestDeduplicatePatterns(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		patterns []string
		expected []string
	}{
		{
			testName: "removes duplicates",
			patterns: []string{"a", "b", "a"},
			expected: []string{"a", "b"},
		},
		{
			testName: "keeps unique",
			patterns: []string{"a", "b"},
			expected: []string{"a", "b"},
		},
	}
	for index, testCase := range testCases {
		actual := utils.DeduplicatePatterns(testCase.patterns)
		if len(actual) != len(testCase.expected) {
			testingInstance.Errorf("case %d (%s): expected length %d, got %d", index, testCase.testName, len(testCase.expected), len(actual))
			continue
		}
		for position, value := range actual {
			if value != testCase.expected[position] {
				testingInstance.Errorf("case %d (%s): expected %s at position %d, got %s", index, testCase.testName, testCase.expected[position], position, value)
			}
		}
	}
}

func TestRelativeDepth(testingInstance *testing.T) {
	testCases := []struct {
		testName          string
		relativeDirectory string
		expected          int
	}{
		{testName: "root", relativeDirectory: ".", expected: 0},
		{testName: "empty", relativeDirectory: "", expected: 0},
		{testName: "top level", relativeDirectory: "src", expected: 1},
		{testName: "nested", relativeDirectory: "src/app/components", expected: 3},
	}
	for index, testCase := range testCases {
		actual := utils.RelativeDepth(testCase.relativeDirectory)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %d, got %d", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestJoinRelativePath verifies that root-level names carry no dot prefix.
func TestJoinRelativePath(testingInstance *testing.T) {
	if joined := utils.JoinRelativePath(".", "a.txt"); joined != "a.txt" {
		testingInstance.Errorf("expected a.txt, got %s", joined)
	}
	if joined := utils.JoinRelativePath("b/c", "d.txt"); joined != "b/c/d.txt" {
		testingInstance.Errorf("expected b/c/d.txt, got %s", joined)
	}
}

// TestNormalizeSeparators verifies backslash conversion.
func TestNormalizeSeparators(testingInstance *testing.T) {
	if normalized := utils.NormalizeSeparators(`src\app\main.ts`); normalized != "src/app/main.ts" {
		testingInstance.Errorf("expected src/app/main.ts, got %s", normalized)
	}
}
