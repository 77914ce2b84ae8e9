// Package config builds the immutable scan configuration from ignore files, defaults, and caller input.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/codeprompt/internal/types"
	"github.com/temirov/codeprompt/internal/utils"
)

const (
	// gitDirectoryPattern represents the pattern that matches the Git directory.
	gitDirectoryPattern = utils.GitDirectoryName + "/"
	// editorDirectoryPattern represents the pattern that matches VS Code settings.
	editorDirectoryPattern = ".vscode/"
	// commentPrefix marks ignore file lines that carry no pattern.
	commentPrefix = "#"
	// patternListSeparator splits comma-separated pattern lists supplied on the command line.
	patternListSeparator = ","

	errorRootAbsoluteFormat = "resolve root %s: %w"
	errorRootStatFormat     = "stat root %s: %w"
	errorLoadIgnoreFormat   = "loading %s from %s: %w"
)

// ErrRootNotDirectory reports a scan root that is missing or not a directory.
var ErrRootNotDirectory = errors.New("root is not a directory")

// DefaultExclusionPatterns returns the built-in patterns applied to every scan.
// A fresh slice is returned on every call.
func DefaultExclusionPatterns() []string {
	return []string{
		gitDirectoryPattern,
		editorDirectoryPattern,
		"*.png",
		"*.jpg",
		"*.jpeg",
		"*.gif",
		"*.bmp",
		"*.svg",
		"*.mp4",
		"*.mp3",
		"*.wav",
		"*.avi",
		"*.mov",
		"*.mkv",
		"*.webp",
		"*.pdf",
		"*.ppt",
		"*.pptx",
		"*.doc",
		"*.docx",
		"*.xls",
		"*.xlsx",
		"*.csv",
	}
}

// LoadIgnoreFilePatterns reads an ignore file and returns one pattern per non-empty, non-comment line.
// A missing file yields no patterns and no error.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		_ = fileHandle.Close()
	}()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// LoadPatternSet merges the built-in defaults, the root .gitignore (when useIgnoreFile is true),
// and the caller supplied exclusion patterns into one duplicate-free pattern set.
func LoadPatternSet(absoluteRootPath string, exclusionPatterns []string, useIgnoreFile bool) (types.PatternSet, error) {
	combinedPatterns := DefaultExclusionPatterns()

	if useIgnoreFile {
		ignoreFilePath := filepath.Join(absoluteRootPath, utils.GitIgnoreFileName)
		ignoreFilePatterns, loadError := LoadIgnoreFilePatterns(ignoreFilePath)
		if loadError != nil {
			return nil, fmt.Errorf(errorLoadIgnoreFormat, utils.GitIgnoreFileName, absoluteRootPath, loadError)
		}
		combinedPatterns = append(combinedPatterns, ignoreFilePatterns...)
	}

	for _, pattern := range exclusionPatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		combinedPatterns = append(combinedPatterns, trimmedPattern)
	}

	return types.PatternSet(utils.DeduplicatePatterns(combinedPatterns)), nil
}

// ParsePatternList splits every comma-separated value and returns the trimmed, non-empty entries.
func ParsePatternList(values []string) []string {
	var patterns []string
	for _, value := range values {
		for _, candidate := range strings.Split(value, patternListSeparator) {
			trimmedCandidate := strings.TrimSpace(candidate)
			if trimmedCandidate == "" {
				continue
			}
			patterns = append(patterns, trimmedCandidate)
		}
	}
	return patterns
}

// ResolveExcludeFiles converts explicit file exclusions into clean slash-separated paths relative to root.
// Absolute paths are made relative to root; entries that have no relative form are dropped.
func ResolveExcludeFiles(absoluteRootPath string, filePaths []string) types.ExcludeFileSet {
	if len(filePaths) == 0 {
		return nil
	}
	excludeFiles := make(types.ExcludeFileSet, len(filePaths))
	for _, filePath := range filePaths {
		trimmedPath := strings.TrimSpace(filePath)
		if trimmedPath == "" {
			continue
		}
		relativePath := trimmedPath
		if filepath.IsAbs(trimmedPath) {
			resolvedPath, relativeError := filepath.Rel(absoluteRootPath, trimmedPath)
			if relativeError != nil {
				continue
			}
			relativePath = resolvedPath
		}
		excludeFiles[utils.NormalizeSeparators(filepath.Clean(relativePath))] = struct{}{}
	}
	return excludeFiles
}

// ResolveRootDirectory returns the absolute, clean form of rootPath after confirming it is a directory.
func ResolveRootDirectory(rootPath string) (string, error) {
	absoluteRootPath, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		return "", fmt.Errorf(errorRootAbsoluteFormat, rootPath, absoluteError)
	}
	cleanRootPath := filepath.Clean(absoluteRootPath)
	rootInfo, statError := os.Stat(cleanRootPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return "", fmt.Errorf("'%s': %w", rootPath, ErrRootNotDirectory)
		}
		return "", fmt.Errorf(errorRootStatFormat, rootPath, statError)
	}
	if !rootInfo.IsDir() {
		return "", fmt.Errorf("'%s': %w", rootPath, ErrRootNotDirectory)
	}
	return cleanRootPath, nil
}

// ScanInputs captures the caller supplied settings consumed by BuildScanConfiguration.
type ScanInputs struct {
	RootPath          string
	ExclusionPatterns []string
	IncludePatterns   []string
	ExcludeFiles      []string
	UseIgnoreFile     bool
	SearchNeedle      string
	IgnoreCase        bool
	WholeWord         bool
}

// BuildScanConfiguration validates the root and assembles the immutable scan configuration.
func BuildScanConfiguration(inputs ScanInputs) (types.ScanConfiguration, error) {
	absoluteRootPath, rootError := ResolveRootDirectory(inputs.RootPath)
	if rootError != nil {
		return types.ScanConfiguration{}, rootError
	}

	ignorePatterns, patternError := LoadPatternSet(absoluteRootPath, ParsePatternList(inputs.ExclusionPatterns), inputs.UseIgnoreFile)
	if patternError != nil {
		return types.ScanConfiguration{}, patternError
	}

	configuration := types.ScanConfiguration{
		Root:           absoluteRootPath,
		IgnorePatterns: ignorePatterns,
		ExcludeFiles:   ResolveExcludeFiles(absoluteRootPath, ParsePatternList(inputs.ExcludeFiles)),
	}
	if includePatterns := ParsePatternList(inputs.IncludePatterns); len(includePatterns) > 0 {
		configuration.Include = types.IncludeFilter(utils.DeduplicatePatterns(includePatterns))
	}
	if inputs.SearchNeedle != "" {
		configuration.Search = &types.SearchSpec{
			Needle:     inputs.SearchNeedle,
			IgnoreCase: inputs.IgnoreCase,
			WholeWord:  inputs.WholeWord,
		}
	}
	return configuration, nil
}
