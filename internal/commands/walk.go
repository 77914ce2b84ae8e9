// Package commands contains the tree renderer and the content dumper built on the exclusion matcher.
package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/codeprompt/internal/types"
	"github.com/temirov/codeprompt/internal/utils"
)

const (
	// errorReadDirectoryFormat is used when the root directory cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"
	// warningSkipDirectoryFormat is used when a subdirectory cannot be read.
	warningSkipDirectoryFormat = "skipping directory %s: %v"
)

// directoryEntry is a classified child of a visited directory.
type directoryEntry struct {
	Name string
	// IsDirectory is true for directories and for symbolic links resolving to directories.
	IsDirectory bool
	// IsSymbolicLink marks directories that are listed but never descended into.
	IsSymbolicLink bool
}

// directoryVisit describes one directory reached by the walker.
type directoryVisit struct {
	AbsolutePath string
	// RelativePath is slash-separated and "." for the root.
	RelativePath string
	Directories  []directoryEntry
	Files        []directoryEntry
}

// directoryWalker performs a top-down traversal that prunes excluded directories before reading them.
type directoryWalker struct {
	rootDirectoryPath string
	ignorePatterns    types.PatternSet
	warn              func(string)
}

func newDirectoryWalker(rootDirectoryPath string, ignorePatterns types.PatternSet, warn func(string)) directoryWalker {
	if warn == nil {
		warn = func(string) {}
	}
	return directoryWalker{
		rootDirectoryPath: rootDirectoryPath,
		ignorePatterns:    ignorePatterns,
		warn:              warn,
	}
}

// walk visits the root and then every non-excluded subdirectory, parents before children.
// Subdirectories are descended in case-insensitive name order. A root that cannot be read is an
// error; any other unreadable directory is reported through warn and skipped.
func (walker directoryWalker) walk(visit func(directoryVisit) error) error {
	return walker.walkDirectory(walker.rootDirectoryPath, ".", visit)
}

func (walker directoryWalker) walkDirectory(absolutePath string, relativePath string, visit func(directoryVisit) error) error {
	if relativePath != "." && utils.MatchesPattern(relativePath, walker.ignorePatterns) {
		return nil
	}

	entries, readError := os.ReadDir(absolutePath)
	if readError != nil {
		if relativePath == "." {
			return fmt.Errorf(errorReadDirectoryFormat, absolutePath, readError)
		}
		walker.warn(fmt.Sprintf(warningSkipDirectoryFormat, absolutePath, readError))
		return nil
	}

	current := directoryVisit{AbsolutePath: absolutePath, RelativePath: relativePath}
	for _, entry := range entries {
		classified := classifyEntry(absolutePath, entry)
		if classified.IsDirectory {
			current.Directories = append(current.Directories, classified)
		} else {
			current.Files = append(current.Files, classified)
		}
	}
	sortEntriesCaseInsensitive(current.Directories)

	if visitError := visit(current); visitError != nil {
		return visitError
	}

	for _, subdirectory := range current.Directories {
		if subdirectory.IsSymbolicLink {
			continue
		}
		childAbsolutePath := filepath.Join(absolutePath, subdirectory.Name)
		childRelativePath := utils.JoinRelativePath(relativePath, subdirectory.Name)
		if walkError := walker.walkDirectory(childAbsolutePath, childRelativePath, visit); walkError != nil {
			return walkError
		}
	}
	return nil
}

// classifyEntry resolves symbolic links so that links to directories are listed as directories.
// Broken links are treated as files.
func classifyEntry(parentPath string, entry fs.DirEntry) directoryEntry {
	classified := directoryEntry{Name: entry.Name(), IsDirectory: entry.IsDir()}
	if entry.Type()&fs.ModeSymlink == 0 {
		return classified
	}
	targetInfo, statError := os.Stat(filepath.Join(parentPath, entry.Name()))
	if statError == nil && targetInfo.IsDir() {
		classified.IsDirectory = true
		classified.IsSymbolicLink = true
	}
	return classified
}

// sortEntriesCaseInsensitive orders entries alphabetically ignoring case, breaking ties by the exact name.
func sortEntriesCaseInsensitive(entries []directoryEntry) {
	sort.SliceStable(entries, func(left, right int) bool {
		leftName := strings.ToLower(entries[left].Name)
		rightName := strings.ToLower(entries[right].Name)
		if leftName != rightName {
			return leftName < rightName
		}
		return entries[left].Name < entries[right].Name
	})
}

// sortEntriesByName orders entries by their exact name.
func sortEntriesByName(entries []directoryEntry) {
	sort.SliceStable(entries, func(left, right int) bool {
		return entries[left].Name < entries[right].Name
	})
}
