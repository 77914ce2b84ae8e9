package commands

import (
	"strings"

	"github.com/temirov/codeprompt/internal/types"
	"github.com/temirov/codeprompt/internal/utils"
)

const (
	// treeRootLine is the first line of every rendered tree.
	treeRootLine = "/"
	// treeIndentUnit is repeated once per depth level.
	treeIndentUnit = "    "
	// directorySuffix marks directory entries in the rendered tree.
	directorySuffix = "/"
)

// TreeRenderer renders the indented directory listing.
type TreeRenderer struct {
	IgnorePatterns types.PatternSet
	Warn           func(message string)
}

// RenderTree renders the tree of rootDirectoryPath, skipping every entry excluded by ignorePatterns.
func RenderTree(rootDirectoryPath string, ignorePatterns types.PatternSet) (string, error) {
	renderer := TreeRenderer{IgnorePatterns: ignorePatterns}
	return renderer.Render(rootDirectoryPath)
}

// Render walks rootDirectoryPath top-down. Each visited directory contributes one block listing its
// surviving children, directories first and each group sorted case-insensitively, indented by four
// spaces per depth level. Excluded directories are neither listed nor descended into.
func (renderer TreeRenderer) Render(rootDirectoryPath string) (string, error) {
	lines := []string{treeRootLine}
	walker := newDirectoryWalker(rootDirectoryPath, renderer.IgnorePatterns, renderer.Warn)

	walkError := walker.walk(func(visit directoryVisit) error {
		prefix := strings.Repeat(treeIndentUnit, utils.RelativeDepth(visit.RelativePath))

		files := append([]directoryEntry(nil), visit.Files...)
		sortEntriesCaseInsensitive(files)
		entries := append(append([]directoryEntry(nil), visit.Directories...), files...)

		for _, entry := range entries {
			relativePath := utils.JoinRelativePath(visit.RelativePath, entry.Name)
			if utils.MatchesPattern(relativePath, renderer.IgnorePatterns) {
				continue
			}
			suffix := ""
			if entry.IsDirectory {
				suffix = directorySuffix
			}
			lines = append(lines, prefix+entry.Name+suffix)
		}
		return nil
	})
	if walkError != nil {
		return "", walkError
	}
	return strings.Join(lines, "\n"), nil
}
