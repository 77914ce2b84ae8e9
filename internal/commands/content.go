package commands

import (
	"io"
	"path/filepath"

	"github.com/temirov/codeprompt/internal/output"
	"github.com/temirov/codeprompt/internal/types"
	"github.com/temirov/codeprompt/internal/utils"
)

// ContentDumper writes the contents of every selected file to a sink.
type ContentDumper struct {
	Configuration types.ScanConfiguration
	Warn          func(message string)
}

// DumpContents writes the selected files under configuration.Root to sink.
// When progress is not nil, every file written with its content is announced on it.
func DumpContents(configuration types.ScanConfiguration, sink io.Writer, progress chan<- types.ProgressEvent) (types.DumpResult, error) {
	dumper := ContentDumper{Configuration: configuration}
	return dumper.Dump(sink, progress)
}

// Dump walks the root with the same pruning as the tree renderer and writes, in file name order
// within each directory, every file that survives the exclusion patterns, the explicit file
// exclusions, the include filter, and the search. Unreadable files produce an inline error entry
// and do not stop the scan. Only failures to write to sink abort the dump.
func (dumper ContentDumper) Dump(sink io.Writer, progress chan<- types.ProgressEvent) (types.DumpResult, error) {
	configuration := dumper.Configuration
	var result types.DumpResult

	var searchCounter *SearchCounter
	if configuration.Search.Active() {
		createdCounter, counterError := NewSearchCounter(*configuration.Search)
		if counterError != nil {
			return result, counterError
		}
		searchCounter = createdCounter
	}

	walker := newDirectoryWalker(configuration.Root, configuration.IgnorePatterns, dumper.Warn)
	walkError := walker.walk(func(visit directoryVisit) error {
		files := append([]directoryEntry(nil), visit.Files...)
		sortEntriesByName(files)

		for _, file := range files {
			relativePath := utils.JoinRelativePath(visit.RelativePath, file.Name)
			if !dumper.selects(relativePath, file.Name) {
				continue
			}

			readResult := readTextFile(filepath.Join(visit.AbsolutePath, file.Name))
			if !readResult.Succeeded() {
				if writeError := output.WriteFileReadError(sink, relativePath, readResult.Failure); writeError != nil {
					return writeError
				}
				continue
			}

			matchCount := 0
			if searchCounter != nil {
				counted, countError := searchCounter.Count(readResult.Content)
				if countError != nil {
					return countError
				}
				if counted == 0 {
					continue
				}
				matchCount = counted
				result.TotalMatches += counted
				result.FilesWithMatches++
			}

			bytesWritten, writeError := output.WriteFileEntry(sink, relativePath, readResult.Content)
			if writeError != nil {
				return writeError
			}
			result.FilesWritten++
			result.BytesWritten += bytesWritten
			if progress != nil {
				progress <- types.ProgressEvent{RelativePath: relativePath, Matches: matchCount}
			}
		}
		return nil
	})
	if walkError != nil {
		return result, walkError
	}
	return result, nil
}

// selects applies the exclusion patterns, the explicit file exclusions, and the include filter in order.
func (dumper ContentDumper) selects(relativePath string, fileName string) bool {
	configuration := dumper.Configuration
	if utils.MatchesPattern(relativePath, configuration.IgnorePatterns) {
		return false
	}
	if configuration.ExcludeFiles.Contains(relativePath) {
		return false
	}
	if configuration.Include.Enabled() && !utils.MatchesIncludePattern(relativePath, fileName, configuration.Include) {
		return false
	}
	return true
}
