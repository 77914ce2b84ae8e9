// Package output renders the snapshot artifact and the completion summary lines.
package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/codeprompt/internal/types"
	"github.com/temirov/codeprompt/internal/utils"
)

const (
	directoryStructureHeader = "Directory Structure:"
	directoryStructureRule   = "===================="
	fileContentsHeader       = "File Contents:"
	fileContentsRule         = "=============="
	fileHeaderPrefix         = "File: "
	separatorWidth           = 50
	separatorCharacter       = "-"
	readErrorFormat          = "[Error reading %s: %v]"

	// fallbackArtifactBaseName names the artifact when the root has no usable base name, such as "/".
	fallbackArtifactBaseName = "root"

	doneLineFormat          = "Done! Output written to %s"
	searchSummaryFormat     = "Search summary: '%s' (%s, %s) -> %d matches in %d files."
	searchModeWholeWord     = "whole word"
	searchModeSubstring     = "substring"
	searchCaseInsensitive   = "ignore case"
	searchCaseSensitive     = "case sensitive"
	tokenSummaryFormat      = "Tokens: %d (model: %s)"
	errorCreateTempFormat   = "create temporary artifact in %s: %w"
	errorFinalizeFormat     = "finalize artifact %s: %w"
	errorCreateOutputFormat = "create output directory %s: %w"
)

// TemporaryArtifactPattern names the file written before it is moved into place.
const TemporaryArtifactPattern = ".codeprompt-*.tmp"

// separatorLine follows every file header.
var separatorLine = strings.Repeat(separatorCharacter, separatorWidth)

// WriteTreeSection writes the directory structure banner followed by the rendered tree.
func WriteTreeSection(writer io.Writer, renderedTree string) error {
	var buffer bytes.Buffer
	buffer.WriteString(directoryStructureHeader + "\n")
	buffer.WriteString(directoryStructureRule + "\n")
	buffer.WriteString(renderedTree)
	buffer.WriteString("\n\n")
	_, writeError := writer.Write(buffer.Bytes())
	return writeError
}

// WriteContentsBanner writes the banner that opens the file contents section.
func WriteContentsBanner(writer io.Writer) error {
	_, writeError := io.WriteString(writer, fileContentsHeader+"\n"+fileContentsRule+"\n")
	return writeError
}

// WriteFileEntry writes a file header, the separator, the content, and a blank line.
// It returns the number of bytes written.
func WriteFileEntry(writer io.Writer, relativePath string, content string) (int64, error) {
	var buffer bytes.Buffer
	buffer.WriteString(fileHeaderPrefix + relativePath + "\n")
	buffer.WriteString(separatorLine + "\n")
	buffer.WriteString(content)
	buffer.WriteString("\n")
	bytesWritten, writeError := writer.Write(buffer.Bytes())
	return int64(bytesWritten), writeError
}

// WriteFileReadError writes a file header followed by an inline note describing why the file could not be read.
func WriteFileReadError(writer io.Writer, relativePath string, failure error) error {
	var buffer bytes.Buffer
	buffer.WriteString(fileHeaderPrefix + relativePath + "\n")
	buffer.WriteString(separatorLine + "\n")
	buffer.WriteString(fmt.Sprintf(readErrorFormat, relativePath, failure) + "\n")
	buffer.WriteString("\n")
	_, writeError := writer.Write(buffer.Bytes())
	return writeError
}

// ArtifactPath returns the artifact location for a root: <outputDirectory>/<root base name>.txt.
func ArtifactPath(outputDirectory string, absoluteRootPath string) string {
	baseName := filepath.Base(filepath.Clean(absoluteRootPath))
	if baseName == "" || baseName == "." || baseName == string(filepath.Separator) {
		baseName = fallbackArtifactBaseName
	}
	return filepath.Join(outputDirectory, baseName+utils.ArtifactFileExtension)
}

// WriteArtifact creates the parent directory of artifactPath, writes the artifact through write into a
// temporary file in that directory, and renames it into place only after write succeeds.
func WriteArtifact(artifactPath string, write func(io.Writer) error) (writeErr error) {
	outputDirectory := filepath.Dir(artifactPath)
	if mkdirError := os.MkdirAll(outputDirectory, 0o755); mkdirError != nil {
		return fmt.Errorf(errorCreateOutputFormat, outputDirectory, mkdirError)
	}

	temporaryFile, createError := os.CreateTemp(outputDirectory, TemporaryArtifactPattern)
	if createError != nil {
		return fmt.Errorf(errorCreateTempFormat, outputDirectory, createError)
	}
	temporaryPath := temporaryFile.Name()
	defer func() {
		if writeErr != nil {
			_ = temporaryFile.Close()
			_ = os.Remove(temporaryPath)
		}
	}()

	if writeError := write(temporaryFile); writeError != nil {
		return writeError
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return fmt.Errorf(errorFinalizeFormat, artifactPath, closeError)
	}
	if renameError := os.Rename(temporaryPath, artifactPath); renameError != nil {
		return fmt.Errorf(errorFinalizeFormat, artifactPath, renameError)
	}
	return nil
}

// FormatDoneLine reports where the artifact was written.
func FormatDoneLine(artifactPath string) string {
	return fmt.Sprintf(doneLineFormat, artifactPath)
}

// FormatSearchSummaryLine reports the search statistics of a dump.
func FormatSearchSummaryLine(search types.SearchSpec, result types.DumpResult) string {
	mode := searchModeSubstring
	if search.WholeWord {
		mode = searchModeWholeWord
	}
	caseMode := searchCaseSensitive
	if search.IgnoreCase {
		caseMode = searchCaseInsensitive
	}
	return fmt.Sprintf(searchSummaryFormat, search.Needle, mode, caseMode, result.TotalMatches, result.FilesWithMatches)
}

// FormatSummaryLine reports how many files were written and their combined size.
func FormatSummaryLine(result types.DumpResult) string {
	label := "files"
	if result.FilesWritten == 1 {
		label = "file"
	}
	return fmt.Sprintf("Summary: %d %s, %s", result.FilesWritten, label, utils.FormatFileSize(result.BytesWritten))
}

// FormatTokenLine reports the estimated token count of the artifact.
func FormatTokenLine(tokens int, model string) string {
	return fmt.Sprintf(tokenSummaryFormat, tokens, model)
}
