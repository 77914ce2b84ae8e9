package commands

import (
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/temirov/codeprompt/internal/types"
)

// errInvalidTextEncoding reports file content that is not valid UTF-8 text.
var errInvalidTextEncoding = errors.New("content is not valid UTF-8 text")

// readTextFile reads path as UTF-8 text with universal newlines.
// Failures are returned inside the result rather than as an error so the caller can keep scanning.
//
// #nosec G304
func readTextFile(path string) types.FileReadResult {
	fileBytes, readError := os.ReadFile(path)
	if readError != nil {
		return types.FileReadResult{Failure: readError}
	}
	if !utf8.Valid(fileBytes) {
		return types.FileReadResult{Failure: errInvalidTextEncoding}
	}
	return types.FileReadResult{Content: normalizeLineEndings(string(fileBytes))}
}

// normalizeLineEndings converts CRLF and lone CR line terminators to LF.
func normalizeLineEndings(content string) string {
	if !strings.Contains(content, "\r") {
		return content
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}
