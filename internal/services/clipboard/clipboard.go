// Package clipboard places a finished snapshot artifact on the system clipboard.
package clipboard

import (
	"fmt"
	"os"

	systemclipboard "github.com/atotto/clipboard"
)

// Copier copies text to a clipboard.
type Copier interface {
	Copy(text string) error
}

// SystemClipboard implements Copier with github.com/atotto/clipboard.
type SystemClipboard struct{}

// NewSystemClipboard returns the clipboard of the host desktop session.
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{}
}

// Copy writes text to the system clipboard.
func (systemClipboard *SystemClipboard) Copy(text string) error {
	return systemclipboard.WriteAll(text)
}

var _ Copier = (*SystemClipboard)(nil)

// CopyArtifact reads the artifact at artifactPath and hands its text to copier.
//
// #nosec G304
func CopyArtifact(copier Copier, artifactPath string) error {
	data, readError := os.ReadFile(artifactPath)
	if readError != nil {
		return fmt.Errorf("read artifact %s: %w", artifactPath, readError)
	}
	if copyError := copier.Copy(string(data)); copyError != nil {
		return fmt.Errorf("copy artifact to clipboard: %w", copyError)
	}
	return nil
}
