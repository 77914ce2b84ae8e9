package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/codeprompt/internal/config"
	"github.com/temirov/codeprompt/internal/output"
	"github.com/temirov/codeprompt/internal/tokenizer"
)

const dashes = "--------------------------------------------------"

type recordingClipboard struct {
	copied  []string
	failure error
}

func (recorder *recordingClipboard) Copy(text string) error {
	if recorder.failure != nil {
		return recorder.failure
	}
	recorder.copied = append(recorder.copied, text)
	return nil
}

type runeCounter struct{}

func (runeCounter) Name() string { return "runes" }

func (runeCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

// isolateConfiguration points the global configuration lookup at an empty home directory and
// returns an empty working directory for local configuration.
func isolateConfiguration(t *testing.T) string {
	t.Helper()
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)
	return t.TempDir()
}

func writeTree(t *testing.T, rootDirectory string, files map[string]string) {
	t.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		if err := os.MkdirAll(filepath.Dir(absolutePath), 0o755); err != nil {
			t.Fatalf("create directory for %s: %v", relativePath, err)
		}
		if err := os.WriteFile(absolutePath, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", relativePath, err)
		}
	}
}

func runRootCommand(t *testing.T, dependencies Dependencies, arguments ...string) (string, error) {
	t.Helper()
	if dependencies.Logger == nil {
		dependencies.Logger = zaptest.NewLogger(t)
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = &recordingClipboard{}
	}
	command := NewRootCommand(dependencies)
	var stdout bytes.Buffer
	command.SetOut(&stdout)
	command.SetErr(io.Discard)
	command.SetArgs(expandToggleArguments(command, arguments))
	executeError := command.Execute()
	return stdout.String(), executeError
}

func readArtifact(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact %s: %v", path, err)
	}
	return string(data)
}

func TestRootCommandWritesArtifact(t *testing.T) {
	workingDirectory := isolateConfiguration(t)
	rootDirectory := t.TempDir()
	outputDirectory := t.TempDir()
	writeTree(t, rootDirectory, map[string]string{
		"a.txt":      "hello",
		"b/c.txt":    "hello world",
		".gitignore": "b/\n",
	})

	stdout, err := runRootCommand(t, Dependencies{WorkingDirectory: workingDirectory}, rootDirectory, "-o", outputDirectory)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	artifactPath := output.ArtifactPath(outputDirectory, rootDirectory)
	expected := "Directory Structure:\n====================\n/\n.gitignore\na.txt\n\n" +
		"File Contents:\n==============\n" +
		"File: .gitignore\n" + dashes + "\nb/\n\n" +
		"File: a.txt\n" + dashes + "\nhello\n"
	if actual := readArtifact(t, artifactPath); actual != expected {
		t.Fatalf("unexpected artifact\nexpected: %q\nactual:   %q", expected, actual)
	}
	if !strings.HasPrefix(stdout, "Done! Output written to "+artifactPath+"\n") {
		t.Fatalf("unexpected stdout %q", stdout)
	}
	if !strings.Contains(stdout, "Summary: 2 files, ") {
		t.Fatalf("expected file summary in %q", stdout)
	}
	if strings.Contains(stdout, "Search summary") {
		t.Fatalf("did not expect a search summary in %q", stdout)
	}
}

func TestRootCommandSearchReportsAndLogsProgress(t *testing.T) {
	workingDirectory := isolateConfiguration(t)
	rootDirectory := t.TempDir()
	outputDirectory := t.TempDir()
	writeTree(t, rootDirectory, map[string]string{
		"a.txt":        "hello there, hello again",
		"greeting.txt": "helloworld",
		"other.txt":    "nothing",
	})

	core, logs := observer.New(zapcore.InfoLevel)
	stdout, err := runRootCommand(t, Dependencies{Logger: zap.New(core), WorkingDirectory: workingDirectory},
		rootDirectory, "-o", outputDirectory, "-s", "hello", "--whole-word", "yes")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	expectedSummary := "Search summary: 'hello' (whole word, case sensitive) -> 2 matches in 1 files."
	if !strings.Contains(stdout, expectedSummary) {
		t.Fatalf("expected %q in %q", expectedSummary, stdout)
	}
	artifact := readArtifact(t, output.ArtifactPath(outputDirectory, rootDirectory))
	if strings.Contains(artifact, "File: greeting.txt") || strings.Contains(artifact, "File: other.txt") {
		t.Fatalf("unexpected files in artifact:\n%s", artifact)
	}

	progressEntries := logs.FilterMessage("Added: a.txt").All()
	if len(progressEntries) != 1 {
		t.Fatalf("expected one progress entry, got %d (%v)", len(progressEntries), logs.All())
	}
	if matches := progressEntries[0].ContextMap()[matchesFieldName]; matches != int64(2) {
		t.Fatalf("expected 2 matches on the progress entry, got %v", matches)
	}
}

func TestRootCommandAppliesConfigurationFile(t *testing.T) {
	workingDirectory := isolateConfiguration(t)
	rootDirectory := t.TempDir()
	outputDirectory := t.TempDir()
	writeTree(t, rootDirectory, map[string]string{
		"a.txt":    "Hello",
		"notes.md": "hello notes",
	})
	configuration := fmt.Sprintf("scan:\n  exclude:\n    - \"*.md\"\n  output_dir: %s\n  search:\n    ignore_case: true\n", outputDirectory)
	writeTree(t, workingDirectory, map[string]string{"config.yaml": configuration})

	testCases := []struct {
		name            string
		arguments       []string
		expectedSummary string
	}{
		{
			name:            "configuration_defaults",
			arguments:       []string{rootDirectory, "-s", "hello"},
			expectedSummary: "Search summary: 'hello' (substring, ignore case) -> 1 matches in 1 files.",
		},
		{
			name:            "flag_overrides_configuration",
			arguments:       []string{rootDirectory, "-s", "hello", "--ignore-case=false"},
			expectedSummary: "Search summary: 'hello' (substring, case sensitive) -> 0 matches in 0 files.",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			stdout, err := runRootCommand(t, Dependencies{WorkingDirectory: workingDirectory}, testCase.arguments...)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if !strings.Contains(stdout, testCase.expectedSummary) {
				t.Fatalf("expected %q in %q", testCase.expectedSummary, stdout)
			}
			artifact := readArtifact(t, output.ArtifactPath(outputDirectory, rootDirectory))
			if strings.Contains(artifact, "notes.md") {
				t.Fatalf("expected notes.md to be excluded:\n%s", artifact)
			}
		})
	}
}

func TestRootCommandKeepsArtifactOutOfSnapshot(t *testing.T) {
	workingDirectory := isolateConfiguration(t)
	rootDirectory := t.TempDir()
	writeTree(t, rootDirectory, map[string]string{"a.txt": "hello"})
	outputDirectory := filepath.Join(rootDirectory, "prompts")

	for run := 0; run < 2; run++ {
		if _, err := runRootCommand(t, Dependencies{WorkingDirectory: workingDirectory}, rootDirectory, "-o", outputDirectory); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
	}

	artifact := readArtifact(t, output.ArtifactPath(outputDirectory, rootDirectory))
	if strings.Contains(artifact, "prompts") || strings.Contains(artifact, ".tmp") {
		t.Fatalf("artifact lists its own output directory:\n%s", artifact)
	}
}

func TestRootCommandExcludesOnlyRootLevelArtifact(t *testing.T) {
	workingDirectory := isolateConfiguration(t)
	rootDirectory := filepath.Join(t.TempDir(), "snap[1]")
	writeTree(t, rootDirectory, map[string]string{
		"a.txt":            "hello",
		"docs/snap[1].txt": "nested",
		"docs/snap1.txt":   "bracket",
	})

	for run := 0; run < 2; run++ {
		if _, err := runRootCommand(t, Dependencies{WorkingDirectory: workingDirectory}, rootDirectory, "-o", rootDirectory); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
	}

	artifact := readArtifact(t, output.ArtifactPath(rootDirectory, rootDirectory))
	if strings.Contains(artifact, "File: snap[1].txt\n") || strings.Contains(artifact, ".tmp") {
		t.Fatalf("artifact lists itself:\n%s", artifact)
	}
	for _, expectedHeader := range []string{"File: docs/snap[1].txt\n", "File: docs/snap1.txt\n"} {
		if !strings.Contains(artifact, expectedHeader) {
			t.Fatalf("expected %q in artifact:\n%s", expectedHeader, artifact)
		}
	}
}

func TestOutputExclusionPatterns(t *testing.T) {
	rootDirectory := filepath.Join(string(filepath.Separator), "work", "snap")
	testCases := []struct {
		testName        string
		outputDirectory string
		expected        []string
	}{
		{
			testName:        "root_output_is_anchored",
			outputDirectory: rootDirectory,
			expected:        []string{"snap.txt/", output.TemporaryArtifactPattern},
		},
		{
			testName:        "nested_output_excludes_directory",
			outputDirectory: filepath.Join(rootDirectory, "prompts", "out"),
			expected:        []string{"prompts/out/"},
		},
		{
			testName:        "outside_output_adds_nothing",
			outputDirectory: filepath.Join(string(filepath.Separator), "work", "other"),
			expected:        nil,
		},
	}

	for _, testCase := range testCases {
		actual := outputExclusionPatterns(rootDirectory, testCase.outputDirectory, "snap.txt")
		if strings.Join(actual, ",") != strings.Join(testCase.expected, ",") || len(actual) != len(testCase.expected) {
			t.Fatalf("%s: expected %v, got %v", testCase.testName, testCase.expected, actual)
		}
	}
}

func TestRootCommandRejectsMissingRoot(t *testing.T) {
	workingDirectory := isolateConfiguration(t)
	missingRoot := filepath.Join(t.TempDir(), "missing")
	outputDirectory := filepath.Join(t.TempDir(), "prompts")

	_, err := runRootCommand(t, Dependencies{WorkingDirectory: workingDirectory}, missingRoot, "-o", outputDirectory)
	if !errors.Is(err, config.ErrRootNotDirectory) {
		t.Fatalf("expected ErrRootNotDirectory, got %v", err)
	}
	if _, statErr := os.Stat(outputDirectory); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output directory after a configuration error, stat error %v", statErr)
	}
}

func TestRootCommandCountsTokensAndCopies(t *testing.T) {
	workingDirectory := isolateConfiguration(t)
	rootDirectory := t.TempDir()
	outputDirectory := t.TempDir()
	writeTree(t, rootDirectory, map[string]string{"a.txt": "héllo"})

	var requestedModel string
	recorder := &recordingClipboard{}
	dependencies := Dependencies{
		Clipboard:        recorder,
		WorkingDirectory: workingDirectory,
		NewTokenCounter: func(configuration tokenizer.Config) (tokenizer.Counter, string, error) {
			requestedModel = configuration.Model
			return runeCounter{}, "runes", nil
		},
	}

	stdout, err := runRootCommand(t, dependencies, rootDirectory, "-o", outputDirectory, "--tokens", "--model", "gpt-4", "--clipboard")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	artifact := readArtifact(t, output.ArtifactPath(outputDirectory, rootDirectory))
	expectedTokens := fmt.Sprintf("Tokens: %d (model: runes)", len([]rune(artifact)))
	if !strings.Contains(stdout, expectedTokens) {
		t.Fatalf("expected %q in %q", expectedTokens, stdout)
	}
	if requestedModel != "gpt-4" {
		t.Fatalf("expected model gpt-4, got %q", requestedModel)
	}
	if len(recorder.copied) != 1 || recorder.copied[0] != artifact {
		t.Fatalf("expected the artifact on the clipboard, got %d copies", len(recorder.copied))
	}
}

func TestRootCommandClipboardFailureIsAWarning(t *testing.T) {
	workingDirectory := isolateConfiguration(t)
	rootDirectory := t.TempDir()
	writeTree(t, rootDirectory, map[string]string{"a.txt": "hello"})

	core, logs := observer.New(zapcore.WarnLevel)
	dependencies := Dependencies{
		Logger:           zap.New(core),
		Clipboard:        &recordingClipboard{failure: errors.New("no display")},
		WorkingDirectory: workingDirectory,
	}
	if _, err := runRootCommand(t, dependencies, rootDirectory, "-o", t.TempDir(), "--clipboard"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if logs.FilterMessage(warningClipboardMessage).Len() != 1 {
		t.Fatalf("expected a clipboard warning, got %v", logs.All())
	}
}

func TestRootCommandVersion(t *testing.T) {
	stdout, err := runRootCommand(t, Dependencies{}, "--version")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(stdout, "codeprompt version: ") {
		t.Fatalf("unexpected version output %q", stdout)
	}
}

func TestInitCommand(t *testing.T) {
	workingDirectory := isolateConfiguration(t)
	dependencies := Dependencies{WorkingDirectory: workingDirectory}
	configurationPath := filepath.Join(workingDirectory, "config.yaml")

	stdout, err := runRootCommand(t, dependencies, "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if stdout != "Configuration written to "+configurationPath+"\n" {
		t.Fatalf("unexpected init output %q", stdout)
	}
	if _, err := runRootCommand(t, dependencies, "init"); err == nil {
		t.Fatalf("expected init to refuse overwriting without --force")
	}
	if _, err := runRootCommand(t, dependencies, "init", "--force", "true"); err != nil {
		t.Fatalf("init --force: %v", err)
	}
}
