// Package cli provides the command line interface.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/codeprompt/internal/commands"
	"github.com/temirov/codeprompt/internal/config"
	"github.com/temirov/codeprompt/internal/output"
	"github.com/temirov/codeprompt/internal/services/clipboard"
	"github.com/temirov/codeprompt/internal/tokenizer"
	"github.com/temirov/codeprompt/internal/types"
	"github.com/temirov/codeprompt/internal/utils"
)

const (
	rootUse              = "codeprompt [root]"
	rootShortDescription = "snapshot a directory tree and its file contents into one text file"
	rootLongDescription  = `codeprompt scans a directory and writes a single text file containing the rendered
directory tree followed by the contents of the selected files.
Exclusions come from built-in defaults, the root .gitignore, and --exclude. Use --include to
restrict file contents, --exclude-files to drop exact paths, and --search to keep only files
containing a string.`
	rootUsageExample = `  # Snapshot the current directory into prompts/<name>.txt
  codeprompt

  # Only TypeScript sources that mention "useEffect" as a whole word
  codeprompt ./frontend --include "*.ts,*.tsx" -s useEffect --whole-word

  # Skip generated code and a single file
  codeprompt -e "gen/,*.pb.go" --exclude-files cmd/main.go`

	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write config.yaml with every scan setting at its default value.
The file is created in the working directory, or in ~/.codeprompt with --global.`

	defaultRootPath = "."

	excludeFlagName       = "exclude"
	excludeFlagShorthand  = "e"
	includeFlagName       = "include"
	excludeFilesFlagName  = "exclude-files"
	outputDirFlagName     = "output-dir"
	outputDirShorthand    = "o"
	searchFlagName        = "search"
	searchFlagShorthand   = "s"
	ignoreCaseFlagName    = "ignore-case"
	wholeWordFlagName     = "whole-word"
	noGitignoreFlagName   = "no-gitignore"
	tokensFlagName        = "tokens"
	modelFlagName         = "model"
	clipboardFlagName     = "clipboard"
	configFlagName        = "config"
	versionFlagName       = "version"
	globalFlagName        = "global"
	forceFlagName         = "force"
	excludeFlagUsage      = "comma-separated glob patterns to exclude (repeatable)"
	includeFlagUsage      = "comma-separated glob patterns a file must match for its contents to be written (repeatable)"
	excludeFilesFlagUsage = "comma-separated file paths, relative to root or absolute, left out of the contents (repeatable)"
	outputDirFlagUsage    = "directory receiving the resulting text file"
	searchFlagUsage       = "only write files containing this string"
	ignoreCaseFlagUsage   = "ignore case when searching"
	wholeWordFlagUsage    = "match whole words when searching"
	noGitignoreFlagUsage  = "do not read .gitignore from the root"
	tokensFlagUsage       = "estimate the token count of the resulting file"
	modelFlagUsage        = "tokenizer model used with --tokens"
	clipboardFlagUsage    = "copy the resulting file to the clipboard"
	configFlagUsage       = "configuration file to load instead of ./config.yaml"
	versionFlagUsage      = "display application version"
	globalFlagUsage       = "write the configuration into ~/.codeprompt"
	forceFlagUsage        = "overwrite an existing configuration file"

	versionTemplate             = "codeprompt version: %s\n"
	configurationWrittenFormat  = "Configuration written to %s\n"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	outputDirectoryErrorFormat  = "resolve output directory %s: %w"
	progressMessageFormat       = "Added: %s"
	matchesFieldName            = "matches"
	warningClipboardMessage     = "failed to copy output to clipboard"
	warningTokenCountMessage    = "failed to count tokens"
	warningTokenSkippedFormat   = "output %s is not text; tokens were not counted"
)

// Dependencies are the collaborators of the command tree. Zero values are replaced with the system defaults.
type Dependencies struct {
	Logger           *zap.Logger
	Clipboard        clipboard.Copier
	NewTokenCounter  func(tokenizer.Config) (tokenizer.Counter, string, error)
	WorkingDirectory string
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewSystemClipboard()
	}
	if dependencies.NewTokenCounter == nil {
		dependencies.NewTokenCounter = tokenizer.NewCounter
	}
	return dependencies
}

// Execute runs the codeprompt application with the process arguments.
func Execute(logger *zap.Logger) error {
	rootCommand := NewRootCommand(Dependencies{Logger: logger})
	rootCommand.SetArgs(expandToggleArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// scanFlags holds the raw flag values of the root command.
type scanFlags struct {
	exclude         []string
	include         []string
	excludeFiles    []string
	outputDirectory string
	search          string
	ignoreCase      bool
	wholeWord       bool
	noGitignore     bool
	tokens          bool
	model           string
	clipboard       bool
	configPath      string
	showVersion     bool
}

// scanOptions is the fully resolved run configuration after applying configuration files and flags.
type scanOptions struct {
	rootPath        string
	inputs          config.ScanInputs
	outputDirectory string
	countTokens     bool
	tokenModel      string
	copyToClipboard bool
}

// NewRootCommand builds the codeprompt command tree.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()
	var flags scanFlags

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if flags.showVersion {
				_, writeError := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return writeError
			}
			rootPath := defaultRootPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			options, resolveError := resolveScanOptions(command, dependencies, flags, rootPath)
			if resolveError != nil {
				return resolveError
			}
			return runScan(command.OutOrStdout(), dependencies, options)
		},
	}

	flagSet := rootCommand.Flags()
	flagSet.StringArrayVarP(&flags.exclude, excludeFlagName, excludeFlagShorthand, nil, excludeFlagUsage)
	flagSet.StringArrayVar(&flags.include, includeFlagName, nil, includeFlagUsage)
	flagSet.StringArrayVar(&flags.excludeFiles, excludeFilesFlagName, nil, excludeFilesFlagUsage)
	flagSet.StringVarP(&flags.outputDirectory, outputDirFlagName, outputDirShorthand, utils.DefaultOutputDirectoryName, outputDirFlagUsage)
	flagSet.StringVarP(&flags.search, searchFlagName, searchFlagShorthand, "", searchFlagUsage)
	addToggleFlag(flagSet, &flags.ignoreCase, ignoreCaseFlagName, false, ignoreCaseFlagUsage)
	addToggleFlag(flagSet, &flags.wholeWord, wholeWordFlagName, false, wholeWordFlagUsage)
	addToggleFlag(flagSet, &flags.noGitignore, noGitignoreFlagName, false, noGitignoreFlagUsage)
	addToggleFlag(flagSet, &flags.tokens, tokensFlagName, false, tokensFlagUsage)
	flagSet.StringVar(&flags.model, modelFlagName, tokenizer.DefaultModel, modelFlagUsage)
	addToggleFlag(flagSet, &flags.clipboard, clipboardFlagName, false, clipboardFlagUsage)
	flagSet.StringVar(&flags.configPath, configFlagName, "", configFlagUsage)
	addToggleFlag(flagSet, &flags.showVersion, versionFlagName, false, versionFlagUsage)

	rootCommand.AddCommand(createInitCommand(dependencies))
	return rootCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(dependencies Dependencies) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			destinationPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: dependencies.WorkingDirectory,
			})
			if initError != nil {
				return initError
			}
			_, writeError := fmt.Fprintf(command.OutOrStdout(), configurationWrittenFormat, destinationPath)
			return writeError
		},
	}
	addToggleFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagUsage)
	addToggleFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagUsage)
	return initCommand
}

// resolveScanOptions layers explicitly set flags over the configuration files. Exclusion patterns and
// excluded files accumulate across sources; every other setting is replaced by the most specific source.
func resolveScanOptions(command *cobra.Command, dependencies Dependencies, flags scanFlags, rootPath string) (scanOptions, error) {
	applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: dependencies.WorkingDirectory,
		ExplicitFilePath: flags.configPath,
	})
	if loadError != nil {
		return scanOptions{}, loadError
	}
	defaults := applicationConfiguration.Scan
	changed := command.Flags().Changed

	include := defaults.Include
	if changed(includeFlagName) {
		include = flags.include
	}
	outputDirectory := flags.outputDirectory
	if !changed(outputDirFlagName) && defaults.OutputDirectory != "" {
		outputDirectory = defaults.OutputDirectory
	}
	useGitignore := config.BoolOrDefault(defaults.UseGitignore, true)
	if changed(noGitignoreFlagName) {
		useGitignore = !flags.noGitignore
	}
	ignoreCase := config.BoolOrDefault(defaults.Search.IgnoreCase, false)
	if changed(ignoreCaseFlagName) {
		ignoreCase = flags.ignoreCase
	}
	wholeWord := config.BoolOrDefault(defaults.Search.WholeWord, false)
	if changed(wholeWordFlagName) {
		wholeWord = flags.wholeWord
	}
	countTokens := config.BoolOrDefault(defaults.Tokens.Enabled, false)
	if changed(tokensFlagName) {
		countTokens = flags.tokens
	}
	tokenModel := flags.model
	if !changed(modelFlagName) && defaults.Tokens.Model != "" {
		tokenModel = defaults.Tokens.Model
	}
	copyToClipboard := config.BoolOrDefault(defaults.Clipboard, false)
	if changed(clipboardFlagName) {
		copyToClipboard = flags.clipboard
	}

	return scanOptions{
		rootPath: rootPath,
		inputs: config.ScanInputs{
			RootPath:          rootPath,
			ExclusionPatterns: append(append([]string{}, defaults.Exclude...), flags.exclude...),
			IncludePatterns:   include,
			ExcludeFiles:      append(append([]string{}, defaults.ExcludeFiles...), flags.excludeFiles...),
			UseIgnoreFile:     useGitignore,
			SearchNeedle:      flags.search,
			IgnoreCase:        ignoreCase,
			WholeWord:         wholeWord,
		},
		outputDirectory: outputDirectory,
		countTokens:     countTokens,
		tokenModel:      tokenModel,
		copyToClipboard: copyToClipboard,
	}, nil
}

// runScan writes the artifact for options.rootPath and reports the outcome on stdout.
func runScan(stdout io.Writer, dependencies Dependencies, options scanOptions) error {
	logger := dependencies.Logger
	scanConfiguration, configurationError := config.BuildScanConfiguration(options.inputs)
	if configurationError != nil {
		return configurationError
	}

	absoluteOutputDirectory, outputError := filepath.Abs(options.outputDirectory)
	if outputError != nil {
		return fmt.Errorf(outputDirectoryErrorFormat, options.outputDirectory, outputError)
	}
	artifactPath := output.ArtifactPath(options.outputDirectory, scanConfiguration.Root)
	scanConfiguration.IgnorePatterns = append(scanConfiguration.IgnorePatterns,
		outputExclusionPatterns(scanConfiguration.Root, absoluteOutputDirectory, filepath.Base(artifactPath))...)

	warn := func(message string) { logger.Warn(message) }
	var dumpResult types.DumpResult
	writeError := output.WriteArtifact(artifactPath, func(artifact io.Writer) error {
		buffered := bufio.NewWriter(artifact)
		renderedTree, renderError := commands.TreeRenderer{IgnorePatterns: scanConfiguration.IgnorePatterns, Warn: warn}.Render(scanConfiguration.Root)
		if renderError != nil {
			return renderError
		}
		if sectionError := output.WriteTreeSection(buffered, renderedTree); sectionError != nil {
			return sectionError
		}
		if bannerError := output.WriteContentsBanner(buffered); bannerError != nil {
			return bannerError
		}
		result, dumpError := dumpWithProgress(logger, commands.ContentDumper{Configuration: scanConfiguration, Warn: warn}, buffered)
		if dumpError != nil {
			return dumpError
		}
		dumpResult = result
		return buffered.Flush()
	})
	if writeError != nil {
		return writeError
	}

	lines := []string{output.FormatDoneLine(artifactPath), output.FormatSummaryLine(dumpResult)}
	if scanConfiguration.Search.Active() {
		lines = append(lines, output.FormatSearchSummaryLine(*scanConfiguration.Search, dumpResult))
	}
	if options.countTokens {
		if tokenLine, counted := countArtifactTokens(dependencies, artifactPath, options.tokenModel); counted {
			lines = append(lines, tokenLine)
		}
	}
	if _, printError := fmt.Fprintln(stdout, strings.Join(lines, "\n")); printError != nil {
		return printError
	}

	if options.copyToClipboard {
		if copyError := clipboard.CopyArtifact(dependencies.Clipboard, artifactPath); copyError != nil {
			logger.Warn(warningClipboardMessage, zap.Error(copyError))
		}
	}
	return nil
}

// countArtifactTokens returns the token summary line. Token counting failures are logged and never fail the run.
func countArtifactTokens(dependencies Dependencies, artifactPath string, model string) (string, bool) {
	counter, resolvedModel, counterError := dependencies.NewTokenCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		dependencies.Logger.Warn(warningTokenCountMessage, zap.Error(counterError))
		return "", false
	}
	countResult, countError := tokenizer.CountFile(counter, artifactPath)
	if countError != nil {
		dependencies.Logger.Warn(warningTokenCountMessage, zap.Error(countError))
		return "", false
	}
	if !countResult.Counted {
		dependencies.Logger.Warn(fmt.Sprintf(warningTokenSkippedFormat, artifactPath))
		return "", false
	}
	return output.FormatTokenLine(countResult.Tokens, resolvedModel), true
}

// outputExclusionPatterns keeps the artifact out of its own snapshot when the output directory lies inside the root.
// A trailing slash compares the artifact name literally against the root-level path only.
func outputExclusionPatterns(absoluteRootPath string, absoluteOutputDirectory string, artifactName string) []string {
	relativeOutputDirectory, relativeError := filepath.Rel(absoluteRootPath, absoluteOutputDirectory)
	if relativeError != nil {
		return nil
	}
	relativeOutputDirectory = utils.NormalizeSeparators(relativeOutputDirectory)
	if relativeOutputDirectory == ".." || strings.HasPrefix(relativeOutputDirectory, "../") {
		return nil
	}
	if relativeOutputDirectory == "." {
		return []string{artifactName + "/", output.TemporaryArtifactPattern}
	}
	return []string{relativeOutputDirectory + "/"}
}
