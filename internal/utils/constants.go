package utils

const (
	// GitIgnoreFileName is the ignore file read from the scan root.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ConfigFileName is the name of the application configuration file.
	ConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the user home holding the global configuration.
	GlobalConfigDirectoryName = ".codeprompt"
	// DefaultOutputDirectoryName is the directory receiving artifacts when none is configured.
	DefaultOutputDirectoryName = "prompts"
	// ArtifactFileExtension is appended to the root base name to form the artifact file name.
	ArtifactFileExtension = ".txt"
)

const (
	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal command failures.
	ApplicationExecutionFailedMessage = "codeprompt failed"
)
