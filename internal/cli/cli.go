// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/repomap/repomap/internal/config"
	"github.com/repomap/repomap/internal/services/clipboard"
	"github.com/repomap/repomap/internal/utils"
)

const (
	updateFilesFlagName = "update-files"
	backupFlagName      = "backup"
	outputFlagName      = "output"
	verboseFlagName     = "verbose"
	forceFlagName       = "force"
	assumeYesFlagName   = "yes"
	commitFlagName      = "commit"
	clipboardFlagName   = "clipboard"
	tokensFlagName      = "tokens"
	modelFlagName       = "model"
	exclusionFlagName   = "e"
	configFlagName      = "config"
	versionFlagName     = "version"

	updateFilesFlagDescription = "inject the repository map header into tracked source files"
	backupFlagDescription      = "back up files before modifying them"
	outputFlagDescription      = "output file name for the map file"
	verboseFlagDescription     = "print every include/exclude/modify decision"
	forceFlagDescription       = "proceed with mutation even if a backup fails"
	assumeYesFlagDescription   = "answer yes to every confirmation prompt"
	commitFlagDescription      = "commit modified files to git after updating"
	clipboardFlagDescription   = "copy the rendered map to the clipboard"
	tokensFlagDescription      = "report the token count of the rendered map"
	modelFlagDescription       = "tokenizer model used for token counting"
	exclusionFlagDescription   = "additional exclusion pattern (directories end with /)"
	configFlagDescription      = "path to a configuration file"
	versionFlagDescription     = "display application version"

	versionTemplate = "repomap version: %s\n"

	rootUse              = "repomap [path]"
	rootShortDescription = "repomap renders a repository map and injects it into source files"
	rootLongDescription  = `repomap walks a project directory, renders an ASCII tree of its structure,
writes the tree to a standalone map file, and can inject the same tree as a
header comment into every tracked source file. Backups, a Git commit step,
clipboard export, and token counting are optional.`

	defaultTokenizerModelName = "gpt-4o"
	defaultPath               = "."

	// errorRootPathMissingFormat reports an invalid root path.
	errorRootPathMissingFormat = "root path %s does not exist"
	// errorRootPathNotDirectoryFormat reports a root path that is not a directory.
	errorRootPathNotDirectoryFormat = "root path %s is not a directory"
	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
)

// Execute runs the repomap application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// commandOptions stores the flag values of the root command.
type commandOptions struct {
	updateFiles       bool
	backupEnabled     bool
	outputFileName    string
	verbose           bool
	force             bool
	assumeYes         bool
	commitEnabled     bool
	clipboardEnabled  bool
	tokensEnabled     bool
	tokenizerModel    string
	exclusionPatterns []string
	configFilePath    string
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool
	var options commandOptions

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			rootDirectoryPath := defaultPath
			if len(arguments) > 0 {
				rootDirectoryPath = arguments[0]
			}
			configuration, buildError := buildRunConfiguration(command, rootDirectoryPath, options)
			if buildError != nil {
				return buildError
			}
			return Run(configuration)
		},
	}

	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.Flags().BoolVar(&options.updateFiles, updateFilesFlagName, false, updateFilesFlagDescription)
	rootCommand.Flags().BoolVar(&options.backupEnabled, backupFlagName, false, backupFlagDescription)
	rootCommand.Flags().StringVar(&options.outputFileName, outputFlagName, config.DefaultOutputFileName, outputFlagDescription)
	rootCommand.Flags().BoolVar(&options.verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.Flags().BoolVar(&options.force, forceFlagName, false, forceFlagDescription)
	rootCommand.Flags().BoolVar(&options.assumeYes, assumeYesFlagName, false, assumeYesFlagDescription)
	rootCommand.Flags().BoolVar(&options.commitEnabled, commitFlagName, false, commitFlagDescription)
	rootCommand.Flags().BoolVar(&options.clipboardEnabled, clipboardFlagName, false, clipboardFlagDescription)
	rootCommand.Flags().BoolVar(&options.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	rootCommand.Flags().StringVar(&options.tokenizerModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	rootCommand.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	rootCommand.Flags().StringVar(&options.configFilePath, configFlagName, "", configFlagDescription)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// buildRunConfiguration validates the root path, loads the optional
// configuration file, and resolves flag/file/default precedence into a fully
// decided RunConfiguration.
func buildRunConfiguration(command *cobra.Command, rootDirectoryPath string, options commandOptions) (RunConfiguration, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return RunConfiguration{}, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}
	rootInfo, statError := os.Stat(absoluteRootPath)
	if statError != nil {
		return RunConfiguration{}, fmt.Errorf(errorRootPathMissingFormat, absoluteRootPath)
	}
	if !rootInfo.IsDir() {
		return RunConfiguration{}, fmt.Errorf(errorRootPathNotDirectoryFormat, absoluteRootPath)
	}

	fileConfiguration, loadError := config.LoadFileConfiguration(absoluteRootPath, options.configFilePath)
	if loadError != nil {
		return RunConfiguration{}, loadError
	}

	outputFileName := options.outputFileName
	if !command.Flags().Changed(outputFlagName) && fileConfiguration.Output != "" {
		outputFileName = fileConfiguration.Output
	}

	extraFilePatterns, extraDirectoryPatterns := splitExclusionPatterns(options.exclusionPatterns)

	return RunConfiguration{
		RootDirectoryPath:      absoluteRootPath,
		OutputFileName:         outputFileName,
		FileConfiguration:      fileConfiguration,
		UpdateFiles:            options.updateFiles,
		BackupEnabled:          fileConfiguration.BackupEnabled(options.backupEnabled, command.Flags().Changed(backupFlagName)),
		CommitEnabled:          fileConfiguration.CommitEnabled(options.commitEnabled, command.Flags().Changed(commitFlagName)),
		Force:                  options.force,
		AssumeYes:              options.assumeYes,
		Verbose:                options.verbose,
		ClipboardEnabled:       options.clipboardEnabled,
		TokensEnabled:          options.tokensEnabled,
		TokenizerModel:         options.tokenizerModel,
		ExtraFilePatterns:      extraFilePatterns,
		ExtraDirectoryPatterns: extraDirectoryPatterns,
		Stdin:                  os.Stdin,
		Stdout:                 os.Stdout,
		ClipboardCopier:        clipboard.NewService(),
	}, nil
}

// splitExclusionPatterns partitions -e values: patterns with a trailing slash
// target directories, the rest target files.
func splitExclusionPatterns(patterns []string) ([]string, []string) {
	var filePatterns []string
	var directoryPatterns []string
	for _, pattern := range patterns {
		if len(pattern) > 1 && pattern[len(pattern)-1] == '/' {
			directoryPatterns = append(directoryPatterns, pattern[:len(pattern)-1])
		} else if pattern != "" {
			filePatterns = append(filePatterns, pattern)
		}
	}
	return filePatterns, directoryPatterns
}
