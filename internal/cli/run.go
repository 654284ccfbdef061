package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/repomap/repomap/internal/config"
	"github.com/repomap/repomap/internal/gitops"
	"github.com/repomap/repomap/internal/metrics"
	"github.com/repomap/repomap/internal/mutate"
	"github.com/repomap/repomap/internal/services/clipboard"
	"github.com/repomap/repomap/internal/tokenizer"
	"github.com/repomap/repomap/internal/tree"
	"github.com/repomap/repomap/internal/types"
	"github.com/repomap/repomap/internal/utils"
)

const (
	// backupTimestampLayout names the per-run backup subdirectory.
	backupTimestampLayout = "20060102_150405"

	mapFileHeaderTitle = "# Repository Map"

	previewLineFormat       = "Would update repo map in: %s\n"
	noFilesToUpdateMessage  = "No files to update."
	updatesCancelledMessage = "File updates cancelled."

	proceedQuestion = "Apply the repository map header to the files listed above?"
	backupQuestion  = "Create backups before modifying files?"
	commitQuestion  = "Commit the modified files to git?"

	// errorWriteMapFileFormat reports a fatal failure to write the map file.
	errorWriteMapFileFormat = "writing map file %s: %w"
	// gitCommitFailedReason is recorded when the commit step fails.
	gitCommitFailedReason = "git commit failed"
)

// RunConfiguration carries every decision the orchestrator needs. All
// precedence between flags, configuration file, and defaults is resolved
// before a RunConfiguration is constructed, so Run performs no flag lookups
// and no interactive I/O beyond the confirmation prompts on Stdin.
type RunConfiguration struct {
	RootDirectoryPath      string
	OutputFileName         string
	FileConfiguration      config.FileConfiguration
	UpdateFiles            bool
	BackupEnabled          bool
	CommitEnabled          bool
	Force                  bool
	AssumeYes              bool
	Verbose                bool
	ClipboardEnabled       bool
	TokensEnabled          bool
	TokenizerModel         string
	ExtraFilePatterns      []string
	ExtraDirectoryPatterns []string

	Stdin           io.Reader
	Stdout          io.Writer
	ClipboardCopier clipboard.Copier
}

// Run executes a complete repomap run: build the tree, write the map file,
// and optionally inject headers, back up, and commit. Per-file failures are
// recorded in the summary; only configuration-level failures return an error.
func Run(configuration RunConfiguration) error {
	logger, loggerError := utils.NewApplicationLogger(configuration.Verbose)
	if loggerError != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
	}
	defer logger.Sync()

	settings := buildSettings(configuration)
	runMetrics := metrics.NewRunMetrics()

	treeBuilder := &tree.Builder{Settings: settings, Logger: logger}
	rootNode, buildError := treeBuilder.Build(configuration.RootDirectoryPath)
	if buildError != nil {
		return buildError
	}
	treeText := tree.RenderString(rootNode)

	mapFilePath := filepath.Join(configuration.RootDirectoryPath, settings.OutputFileName)
	mapFileContent := renderMapFile(treeText, settings.OutputFileName)
	if writeError := mutate.WriteFileAtomic(mapFilePath, []byte(mapFileContent)); writeError != nil {
		return fmt.Errorf(errorWriteMapFileFormat, mapFilePath, writeError)
	}
	runMetrics.MapFileSaved = true
	runMetrics.MapFileLocation = mapFilePath
	logger.Debug("map file written", zap.String("path", mapFilePath))

	if configuration.ClipboardEnabled && configuration.ClipboardCopier != nil {
		if copyError := configuration.ClipboardCopier.Copy(treeText); copyError != nil {
			logger.Warn("copying map to clipboard failed", zap.Error(copyError))
			runMetrics.Warnings++
		}
	}

	if configuration.TokensEnabled {
		counter, counterError := tokenizer.NewCounter(configuration.TokenizerModel)
		if counterError != nil {
			logger.Warn("initializing tokenizer failed", zap.Error(counterError))
			runMetrics.Warnings++
		} else if tokenCount, countError := counter.CountString(treeText); countError != nil {
			logger.Warn("counting map tokens failed", zap.Error(countError))
			runMetrics.Warnings++
		} else {
			runMetrics.MapTokens = tokenCount
			runMetrics.TokenizerName = counter.Name()
		}
	}

	if configuration.UpdateFiles {
		updateError := runFileUpdates(configuration, settings, logger, runMetrics, rootNode, treeText)
		if updateError != nil {
			return updateError
		}
	}

	runMetrics.WriteSummary(configuration.Stdout)
	return nil
}

// runFileUpdates previews the eligible files, resolves the confirmation
// gates, and drives each file through the mutator. The gate is all or
// nothing: declining aborts every mutation.
func runFileUpdates(configuration RunConfiguration, settings config.Settings, logger *zap.Logger, runMetrics *metrics.RunMetrics, rootNode *types.TreeNode, treeText string) error {
	eligibleFileNodes := previewEligibleFiles(configuration, settings, runMetrics, rootNode)
	if len(eligibleFileNodes) == 0 {
		fmt.Fprintln(configuration.Stdout, noFilesToUpdateMessage)
		return nil
	}

	prompter := bufio.NewReader(configuration.Stdin)
	if !confirm(prompter, configuration.Stdout, proceedQuestion, configuration.AssumeYes) {
		fmt.Fprintln(configuration.Stdout, updatesCancelledMessage)
		return nil
	}

	backupDirectoryPath := ""
	if configuration.BackupEnabled && confirm(prompter, configuration.Stdout, backupQuestion, configuration.AssumeYes) {
		backupDirectoryPath = filepath.Join(
			configuration.RootDirectoryPath,
			config.BackupDirectoryName,
			time.Now().Format(backupTimestampLayout),
		)
		if mkdirError := os.MkdirAll(backupDirectoryPath, 0o755); mkdirError != nil {
			if !configuration.Force {
				logger.Error("creating backup directory failed, no files were modified",
					zap.String("path", backupDirectoryPath), zap.Error(mkdirError))
				for _, fileNode := range eligibleFileNodes {
					runMetrics.Record(types.FileOutcome{
						Path:    fileNode.Path,
						Outcome: types.OutcomeError,
						Reason:  types.ErrorReasonBackup,
					})
				}
				return nil
			}
			logger.Warn("backup directory unavailable, proceeding without backups",
				zap.String("path", backupDirectoryPath), zap.Error(mkdirError))
			runMetrics.Warnings++
			backupDirectoryPath = ""
		}
	}

	mutator := &mutate.Mutator{
		Settings:        settings,
		Logger:          logger,
		BackupDirectory: backupDirectoryPath,
		Force:           configuration.Force,
	}

	var modifiedFilePaths []string
	for _, fileNode := range eligibleFileNodes {
		outcome := mutator.ProcessFile(fileNode, treeText)
		runMetrics.Record(outcome)
		if outcome.Outcome == types.OutcomeModified {
			modifiedFilePaths = append(modifiedFilePaths, outcome.Path)
		}
	}
	runMetrics.BackupBytes = mutator.BackupBytesTotal()

	if configuration.CommitEnabled && len(modifiedFilePaths) > 0 && gitops.IsRepository(configuration.RootDirectoryPath) {
		if confirm(prompter, configuration.Stdout, commitQuestion, configuration.AssumeYes) {
			if commitError := gitops.CommitChanges(configuration.RootDirectoryPath, modifiedFilePaths); commitError != nil {
				logger.Error("committing changes failed", zap.Error(commitError))
				runMetrics.RecordError(gitCommitFailedReason)
			}
		}
	}
	return nil
}

// previewEligibleFiles records skip outcomes for the files the mutator can
// never modify and prints a preview line for each remaining candidate, so
// the confirmation gate only ever promises updates the run can deliver.
func previewEligibleFiles(configuration RunConfiguration, settings config.Settings, runMetrics *metrics.RunMetrics, rootNode *types.TreeNode) []*types.TreeNode {
	var eligibleFileNodes []*types.TreeNode
	for _, fileNode := range tree.Files(rootNode) {
		if skipOutcome, ineligible := mutate.SkipOutcome(settings, fileNode); ineligible {
			runMetrics.Record(skipOutcome)
			continue
		}
		eligibleFileNodes = append(eligibleFileNodes, fileNode)
		fmt.Fprintf(configuration.Stdout, previewLineFormat, fileNode.Path)
	}
	return eligibleFileNodes
}

// buildSettings constructs the immutable settings for the run: compiled-in
// defaults, the configuration-file overlay, then the values the CLI layer
// resolved from flags.
func buildSettings(configuration RunConfiguration) config.Settings {
	settings := configuration.FileConfiguration.Apply(config.DefaultSettings())
	if configuration.OutputFileName != "" {
		settings.OutputFileName = configuration.OutputFileName
	}
	if len(configuration.ExtraFilePatterns) > 0 {
		settings.ExcludedFilePatterns = utils.DeduplicatePatterns(
			append(settings.ExcludedFilePatterns, configuration.ExtraFilePatterns...))
	}
	if len(configuration.ExtraDirectoryPatterns) > 0 {
		settings.ExcludedDirectoryPatterns = utils.DeduplicatePatterns(
			append(settings.ExcludedDirectoryPatterns, configuration.ExtraDirectoryPatterns...))
	}
	return settings
}

// renderMapFile formats the standalone map document.
func renderMapFile(treeText string, outputFileName string) string {
	return "```\n" + mapFileHeaderTitle + "\n\n" + treeText + "\n\nFile: " + outputFileName + "\n```\n"
}

// confirm asks a yes/no question on the prompter. An empty answer or one
// starting with "y" counts as yes. With assumeYes the question is skipped.
func confirm(prompter *bufio.Reader, writer io.Writer, question string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(writer, "%s (Y/n): ", question)
	answer, readError := prompter.ReadString('\n')
	if readError != nil && answer == "" {
		return false
	}
	trimmedAnswer := strings.ToLower(strings.TrimSpace(answer))
	return trimmedAnswer == "" || strings.HasPrefix(trimmedAnswer, "y")
}
