// Package mutate applies header changes to files with backup and
// atomic-write guarantees. Binary files are never modified.
package mutate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/repomap/repomap/internal/config"
	"github.com/repomap/repomap/internal/inject"
	"github.com/repomap/repomap/internal/types"
	"github.com/repomap/repomap/internal/utils"
)

const (
	// maxBackupPathLength bounds the full backup path before the hashed
	// fallback name is used instead of the mirrored relative path.
	maxBackupPathLength = 260
	// hashedNameLength is the number of hex characters kept from the digest.
	hashedNameLength = 16

	temporaryFilePattern = ".repomap-*"

	warningBackupOmittedMessage = "proceeding without backup"
)

// Mutator rewrites files with an updated repository map header. When
// BackupDirectory is empty, backups are disabled. Force lets a mutation
// proceed after a failed backup.
type Mutator struct {
	Settings        config.Settings
	Logger          *zap.Logger
	BackupDirectory string
	Force           bool

	backupBytesTotal int64
}

// BackupBytesTotal returns the cumulative size of all backups created so far.
func (mutator *Mutator) BackupBytesTotal() int64 {
	return mutator.backupBytesTotal
}

// SkipOutcome reports whether a file can never receive a header: its
// extension has no comment style or its content is binary. The returned
// outcome carries the skip reason when the second value is true. The check
// is the same one ProcessFile applies, exposed so callers can preview which
// files a run would actually touch.
func SkipOutcome(settings config.Settings, fileNode *types.TreeNode) (types.FileOutcome, bool) {
	if _, styleKnown := settings.CommentStyleForFile(fileNode.Name); !styleKnown {
		return types.FileOutcome{Path: fileNode.Path, Outcome: types.OutcomeSkipped, Reason: types.SkipReasonNoStyle}, true
	}
	if utils.IsFileBinary(fileNode.Path) {
		return types.FileOutcome{Path: fileNode.Path, Outcome: types.OutcomeSkipped, Reason: types.SkipReasonBinary}, true
	}
	return types.FileOutcome{}, false
}

// ProcessFile drives one file through the per-file state machine and returns
// its terminal outcome. Nothing here interrupts the processing of other
// files; all failures are captured in the outcome.
func (mutator *Mutator) ProcessFile(fileNode *types.TreeNode, treeText string) types.FileOutcome {
	if skipOutcome, ineligible := SkipOutcome(mutator.Settings, fileNode); ineligible {
		switch skipOutcome.Reason {
		case types.SkipReasonBinary:
			mutator.logDecision("skipping binary file", fileNode.Path)
		default:
			mutator.logDecision("skipping file without comment style", fileNode.Path)
		}
		return skipOutcome
	}
	style, _ := mutator.Settings.CommentStyleForFile(fileNode.Name)

	originalContent, readError := os.ReadFile(fileNode.Path)
	if readError != nil {
		mutator.logError("reading file failed", fileNode.Path, readError)
		return types.FileOutcome{Path: fileNode.Path, Outcome: types.OutcomeError, Reason: types.ErrorReasonRead}
	}

	updatedContent := inject.Apply(string(originalContent), style, treeText, fileNode.Name)
	if updatedContent == string(originalContent) {
		mutator.logDecision("header already current", fileNode.Path)
		return types.FileOutcome{Path: fileNode.Path, Outcome: types.OutcomeSkipped, Reason: types.SkipReasonUnchanged}
	}

	backupOmitted := false
	if mutator.BackupDirectory != "" {
		backupError := mutator.createBackup(fileNode)
		if backupError != nil {
			if !mutator.Force {
				mutator.logError("backup failed, aborting mutation", fileNode.Path, backupError)
				return types.FileOutcome{Path: fileNode.Path, Outcome: types.OutcomeError, Reason: types.ErrorReasonBackup}
			}
			if mutator.Logger != nil {
				mutator.Logger.Warn(warningBackupOmittedMessage,
					zap.String("path", fileNode.Path), zap.Error(backupError))
			}
			backupOmitted = true
		}
	}

	if writeError := WriteFileAtomic(fileNode.Path, []byte(updatedContent)); writeError != nil {
		mutator.logError("writing file failed", fileNode.Path, writeError)
		return types.FileOutcome{Path: fileNode.Path, Outcome: types.OutcomeError, Reason: types.ErrorReasonWrite}
	}

	mutator.logDecision("updated repository map header", fileNode.Path)
	return types.FileOutcome{
		Path:          fileNode.Path,
		Outcome:       types.OutcomeModified,
		BackupOmitted: backupOmitted,
	}
}

// createBackup copies the file into the backup directory, mirroring its
// relative path. When the mirrored path would exceed maxBackupPathLength the
// backup name collapses to a digest of the relative path plus the original
// extension, which stays unique and within filesystem limits.
func (mutator *Mutator) createBackup(fileNode *types.TreeNode) error {
	backupPath := filepath.Join(mutator.BackupDirectory, filepath.FromSlash(fileNode.RelativePath))
	if len(backupPath) > maxBackupPathLength {
		backupPath = filepath.Join(mutator.BackupDirectory, hashedBackupName(fileNode.RelativePath))
	}

	if mkdirError := os.MkdirAll(filepath.Dir(backupPath), 0o755); mkdirError != nil {
		return fmt.Errorf("creating backup directory for %s: %w", fileNode.Path, mkdirError)
	}

	copiedBytes, copyError := copyFileContents(fileNode.Path, backupPath)
	if copyError != nil {
		return fmt.Errorf("copying %s to %s: %w", fileNode.Path, backupPath, copyError)
	}
	mutator.backupBytesTotal += copiedBytes
	mutator.logDecision("backup created", backupPath)
	return nil
}

func hashedBackupName(relativePath string) string {
	digest := sha256.Sum256([]byte(relativePath))
	return hex.EncodeToString(digest[:])[:hashedNameLength] + filepath.Ext(relativePath)
}

func copyFileContents(sourcePath string, destinationPath string) (int64, error) {
	sourceFile, openError := os.Open(sourcePath)
	if openError != nil {
		return 0, openError
	}
	defer sourceFile.Close()

	destinationFile, createError := os.Create(destinationPath)
	if createError != nil {
		return 0, createError
	}

	copiedBytes, copyError := io.Copy(destinationFile, sourceFile)
	closeError := destinationFile.Close()
	if copyError != nil {
		return copiedBytes, copyError
	}
	return copiedBytes, closeError
}

// WriteFileAtomic writes content to a temporary file in the target directory
// and renames it over targetPath, so a crash mid-write never leaves a mixed
// file. The original file mode is preserved when the target exists.
func WriteFileAtomic(targetPath string, content []byte) error {
	fileMode := os.FileMode(0o644)
	if targetInfo, statError := os.Stat(targetPath); statError == nil {
		fileMode = targetInfo.Mode().Perm()
	}

	temporaryFile, temporaryError := os.CreateTemp(filepath.Dir(targetPath), temporaryFilePattern)
	if temporaryError != nil {
		return temporaryError
	}
	temporaryPath := temporaryFile.Name()

	_, writeError := temporaryFile.Write(content)
	if writeError == nil {
		writeError = temporaryFile.Chmod(fileMode)
	}
	closeError := temporaryFile.Close()
	if writeError == nil {
		writeError = closeError
	}
	if writeError != nil {
		os.Remove(temporaryPath)
		return writeError
	}

	if renameError := os.Rename(temporaryPath, targetPath); renameError != nil {
		os.Remove(temporaryPath)
		return renameError
	}
	return nil
}

func (mutator *Mutator) logDecision(decision string, path string) {
	if mutator.Logger != nil {
		mutator.Logger.Debug(decision, zap.String("path", path))
	}
}

func (mutator *Mutator) logError(message string, path string, failure error) {
	if mutator.Logger != nil {
		mutator.Logger.Error(message, zap.String("path", path), zap.Error(failure))
	}
}
