// Package types defines every cross-package data structure used by the repomap CLI.
package types

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	// OutcomeModified marks a file whose header was written.
	OutcomeModified = "modified"
	// OutcomeSkipped marks a file left untouched for a recorded reason.
	OutcomeSkipped = "skipped"
	// OutcomeError marks a file whose mutation failed.
	OutcomeError = "error"

	// SkipReasonBinary records a file refused because its content is binary.
	SkipReasonBinary = "binary content"
	// SkipReasonNoStyle records a file whose extension has no comment style.
	SkipReasonNoStyle = "no comment style"
	// SkipReasonUnchanged records a file whose header was already current.
	SkipReasonUnchanged = "already current"

	// ErrorReasonRead records a failure to read the original file.
	ErrorReasonRead = "read failed"
	// ErrorReasonBackup records a failure to create the pre-mutation backup.
	ErrorReasonBackup = "backup failed"
	// ErrorReasonWrite records a failure to write the updated file.
	ErrorReasonWrite = "write failed"
)

// TreeNode represents a single node of the rendered directory tree.
// Nodes are built during traversal and discarded after rendering.
type TreeNode struct {
	Path         string
	RelativePath string
	Name         string
	Type         string
	Depth        int
	Children     []*TreeNode
}

// FileOutcome is the terminal classification of one processed file.
// Every file handled during an update run receives exactly one outcome.
// BackupOmitted is set when force mode let a mutation proceed after a
// failed backup; the summary reports it as a warning.
type FileOutcome struct {
	Path          string
	Outcome       string
	Reason        string
	BackupOmitted bool
}
