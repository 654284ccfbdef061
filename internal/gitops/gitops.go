// Package gitops stages and commits repository map updates using go-git.
package gitops

import (
	"fmt"

	"github.com/go-git/go-git/v5"

	"github.com/repomap/repomap/internal/utils"
)

// DefaultCommitMessage is the message used for repository map commits.
const DefaultCommitMessage = "Update repository map"

// IsRepository reports whether rootDirectoryPath is inside a Git work tree.
func IsRepository(rootDirectoryPath string) bool {
	_, openError := git.PlainOpen(rootDirectoryPath)
	return openError == nil
}

// CommitChanges stages the given absolute file paths and creates a commit
// with DefaultCommitMessage. Paths outside the work tree are rejected by
// go-git and surface as an error.
func CommitChanges(rootDirectoryPath string, modifiedFilePaths []string) error {
	repository, openError := git.PlainOpen(rootDirectoryPath)
	if openError != nil {
		return fmt.Errorf("opening repository at %s: %w", rootDirectoryPath, openError)
	}

	workTree, workTreeError := repository.Worktree()
	if workTreeError != nil {
		return fmt.Errorf("resolving work tree: %w", workTreeError)
	}

	for _, modifiedFilePath := range modifiedFilePaths {
		relativePath := utils.RelativePathOrSelf(modifiedFilePath, rootDirectoryPath)
		if _, addError := workTree.Add(relativePath); addError != nil {
			return fmt.Errorf("staging %s: %w", relativePath, addError)
		}
	}

	if _, commitError := workTree.Commit(DefaultCommitMessage, &git.CommitOptions{}); commitError != nil {
		return fmt.Errorf("committing changes: %w", commitError)
	}
	return nil
}
