package gitops_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"

	"github.com/repomap/repomap/internal/gitops"
)

// committerName identifies the author configured for test commits.
const committerName = "repomap test"

// committerEmail is the author email configured for test commits.
const committerEmail = "repomap@example.invalid"

func initRepository(t *testing.T, rootDirectory string) *git.Repository {
	t.Helper()
	repository, initError := git.PlainInit(rootDirectory, false)
	if initError != nil {
		t.Fatalf("initializing repository: %v", initError)
	}
	repositoryConfiguration, configError := repository.Config()
	if configError != nil {
		t.Fatalf("reading repository configuration: %v", configError)
	}
	repositoryConfiguration.User.Name = committerName
	repositoryConfiguration.User.Email = committerEmail
	if setError := repository.SetConfig(repositoryConfiguration); setError != nil {
		t.Fatalf("writing repository configuration: %v", setError)
	}
	return repository
}

func TestIsRepository(t *testing.T) {
	t.Parallel()

	plainDirectory := t.TempDir()
	if gitops.IsRepository(plainDirectory) {
		t.Fatal("expected a plain directory not to be a repository")
	}

	repositoryDirectory := t.TempDir()
	initRepository(t, repositoryDirectory)
	if !gitops.IsRepository(repositoryDirectory) {
		t.Fatal("expected an initialized directory to be a repository")
	}
}

func TestCommitChangesCreatesCommit(t *testing.T) {
	t.Parallel()

	rootDirectory := t.TempDir()
	repository := initRepository(t, rootDirectory)

	filePath := filepath.Join(rootDirectory, "main.py")
	if writeError := os.WriteFile(filePath, []byte("print(\"hello\")\n"), 0o644); writeError != nil {
		t.Fatalf("writing file: %v", writeError)
	}

	if commitError := gitops.CommitChanges(rootDirectory, []string{filePath}); commitError != nil {
		t.Fatalf("committing changes: %v", commitError)
	}

	headReference, headError := repository.Head()
	if headError != nil {
		t.Fatalf("resolving HEAD: %v", headError)
	}
	headCommit, commitLookupError := repository.CommitObject(headReference.Hash())
	if commitLookupError != nil {
		t.Fatalf("loading HEAD commit: %v", commitLookupError)
	}
	if headCommit.Message != gitops.DefaultCommitMessage {
		t.Fatalf("expected commit message %q, got %q", gitops.DefaultCommitMessage, headCommit.Message)
	}
}

func TestCommitChangesFailsOutsideRepository(t *testing.T) {
	t.Parallel()

	if commitError := gitops.CommitChanges(t.TempDir(), nil); commitError == nil {
		t.Fatal("expected an error outside a repository")
	}
}
