package mutate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/repomap/repomap/internal/config"
	"github.com/repomap/repomap/internal/mutate"
	"github.com/repomap/repomap/internal/types"
)

// sampleTree is the rendered tree used across the mutator tests.
const sampleTree = "project/\n└── main.py"

// pythonSource is the body written into mutable fixture files.
const pythonSource = "print(\"hello\")\n"

func writeFixtureFile(t *testing.T, root string, relativePath string, content []byte) *types.TreeNode {
	t.Helper()
	absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
	if mkdirError := os.MkdirAll(filepath.Dir(absolutePath), 0o755); mkdirError != nil {
		t.Fatalf("creating fixture directories: %v", mkdirError)
	}
	if writeError := os.WriteFile(absolutePath, content, 0o644); writeError != nil {
		t.Fatalf("writing fixture file: %v", writeError)
	}
	return &types.TreeNode{
		Path:         absolutePath,
		RelativePath: relativePath,
		Name:         filepath.Base(absolutePath),
		Type:         types.NodeTypeFile,
	}
}

func newMutator(backupDirectory string, force bool) *mutate.Mutator {
	return &mutate.Mutator{
		Settings:        config.DefaultSettings(),
		BackupDirectory: backupDirectory,
		Force:           force,
	}
}

func TestProcessFileModifiesTextFile(t *testing.T) {
	t.Parallel()

	rootDirectory := t.TempDir()
	fileNode := writeFixtureFile(t, rootDirectory, "main.py", []byte(pythonSource))

	outcome := newMutator("", false).ProcessFile(fileNode, sampleTree)
	if outcome.Outcome != types.OutcomeModified {
		t.Fatalf("expected modified outcome, got %+v", outcome)
	}

	updatedContent, readError := os.ReadFile(fileNode.Path)
	if readError != nil {
		t.Fatalf("reading updated file: %v", readError)
	}
	if !strings.HasPrefix(string(updatedContent), "# Repository Map:\n") {
		t.Fatalf("expected injected header, got:\n%s", updatedContent)
	}
	if !strings.HasSuffix(string(updatedContent), pythonSource) {
		t.Fatalf("expected original body preserved, got:\n%s", updatedContent)
	}
}

func TestProcessFileSecondRunIsUnchanged(t *testing.T) {
	t.Parallel()

	rootDirectory := t.TempDir()
	fileNode := writeFixtureFile(t, rootDirectory, "main.py", []byte(pythonSource))
	mutator := newMutator("", false)

	if outcome := mutator.ProcessFile(fileNode, sampleTree); outcome.Outcome != types.OutcomeModified {
		t.Fatalf("expected first run to modify, got %+v", outcome)
	}
	afterFirstRun, readError := os.ReadFile(fileNode.Path)
	if readError != nil {
		t.Fatalf("reading file after first run: %v", readError)
	}

	if outcome := mutator.ProcessFile(fileNode, sampleTree); outcome.Outcome != types.OutcomeSkipped || outcome.Reason != types.SkipReasonUnchanged {
		t.Fatalf("expected unchanged skip on second run, got %+v", outcome)
	}
	afterSecondRun, readError := os.ReadFile(fileNode.Path)
	if readError != nil {
		t.Fatalf("reading file after second run: %v", readError)
	}
	if string(afterFirstRun) != string(afterSecondRun) {
		t.Fatal("expected byte-identical content after a repeated run")
	}
}

func TestProcessFileSkipsBinaryUntouched(t *testing.T) {
	t.Parallel()

	rootDirectory := t.TempDir()
	binaryContent := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}
	fileNode := writeFixtureFile(t, rootDirectory, "blob.py", binaryContent)

	outcome := newMutator("", false).ProcessFile(fileNode, sampleTree)
	if outcome.Outcome != types.OutcomeSkipped || outcome.Reason != types.SkipReasonBinary {
		t.Fatalf("expected binary skip, got %+v", outcome)
	}

	contentAfterRun, readError := os.ReadFile(fileNode.Path)
	if readError != nil {
		t.Fatalf("reading binary file: %v", readError)
	}
	if string(contentAfterRun) != string(binaryContent) {
		t.Fatal("expected binary file content to be byte-identical after the run")
	}
}

func TestProcessFileSkipsUnknownStyle(t *testing.T) {
	t.Parallel()

	rootDirectory := t.TempDir()
	fileNode := writeFixtureFile(t, rootDirectory, "data.xyz", []byte("payload\n"))

	outcome := newMutator("", false).ProcessFile(fileNode, sampleTree)
	if outcome.Outcome != types.OutcomeSkipped || outcome.Reason != types.SkipReasonNoStyle {
		t.Fatalf("expected no-style skip, got %+v", outcome)
	}
}

func TestSkipOutcomeClassifiesIneligibleFiles(t *testing.T) {
	t.Parallel()

	rootDirectory := t.TempDir()
	settings := config.DefaultSettings()

	testCases := []struct {
		name            string
		relativePath    string
		content         []byte
		expectedSkip    bool
		expectedReason  string
	}{
		{name: "text file with style", relativePath: "main.py", content: []byte(pythonSource), expectedSkip: false},
		{name: "binary content", relativePath: "blob.py", content: []byte{0x89, 'P', 'N', 'G', 0x00}, expectedSkip: true, expectedReason: types.SkipReasonBinary},
		{name: "unknown extension", relativePath: "data.json", content: []byte("{}\n"), expectedSkip: true, expectedReason: types.SkipReasonNoStyle},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			fileNode := writeFixtureFile(t, rootDirectory, testCase.relativePath, testCase.content)
			outcome, skipped := mutate.SkipOutcome(settings, fileNode)
			if skipped != testCase.expectedSkip {
				t.Fatalf("SkipOutcome(%q) skipped = %v, expected %v", testCase.relativePath, skipped, testCase.expectedSkip)
			}
			if skipped && outcome.Reason != testCase.expectedReason {
				t.Fatalf("expected skip reason %q, got %q", testCase.expectedReason, outcome.Reason)
			}
		})
	}
}

func TestBackupRoundTrip(t *testing.T) {
	t.Parallel()

	rootDirectory := t.TempDir()
	backupDirectory := filepath.Join(rootDirectory, ".repomap_backup", "20250101_000000")
	if mkdirError := os.MkdirAll(backupDirectory, 0o755); mkdirError != nil {
		t.Fatalf("creating backup directory: %v", mkdirError)
	}
	fileNode := writeFixtureFile(t, rootDirectory, "pkg/main.py", []byte(pythonSource))
	mutator := newMutator(backupDirectory, false)

	outcome := mutator.ProcessFile(fileNode, sampleTree)
	if outcome.Outcome != types.OutcomeModified {
		t.Fatalf("expected modified outcome, got %+v", outcome)
	}

	backupContent, readError := os.ReadFile(filepath.Join(backupDirectory, "pkg", "main.py"))
	if readError != nil {
		t.Fatalf("reading backup: %v", readError)
	}
	if string(backupContent) != pythonSource {
		t.Fatalf("expected backup to hold pre-mutation content, got:\n%s", backupContent)
	}
	if mutator.BackupBytesTotal() != int64(len(pythonSource)) {
		t.Fatalf("expected %d backup bytes, got %d", len(pythonSource), mutator.BackupBytesTotal())
	}
}

func TestBackupFallsBackToHashedNameForLongPaths(t *testing.T) {
	t.Parallel()

	rootDirectory := t.TempDir()
	backupDirectory := filepath.Join(rootDirectory, ".repomap_backup", "20250101_000000")
	if mkdirError := os.MkdirAll(backupDirectory, 0o755); mkdirError != nil {
		t.Fatalf("creating backup directory: %v", mkdirError)
	}

	deepRelativePath := strings.Repeat("nested/", 40) + "main.py"
	fileNode := writeFixtureFile(t, rootDirectory, deepRelativePath, []byte(pythonSource))
	mutator := newMutator(backupDirectory, false)

	outcome := mutator.ProcessFile(fileNode, sampleTree)
	if outcome.Outcome != types.OutcomeModified {
		t.Fatalf("expected modified outcome, got %+v", outcome)
	}

	backupEntries, readDirectoryError := os.ReadDir(backupDirectory)
	if readDirectoryError != nil {
		t.Fatalf("reading backup directory: %v", readDirectoryError)
	}
	if len(backupEntries) != 1 {
		t.Fatalf("expected a single hashed backup entry, got %d", len(backupEntries))
	}
	hashedEntry := backupEntries[0]
	if hashedEntry.IsDir() {
		t.Fatalf("expected a flat hashed backup file, got directory %s", hashedEntry.Name())
	}
	if filepath.Ext(hashedEntry.Name()) != ".py" {
		t.Fatalf("expected the hashed backup to keep the original extension, got %s", hashedEntry.Name())
	}

	backupContent, readError := os.ReadFile(filepath.Join(backupDirectory, hashedEntry.Name()))
	if readError != nil {
		t.Fatalf("reading hashed backup: %v", readError)
	}
	if string(backupContent) != pythonSource {
		t.Fatalf("expected hashed backup to hold pre-mutation content, got:\n%s", backupContent)
	}
}

func TestBackupFailureAbortsWithoutForce(t *testing.T) {
	t.Parallel()

	rootDirectory := t.TempDir()
	blockerPath := filepath.Join(rootDirectory, "blocker")
	if writeError := os.WriteFile(blockerPath, []byte("not a directory"), 0o644); writeError != nil {
		t.Fatalf("writing blocker file: %v", writeError)
	}
	unusableBackupDirectory := filepath.Join(blockerPath, "backups")

	fileNode := writeFixtureFile(t, rootDirectory, "pkg/main.py", []byte(pythonSource))
	outcome := newMutator(unusableBackupDirectory, false).ProcessFile(fileNode, sampleTree)

	if outcome.Outcome != types.OutcomeError || outcome.Reason != types.ErrorReasonBackup {
		t.Fatalf("expected backup error outcome, got %+v", outcome)
	}
	contentAfterRun, readError := os.ReadFile(fileNode.Path)
	if readError != nil {
		t.Fatalf("reading file: %v", readError)
	}
	if string(contentAfterRun) != pythonSource {
		t.Fatal("expected the file to stay untouched after an aborted mutation")
	}
}

func TestBackupFailureProceedsWithForce(t *testing.T) {
	t.Parallel()

	rootDirectory := t.TempDir()
	blockerPath := filepath.Join(rootDirectory, "blocker")
	if writeError := os.WriteFile(blockerPath, []byte("not a directory"), 0o644); writeError != nil {
		t.Fatalf("writing blocker file: %v", writeError)
	}
	unusableBackupDirectory := filepath.Join(blockerPath, "backups")

	fileNode := writeFixtureFile(t, rootDirectory, "pkg/main.py", []byte(pythonSource))
	outcome := newMutator(unusableBackupDirectory, true).ProcessFile(fileNode, sampleTree)

	if outcome.Outcome != types.OutcomeModified {
		t.Fatalf("expected forced mutation to proceed, got %+v", outcome)
	}
	if !outcome.BackupOmitted {
		t.Fatal("expected the outcome to record the omitted backup")
	}
}

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	t.Parallel()

	rootDirectory := t.TempDir()
	targetPath := filepath.Join(rootDirectory, "target.txt")
	if writeError := os.WriteFile(targetPath, []byte("old"), 0o600); writeError != nil {
		t.Fatalf("writing target: %v", writeError)
	}

	if writeError := mutate.WriteFileAtomic(targetPath, []byte("new")); writeError != nil {
		t.Fatalf("atomic write: %v", writeError)
	}

	content, readError := os.ReadFile(targetPath)
	if readError != nil {
		t.Fatalf("reading target: %v", readError)
	}
	if string(content) != "new" {
		t.Fatalf("expected replaced content, got %q", content)
	}

	targetInfo, statError := os.Stat(targetPath)
	if statError != nil {
		t.Fatalf("stat target: %v", statError)
	}
	if targetInfo.Mode().Perm() != 0o600 {
		t.Fatalf("expected preserved mode 0600, got %v", targetInfo.Mode().Perm())
	}

	leftoverEntries, readDirectoryError := os.ReadDir(rootDirectory)
	if readDirectoryError != nil {
		t.Fatalf("reading directory: %v", readDirectoryError)
	}
	if len(leftoverEntries) != 1 {
		t.Fatalf("expected no leftover temporary files, found %d entries", len(leftoverEntries))
	}
}
