package config_test

import (
	"testing"

	"github.com/repomap/repomap/internal/config"
)

func TestShouldExcludeDirectory(t *testing.T) {
	t.Parallel()

	settings := config.DefaultSettings()

	testCases := []struct {
		name          string
		directoryName string
		expected      bool
	}{
		{name: "dependency cache", directoryName: "node_modules", expected: true},
		{name: "python cache", directoryName: "__pycache__", expected: true},
		{name: "vendor directory", directoryName: "vendor", expected: true},
		{name: "hidden vcs directory", directoryName: ".git", expected: true},
		{name: "hidden editor directory", directoryName: ".idea", expected: true},
		{name: "backup directory", directoryName: config.BackupDirectoryName, expected: true},
		{name: "documentation directory", directoryName: "docs", expected: true},
		{name: "sphinx build directory", directoryName: "_build", expected: true},
		{name: "site directory", directoryName: "site", expected: true},
		{name: "case insensitive", directoryName: "Node_Modules", expected: true},
		{name: "source directory", directoryName: "src", expected: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			actual := settings.ShouldExcludeDirectory(testCase.directoryName)
			if actual != testCase.expected {
				t.Fatalf("ShouldExcludeDirectory(%q) = %v, expected %v",
					testCase.directoryName, actual, testCase.expected)
			}
		})
	}
}

func TestShouldExcludeFile(t *testing.T) {
	t.Parallel()

	settings := config.DefaultSettings()

	testCases := []struct {
		name     string
		fileName string
		expected bool
	}{
		{name: "image file", fileName: "logo.png", expected: true},
		{name: "archive file", fileName: "bundle.tar", expected: true},
		{name: "license variant", fileName: "LICENSE-APACHE", expected: true},
		{name: "readme variant", fileName: "README.md", expected: true},
		{name: "git metadata", fileName: ".gitignore", expected: true},
		{name: "output map file", fileName: config.DefaultOutputFileName, expected: true},
		{name: "configuration file", fileName: config.ConfigFileName, expected: true},
		{name: "source file", fileName: "main.py", expected: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			actual := settings.ShouldExcludeFile(testCase.fileName)
			if actual != testCase.expected {
				t.Fatalf("ShouldExcludeFile(%q) = %v, expected %v",
					testCase.fileName, actual, testCase.expected)
			}
		})
	}
}

func TestShouldExcludeFileHonorsRenamedOutput(t *testing.T) {
	t.Parallel()

	settings := config.DefaultSettings()
	settings.OutputFileName = "structure.md"

	if !settings.ShouldExcludeFile("structure.md") {
		t.Fatal("expected the configured output file to be excluded")
	}
}

func TestCommentStyleForFile(t *testing.T) {
	t.Parallel()

	settings := config.DefaultSettings()

	testCases := []struct {
		name          string
		fileName      string
		expectedKnown bool
		expectedStart string
		expectedEnd   string
	}{
		{name: "python", fileName: "main.py", expectedKnown: true, expectedStart: "#"},
		{name: "go", fileName: "main.go", expectedKnown: true, expectedStart: "//"},
		{name: "markdown block", fileName: "notes.md", expectedKnown: true, expectedStart: "<!--", expectedEnd: "-->"},
		{name: "css block", fileName: "site.css", expectedKnown: true, expectedStart: "/*", expectedEnd: "*/"},
		{name: "uppercase extension", fileName: "SCRIPT.PY", expectedKnown: true, expectedStart: "#"},
		{name: "unknown extension", fileName: "data.xyz", expectedKnown: false},
		{name: "no extension", fileName: "Makefile", expectedKnown: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			style, known := settings.CommentStyleForFile(testCase.fileName)
			if known != testCase.expectedKnown {
				t.Fatalf("CommentStyleForFile(%q) known = %v, expected %v",
					testCase.fileName, known, testCase.expectedKnown)
			}
			if !known {
				return
			}
			if style.Start != testCase.expectedStart {
				t.Fatalf("expected start delimiter %q, got %q", testCase.expectedStart, style.Start)
			}
			if style.End != testCase.expectedEnd {
				t.Fatalf("expected end delimiter %q, got %q", testCase.expectedEnd, style.End)
			}
		})
	}
}
