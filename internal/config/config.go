// Package config holds the immutable run configuration: the exclusion rules
// and the comment-style table. A Settings value is constructed once at startup,
// optionally overlaid with a configuration file, and never mutated afterwards.
package config

import (
	"path/filepath"
	"strings"

	"github.com/repomap/repomap/internal/utils"
)

const (
	// DefaultOutputFileName is the map file written at the root directory.
	DefaultOutputFileName = "repo_map.md"
	// BackupDirectoryName is the directory that holds pre-mutation backups.
	BackupDirectoryName = ".repomap_backup"
	// ConfigFileName is the optional per-project configuration file.
	ConfigFileName = ".repomap.yaml"
)

// CommentStyle describes how a header comment is delimited for one file type.
// Start opens the block, Middle prefixes every header line, and End closes the
// block when non-empty (block-comment styles).
type CommentStyle struct {
	Start  string
	Middle string
	End    string
}

// Settings is the immutable configuration of a single run.
type Settings struct {
	ExcludedFilePatterns      []string
	ExcludedDirectoryPatterns []string
	CommentStyles             map[string]CommentStyle
	OutputFileName            string
}

// defaultExcludedFilePatterns lists file names and glob patterns that never
// appear in the tree and never receive a header.
var defaultExcludedFilePatterns = []string{
	".gitignore", ".gitattributes", ".hgignore", ".svnignore",
	"requirements.txt", "*LICENSE*", "setup.py", "setup.cfg", "pyproject.toml",
	"Pipfile", "Pipfile.lock", "*README*",
	"package.json", "package-lock.json", "yarn.lock", "composer.json", "composer.lock",
	"go.mod", "go.sum",
	".editorconfig", ".eslintrc", ".prettierrc", ".stylelintrc",
	"*.pyc", "*.pyo", "*.pyd", "*.so", "*.dll", "*.exe", "*.obj", "*.o",
	"*.a", "*.lib", "*.egg", "*.whl",
	"*.log", "*.sql", "*.sqlite", "*.db",
	".DS_Store", "Thumbs.db", "desktop.ini",
	"*~", "*.swp", "*.swo", "*.tmp", "temp_*",
	"__init__.py", "MANIFEST.in",
	"*.iml", "*.ipr", "*.iws",
	"*.bak", "*.cache", "*.pid",
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.svg", "*.tiff", "*.ico",
	"*.mp4", "*.mkv", "*.avi", "*.mov", "*.wmv", "*.flv", "*.webm", "*.m4v",
	"*.mp3", "*.wav", "*.flac", "*.aac", "*.ogg", "*.wma", "*.m4a",
	"*.pdf", "*.doc", "*.docx", "*.ppt", "*.pptx", "*.xls", "*.xlsx", "*.odt", "*.ods",
	"*.zip", "*.tar", "*.gz", "*.rar", "*.7z", "*.bz2", "*.xz",
	"*.psd", "*.ai", "*.eps", "*.indd", "*.fla", "*.swf",
	ConfigFileName,
}

// defaultExcludedDirectoryPatterns lists directory names whose entire subtree
// is skipped. Hidden directories are excluded by an implicit rule in addition
// to this set.
var defaultExcludedDirectoryPatterns = []string{
	"CVS",
	"venv", "env", "virtualenv",
	"anaconda", "miniconda",
	"build", "dist", "target", "out",
	"__pycache__",
	"node_modules", "bower_components", "jspm_packages",
	"vendor", "packages",
	"docs", "_build", "site", "sphinx-docs",
	"htmlcov", "logs", "__logs__",
	"tmp", "temp",
	"$RECYCLE.BIN", "System Volume Information",
	"media", "public", "static", "assets",
}

// defaultCommentStyles maps a file extension (without dot) to its delimiters.
var defaultCommentStyles = map[string]CommentStyle{
	"py":     {Start: "#", Middle: "#"},
	"rb":     {Start: "#", Middle: "#"},
	"pl":     {Start: "#", Middle: "#"},
	"sh":     {Start: "#", Middle: "#"},
	"bash":   {Start: "#", Middle: "#"},
	"zsh":    {Start: "#", Middle: "#"},
	"yaml":   {Start: "#", Middle: "#"},
	"yml":    {Start: "#", Middle: "#"},
	"toml":   {Start: "#", Middle: "#"},
	"conf":   {Start: "#", Middle: "#"},
	"js":     {Start: "//", Middle: "//"},
	"ts":     {Start: "//", Middle: "//"},
	"java":   {Start: "//", Middle: "//"},
	"c":      {Start: "//", Middle: "//"},
	"h":      {Start: "//", Middle: "//"},
	"cpp":    {Start: "//", Middle: "//"},
	"cs":     {Start: "//", Middle: "//"},
	"go":     {Start: "//", Middle: "//"},
	"rs":     {Start: "//", Middle: "//"},
	"swift":  {Start: "//", Middle: "//"},
	"kt":     {Start: "//", Middle: "//"},
	"scala":  {Start: "//", Middle: "//"},
	"ini":    {Start: ";", Middle: ";"},
	"cfg":    {Start: ";", Middle: ";"},
	"sql":    {Start: "--", Middle: "--"},
	"lua":    {Start: "--", Middle: "--"},
	"hs":     {Start: "--", Middle: "--"},
	"md":     {Start: "<!--", Middle: " *", End: "-->"},
	"html":   {Start: "<!--", Middle: " *", End: "-->"},
	"htm":    {Start: "<!--", Middle: " *", End: "-->"},
	"xml":    {Start: "<!--", Middle: " *", End: "-->"},
	"css":    {Start: "/*", Middle: " *", End: "*/"},
	"scss":   {Start: "/*", Middle: " *", End: "*/"},
	"less":   {Start: "/*", Middle: " *", End: "*/"},
	"php":    {Start: "/*", Middle: " *", End: "*/"},
	"jsx":    {Start: "/*", Middle: " *", End: "*/"},
	"tsx":    {Start: "/*", Middle: " *", End: "*/"},
}

// DefaultSettings constructs the compiled-in configuration.
func DefaultSettings() Settings {
	styles := make(map[string]CommentStyle, len(defaultCommentStyles))
	for extension, style := range defaultCommentStyles {
		styles[extension] = style
	}
	return Settings{
		ExcludedFilePatterns:      append([]string{}, defaultExcludedFilePatterns...),
		ExcludedDirectoryPatterns: append([]string{}, defaultExcludedDirectoryPatterns...),
		CommentStyles:             styles,
		OutputFileName:            DefaultOutputFileName,
	}
}

// ShouldExcludeDirectory reports whether a directory with the given name is
// skipped entirely. Hidden directories (leading dot) are always excluded,
// which covers version-control directories such as .git and the tool's own
// backup directory.
func (settings Settings) ShouldExcludeDirectory(directoryName string) bool {
	if strings.HasPrefix(directoryName, ".") {
		return true
	}
	return utils.MatchesAnyPattern(directoryName, settings.ExcludedDirectoryPatterns)
}

// ShouldExcludeFile reports whether a file with the given name is excluded
// from the tree and from header injection. The output map file itself is
// always excluded.
func (settings Settings) ShouldExcludeFile(fileName string) bool {
	if fileName == settings.OutputFileName {
		return true
	}
	return utils.MatchesAnyPattern(fileName, settings.ExcludedFilePatterns)
}

// CommentStyleForFile returns the comment style for the file's extension.
// The second return value is false when the extension is unknown; such files
// are skipped rather than injected with a guessed style.
func (settings Settings) CommentStyleForFile(fileName string) (CommentStyle, bool) {
	extension := strings.TrimPrefix(filepath.Ext(fileName), ".")
	style, known := settings.CommentStyles[strings.ToLower(extension)]
	return style, known
}
