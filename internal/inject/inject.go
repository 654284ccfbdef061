// Package inject builds repository map header comments and inserts or
// replaces them inside source file content.
//
// A header block looks like:
//
//	<start> Repository Map:
//	<middle> <tree line>
//	...
//	<middle> File: <file name>
//	<end>                      (block-comment styles only)
//
// The "Repository Map:" start line and the "File:" middle line are the
// sentinel pair that bounds an existing header, so applying the same header
// twice yields identical content.
package inject

import (
	"strings"

	"github.com/repomap/repomap/internal/config"
)

const (
	headerTitle   = "Repository Map:"
	fileLineLabel = "File: "
)

// BuildHeader renders the header comment block for the given tree text and
// target file name. The returned string ends with a newline.
func BuildHeader(style config.CommentStyle, treeText string, fileName string) string {
	var builder strings.Builder
	builder.WriteString(style.Start + " " + headerTitle + "\n")
	for _, treeLine := range strings.Split(treeText, "\n") {
		builder.WriteString(style.Middle + " " + treeLine + "\n")
	}
	builder.WriteString(style.Middle + " " + fileLineLabel + fileName + "\n")
	if style.End != "" {
		builder.WriteString(style.End + "\n")
	}
	return builder.String()
}

// Apply returns content with the repository map header inserted at the top,
// or replaced in place when a previous header is found anywhere in the file.
// Applying Apply to its own result with the same inputs is a no-op.
func Apply(content string, style config.CommentStyle, treeText string, fileName string) string {
	header := BuildHeader(style, treeText, fileName)
	startOffset, endOffset, found := findHeader(content, style)
	if found {
		return content[:startOffset] + header + content[endOffset:]
	}
	return header + content
}

// findHeader locates an existing header block and returns the byte offsets of
// its start and of the first byte after it. A block is recognized only when
// both sentinel lines are present; a dangling start line is left alone.
func findHeader(content string, style config.CommentStyle) (int, int, bool) {
	startSentinel := style.Start + " " + headerTitle
	fileSentinel := style.Middle + " " + fileLineLabel

	lineStart := 0
	headerStart := -1
	for lineStart <= len(content) {
		lineEnd := strings.IndexByte(content[lineStart:], '\n')
		var nextLineStart int
		var line string
		if lineEnd < 0 {
			line = content[lineStart:]
			nextLineStart = len(content) + 1
		} else {
			line = content[lineStart : lineStart+lineEnd]
			nextLineStart = lineStart + lineEnd + 1
		}

		if headerStart < 0 {
			if strings.TrimRight(line, " \t") == startSentinel {
				headerStart = lineStart
			}
		} else if strings.HasPrefix(line, fileSentinel) {
			headerEnd := nextLineStart
			if style.End != "" {
				headerEnd = consumeEndLine(content, nextLineStart, style.End)
			}
			if headerEnd > len(content) {
				headerEnd = len(content)
			}
			return headerStart, headerEnd, true
		}
		lineStart = nextLineStart
	}
	return 0, 0, false
}

// consumeEndLine advances past the closing delimiter line when it immediately
// follows the File: sentinel line.
func consumeEndLine(content string, offset int, endDelimiter string) int {
	remainder := content[offset:]
	lineEnd := strings.IndexByte(remainder, '\n')
	var line string
	if lineEnd < 0 {
		line = remainder
	} else {
		line = remainder[:lineEnd]
	}
	if strings.TrimSpace(line) == endDelimiter {
		if lineEnd < 0 {
			return len(content)
		}
		return offset + lineEnd + 1
	}
	return offset
}
