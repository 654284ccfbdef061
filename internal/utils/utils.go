// Package utils contains general helper functions used across the repomap tool.
package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MatchesAnyPattern reports whether name matches at least one of the provided
// glob patterns. Matching is case-insensitive: both the name and each pattern
// are lowered before filepath.Match is applied. Patterns that fail to compile
// are ignored.
func MatchesAnyPattern(name string, patterns []string) bool {
	loweredName := strings.ToLower(name)
	for _, pattern := range patterns {
		matched, matchError := filepath.Match(strings.ToLower(pattern), loweredName)
		if matchError == nil && matched {
			return true
		}
	}
	return false
}

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathOrSelf calculates the relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relativeError := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relativeError != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// FormatFileSize renders a byte count using B, KB, or MB units.
func FormatFileSize(sizeInBytes int64) string {
	const unit = 1024
	switch {
	case sizeInBytes >= unit*unit:
		return fmt.Sprintf("%.2f MB", float64(sizeInBytes)/(unit*unit))
	case sizeInBytes >= unit:
		return fmt.Sprintf("%.1f KB", float64(sizeInBytes)/unit)
	default:
		return fmt.Sprintf("%d B", sizeInBytes)
	}
}
