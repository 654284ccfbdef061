// Package metrics accumulates per-file outcomes across a run and renders the
// final human-readable summary. A RunMetrics value is owned by the run
// orchestrator and updated sequentially; it needs no locking.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/repomap/repomap/internal/types"
	"github.com/repomap/repomap/internal/utils"
)

// RunMetrics holds the mutable counters of a single run.
type RunMetrics struct {
	StartTime       time.Time
	FilesProcessed  int
	FilesModified   int
	FilesSkipped    int
	Errors          int
	Warnings        int
	BackupBytes     int64
	MapFileSaved    bool
	MapFileLocation string
	MapTokens       int
	TokenizerName   string

	skipReasons  map[string]int
	errorReasons map[string]int
}

// NewRunMetrics constructs metrics with the clock started.
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{
		StartTime:    time.Now(),
		skipReasons:  map[string]int{},
		errorReasons: map[string]int{},
	}
}

// Record registers the terminal outcome of one processed file.
func (runMetrics *RunMetrics) Record(outcome types.FileOutcome) {
	runMetrics.FilesProcessed++
	switch outcome.Outcome {
	case types.OutcomeModified:
		runMetrics.FilesModified++
	case types.OutcomeSkipped:
		runMetrics.FilesSkipped++
		runMetrics.skipReasons[outcome.Reason]++
	case types.OutcomeError:
		runMetrics.Errors++
		runMetrics.errorReasons[outcome.Reason]++
	}
	if outcome.BackupOmitted {
		runMetrics.Warnings++
	}
}

// RecordError registers a failure outside per-file processing, such as a Git
// commit failure.
func (runMetrics *RunMetrics) RecordError(reason string) {
	runMetrics.Errors++
	runMetrics.errorReasons[reason]++
}

// WriteSummary renders the run report. Reason breakdowns are sorted so the
// report is deterministic.
func (runMetrics *RunMetrics) WriteSummary(writer io.Writer) {
	duration := time.Since(runMetrics.StartTime)

	fmt.Fprintln(writer, "\n--- Run Summary ---")
	if runMetrics.MapFileSaved {
		fmt.Fprintln(writer, "Map file saved: Yes")
		fmt.Fprintf(writer, "Map file location: %s\n", runMetrics.MapFileLocation)
	} else {
		fmt.Fprintln(writer, "Map file saved: No")
	}
	if runMetrics.MapTokens > 0 {
		fmt.Fprintf(writer, "Map size: %d tokens (%s)\n", runMetrics.MapTokens, runMetrics.TokenizerName)
	}
	fmt.Fprintf(writer, "Total files processed: %d\n", runMetrics.FilesProcessed)
	fmt.Fprintf(writer, "Files modified: %d\n", runMetrics.FilesModified)
	fmt.Fprintf(writer, "Files skipped: %d%s\n", runMetrics.FilesSkipped, formatReasons(runMetrics.skipReasons))
	fmt.Fprintf(writer, "Errors encountered: %d%s\n", runMetrics.Errors, formatReasons(runMetrics.errorReasons))
	if runMetrics.Warnings > 0 {
		fmt.Fprintf(writer, "Warnings: %d\n", runMetrics.Warnings)
	}
	fmt.Fprintf(writer, "Backup size: %s\n", utils.FormatFileSize(runMetrics.BackupBytes))
	fmt.Fprintf(writer, "Total execution time: %.2f seconds\n", duration.Seconds())
}

func formatReasons(reasons map[string]int) string {
	if len(reasons) == 0 {
		return ""
	}
	names := make([]string, 0, len(reasons))
	for name := range reasons {
		names = append(names, name)
	}
	sort.Strings(names)

	formatted := " ("
	for index, name := range names {
		if index > 0 {
			formatted += ", "
		}
		formatted += fmt.Sprintf("%s: %d", name, reasons[name])
	}
	return formatted + ")"
}
