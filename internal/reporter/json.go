package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs NDJSON events for machine consumers.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{
		writer:             os.Stdout,
		lastProgressBucket: -1,
	}
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) FileInfo(summary FileSummary) {
	r.write(map[string]interface{}{
		"type":       "file_info",
		"input_file": summary.InputFile,
		"resolution": summary.Resolution,
		"codec":      summary.Codec,
		"duration":   summary.Duration,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) Analysis(summary AnalysisSummary) {
	r.write(map[string]interface{}{
		"type":             "analysis",
		"needs_processing": summary.NeedsProcessing,
		"reasons":          summary.Reasons,
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) StageStarted(stage string) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":      "stage_started",
		"stage":     stage,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) StageProgress(update StageProgress) {
	const minInterval = 5 * time.Second

	bucket := int(update.Percent)
	now := time.Now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || update.Percent >= 99.0

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":      "stage_progress",
		"stage":     update.Stage,
		"percent":   update.Percent,
		"speed":     update.Speed,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) StageOutcome(outcome StageOutcome) {
	r.write(map[string]interface{}{
		"type":      "stage_outcome",
		"stage":     outcome.Stage,
		"success":   outcome.Success,
		"message":   outcome.Message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) ProcessComplete(summary ProcessSummary) {
	r.write(map[string]interface{}{
		"type":                "process_complete",
		"input_file":          summary.InputFile,
		"output_path":         summary.OutputPath,
		"original_dimensions": summary.OriginalDimensions,
		"final_dimensions":    summary.FinalDimensions,
		"operations":          summary.Operations,
		"success":             summary.Success,
		"skipped":             summary.Skipped,
		"duration_seconds":    int64(summary.TotalTime.Seconds()),
		"timestamp":           r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":      "error",
		"title":     err.Title,
		"message":   err.Message,
		"context":   err.Context,
		"timestamp": r.timestamp(),
	})
}
