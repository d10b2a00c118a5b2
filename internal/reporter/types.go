// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// FileSummary describes the source file before any work starts.
type FileSummary struct {
	InputFile  string
	Resolution string
	Codec      string
	Duration   string
}

// AnalysisSummary contains the analyzer's verdict.
type AnalysisSummary struct {
	NeedsProcessing bool
	Reasons         []string
}

// StageProgress represents a progress update from a running stage.
type StageProgress struct {
	Stage   string
	Percent float64
	Speed   float64
}

// StageOutcome contains the terminal state of one stage.
type StageOutcome struct {
	Stage   string
	Success bool
	Message string
}

// ProcessSummary contains the final pipeline result.
type ProcessSummary struct {
	InputFile          string
	OutputPath         string
	OriginalDimensions string
	FinalDimensions    string
	Operations         map[string]bool
	Success            bool
	Skipped            bool
	TotalTime          time.Duration
}

// ReporterError contains error information.
type ReporterError struct {
	Title   string
	Message string
	Context string
}
