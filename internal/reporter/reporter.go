package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	FileInfo(summary FileSummary)
	Analysis(summary AnalysisSummary)
	StageStarted(stage string)
	StageProgress(update StageProgress)
	StageOutcome(outcome StageOutcome)
	ProcessComplete(summary ProcessSummary)
	Warning(message string)
	Error(err ReporterError)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) FileInfo(FileSummary)           {}
func (NullReporter) Analysis(AnalysisSummary)       {}
func (NullReporter) StageStarted(string)            {}
func (NullReporter) StageProgress(StageProgress)    {}
func (NullReporter) StageOutcome(StageOutcome)      {}
func (NullReporter) ProcessComplete(ProcessSummary) {}
func (NullReporter) Warning(string)                 {}
func (NullReporter) Error(ReporterError)            {}
