package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) FileInfo(summary FileSummary) {
	for _, r := range c.reporters {
		r.FileInfo(summary)
	}
}

func (c *CompositeReporter) Analysis(summary AnalysisSummary) {
	for _, r := range c.reporters {
		r.Analysis(summary)
	}
}

func (c *CompositeReporter) StageStarted(stage string) {
	for _, r := range c.reporters {
		r.StageStarted(stage)
	}
}

func (c *CompositeReporter) StageProgress(update StageProgress) {
	for _, r := range c.reporters {
		r.StageProgress(update)
	}
}

func (c *CompositeReporter) StageOutcome(outcome StageOutcome) {
	for _, r := range c.reporters {
		r.StageOutcome(outcome)
	}
}

func (c *CompositeReporter) ProcessComplete(summary ProcessSummary) {
	for _, r := range c.reporters {
		r.ProcessComplete(summary)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}
