package reporter

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/previewkit/vidnorm/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	progress   *progressbar.ProgressBar
	maxPercent float64
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	bold       *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return &TerminalReporter{
		cyan:   color.New(color.FgCyan, color.Bold),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow, color.Bold),
		red:    color.New(color.FgRed, color.Bold),
		bold:   color.New(color.Bold),
	}
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) FileInfo(summary FileSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("VIDEO")
	r.printLabel(12, "File:", summary.InputFile)
	r.printLabel(12, "Resolution:", summary.Resolution)
	if summary.Codec != "" {
		r.printLabel(12, "Codec:", summary.Codec)
	}
	if summary.Duration != "" {
		r.printLabel(12, "Duration:", summary.Duration)
	}
}

func (r *TerminalReporter) Analysis(summary AnalysisSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("ANALYSIS")
	if !summary.NeedsProcessing {
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint("already normalized, nothing to do"))
		return
	}
	for _, reason := range summary.Reasons {
		fmt.Printf("  - %s\n", reason)
	}
}

func (r *TerminalReporter) StageStarted(stage string) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println(strings.ToUpper(strings.ReplaceAll(stage, "_", " ")))

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Working [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := update.Percent
	if clamped > 100 {
		clamped = 100
	}
	if clamped < 0 {
		clamped = 0
	}

	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	if update.Speed > 0 {
		r.progress.Describe(fmt.Sprintf("speed %.1fx", update.Speed))
	}
}

func (r *TerminalReporter) StageOutcome(outcome StageOutcome) {
	r.finishProgress()

	var status string
	if outcome.Success {
		status = r.green.Sprint("✓")
	} else {
		status = r.red.Sprint("✗")
	}
	if outcome.Message != "" {
		fmt.Printf("  %s %s (%s)\n", status, outcome.Stage, outcome.Message)
	} else {
		fmt.Printf("  %s %s\n", status, outcome.Stage)
	}
}

func (r *TerminalReporter) ProcessComplete(summary ProcessSummary) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("RESULTS")

	if summary.Skipped {
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint("skipped, file already matched all targets"))
		r.printLabel(12, "Output:", summary.OutputPath)
		return
	}

	r.printLabel(12, "Dimensions:", fmt.Sprintf("%s -> %s", summary.OriginalDimensions, summary.FinalDimensions))

	stages := make([]string, 0, len(summary.Operations))
	for stage := range summary.Operations {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	for _, stage := range stages {
		var status string
		if summary.Operations[stage] {
			status = r.green.Sprint("done")
		} else {
			status = r.red.Sprint("failed")
		}
		fmt.Printf("  - %s: %s\n", stage, status)
	}
	fmt.Printf("  %s %s\n", r.bold.Sprint("Time:"), util.FormatDuration(summary.TotalTime.Seconds()))
	fmt.Printf("  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputPath))
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
}
