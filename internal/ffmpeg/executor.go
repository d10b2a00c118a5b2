package ffmpeg

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/previewkit/vidnorm/internal/errors"
	"github.com/previewkit/vidnorm/internal/util"
)

// Progress represents transform progress information parsed from
// ffmpeg's stderr stream.
type Progress struct {
	Percent     float32
	Speed       float32
	ElapsedSecs float64
}

// ProgressCallback is called with progress updates during a transform.
type ProgressCallback func(Progress)

// Result contains the outcome of one external command run.
type Result struct {
	Success bool
	Err     error
	Stderr  string
}

// Runner executes external media commands. The interface exists so
// stage logic can be tested without ffmpeg installed.
type Runner interface {
	// Run executes bin with args, bounded by timeout. duration is the
	// input's playback length in seconds, used only for percent
	// estimation; zero disables it.
	Run(ctx context.Context, bin string, args []string, timeout time.Duration, duration float64, callback ProgressCallback) Result
}

// NewRunner returns the default exec-backed runner.
func NewRunner() Runner {
	return execRunner{}
}

type execRunner struct{}

var timeRegex = regexp.MustCompile(`time=(\d{2}:\d{2}:\d{2}\.?\d*)`)

func (execRunner) Run(ctx context.Context, bin string, args []string, timeout time.Duration, duration float64, callback ProgressCallback) Result {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(tctx, bin, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{Err: errors.NewCommandStartError(bin, err)}
	}

	if err := cmd.Start(); err != nil {
		return Result{Err: errors.NewCommandStartError(bin, err)}
	}

	var stderrBuilder strings.Builder
	parseProgress(stderr, &stderrBuilder, duration, callback)

	err = cmd.Wait()
	stderrStr := stderrBuilder.String()

	if err != nil {
		if tctx.Err() != nil {
			return Result{
				Err:    errors.NewTimeoutError(bin, tctx.Err()),
				Stderr: stderrStr,
			}
		}
		return Result{
			Err:    errors.WrapExecError(bin, err, tailOf(stderrStr)),
			Stderr: stderrStr,
		}
	}

	return Result{Success: true, Stderr: stderrStr}
}

// tailOf trims captured stderr to its last lines for error messages.
func tailOf(s string) string {
	const maxLen = 512
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// parseProgress reads ffmpeg stderr and emits progress updates.
// Progress lines are terminated by \r, normal output by \n.
func parseProgress(stderr io.Reader, stderrBuilder *strings.Builder, duration float64, callback ProgressCallback) {
	reader := bufio.NewReader(stderr)
	var lineBuf strings.Builder

	for {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}

		stderrBuilder.WriteByte(b)

		if b == '\r' || b == '\n' {
			line := lineBuf.String()
			lineBuf.Reset()

			if callback != nil && strings.Contains(line, "time=") {
				if progress := parseProgressLine(line, duration); progress != nil {
					callback(*progress)
				}
			}
		} else {
			lineBuf.WriteByte(b)
		}
	}
}

// parseProgressLine extracts elapsed time, speed, and percent from an
// ffmpeg progress line.
func parseProgressLine(line string, duration float64) *Progress {
	var elapsedSecs float64
	if matches := timeRegex.FindStringSubmatch(line); len(matches) >= 2 {
		if secs, ok := util.ParseFFmpegTime(matches[1]); ok {
			elapsedSecs = secs
		}
	}

	var speed float32
	if idx := strings.Index(line, "speed="); idx >= 0 {
		remaining := strings.TrimLeft(line[idx+6:], " ")
		if spaceIdx := strings.IndexAny(remaining, " \t\r\n"); spaceIdx > 0 {
			remaining = remaining[:spaceIdx]
		}
		remaining = strings.TrimSuffix(remaining, "x")
		if s, err := strconv.ParseFloat(remaining, 32); err == nil {
			speed = float32(s)
		}
	}

	var percent float32
	if duration > 0 {
		percent = float32((elapsedSecs / duration) * 100)
		if percent > 100 {
			percent = 100
		}
	}

	return &Progress{
		Percent:     percent,
		Speed:       speed,
		ElapsedSecs: elapsedSecs,
	}
}
