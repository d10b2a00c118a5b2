// Package ffprobe provides media dimension probing with an ffmpeg fallback.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/previewkit/vidnorm/internal/errors"
	"github.com/previewkit/vidnorm/internal/logging"
)

// MediaInfo contains the probed properties of a video file.
// Derived data, never mutated; recompute after any transform.
type MediaInfo struct {
	Width       int
	Height      int
	AspectRatio float64
	Codec       string
	Duration    string
}

// StreamDisposition contains stream disposition flags.
type StreamDisposition struct {
	Default         int `json:"default"`
	Dub             int `json:"dub"`
	Original        int `json:"original"`
	Comment         int `json:"comment"`
	Lyrics          int `json:"lyrics"`
	Karaoke         int `json:"karaoke"`
	Forced          int `json:"forced"`
	HearingImpaired int `json:"hearing_impaired"`
	VisualImpaired  int `json:"visual_impaired"`
	CleanEffects    int `json:"clean_effects"`
	AttachedPic     int `json:"attached_pic"`
	TimedThumbnails int `json:"timed_thumbnails"`
}

// probeOutput represents the JSON output from ffprobe.
type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType   string            `json:"codec_type"`
	CodecName   string            `json:"codec_name"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Duration    string            `json:"duration"`
	Disposition StreamDisposition `json:"disposition"`
}

// diagnosticRegex matches the WIDTHxHEIGHT token in ffmpeg's stream
// description lines, e.g. "Stream #0:0: Video: h264 ... 1920x1080".
var diagnosticRegex = regexp.MustCompile(`Stream.*Video.*?(\d{2,5})x(\d{2,5})`)

// Prober extracts media information from video files.
type Prober struct {
	FFprobePath string
	FFmpegPath  string
	Timeout     time.Duration
	Logger      *logging.Logger
}

// New creates a Prober bound to the given binaries and probe timeout.
func New(ffprobePath, ffmpegPath string, timeout time.Duration, logger *logging.Logger) *Prober {
	return &Prober{
		FFprobePath: ffprobePath,
		FFmpegPath:  ffmpegPath,
		Timeout:     timeout,
		Logger:      logger,
	}
}

// Probe returns the dimensions of the first video stream, trying
// ffprobe's JSON output first and falling back to parsing ffmpeg's
// diagnostic output. Each attempt is bounded by the probe timeout; a
// timed-out or failed attempt is not fatal unless both methods exhaust.
func (p *Prober) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	info, err := p.probeWithFFprobe(ctx, path)
	if err == nil {
		return info, nil
	}
	p.Logger.Debug("ffprobe failed for %s, trying ffmpeg fallback: %v", path, err)

	info, err = p.probeWithFFmpeg(ctx, path)
	if err == nil {
		return info, nil
	}
	p.Logger.Error("failed to get video dimensions for %s: %v", path, err)

	return nil, errors.NewProbeError(path)
}

// HasEmbeddedThumbnail reports whether any video stream carries the
// attached-picture disposition flag.
func (p *Prober) HasEmbeddedThumbnail(ctx context.Context, path string) (bool, error) {
	tctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	cmd := exec.CommandContext(tctx, p.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		if tctx.Err() != nil {
			return false, errors.NewTimeoutError("thumbnail probe", tctx.Err())
		}
		return false, errors.WrapExecError(p.FFprobePath, err, "")
	}

	probe, err := parseProbeOutput(output)
	if err != nil {
		return false, err
	}
	return hasAttachedPicture(probe), nil
}

// probeWithFFprobe runs the structured JSON probe on the first video stream.
func (p *Prober) probeWithFFprobe(ctx context.Context, path string) (*MediaInfo, error) {
	tctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	cmd := exec.CommandContext(tctx, p.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "v:0",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		if tctx.Err() != nil {
			return nil, errors.NewTimeoutError("ffprobe", tctx.Err())
		}
		return nil, errors.WrapExecError(p.FFprobePath, err, "")
	}

	probe, err := parseProbeOutput(output)
	if err != nil {
		return nil, err
	}
	return extractMediaInfo(probe)
}

// probeWithFFmpeg parses dimensions out of ffmpeg's diagnostic output.
// ffmpeg -i exits non-zero when no output file is given, so the exit
// code is ignored and only the stderr text matters.
func (p *Prober) probeWithFFmpeg(ctx context.Context, path string) (*MediaInfo, error) {
	tctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	cmd := exec.CommandContext(tctx, p.FFmpegPath, "-i", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	_ = cmd.Run()
	if tctx.Err() != nil {
		return nil, errors.NewTimeoutError("ffmpeg probe", tctx.Err())
	}

	return parseDiagnosticOutput(stderr.String())
}

// parseProbeOutput decodes ffprobe's JSON document.
func parseProbeOutput(data []byte) (*probeOutput, error) {
	var result probeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.NewParseError("failed to parse ffprobe output", err)
	}
	return &result, nil
}

// extractMediaInfo reads the first video stream's dimensions. Streams
// with missing or non-positive dimensions are rejected.
func extractMediaInfo(probe *probeOutput) (*MediaInfo, error) {
	if len(probe.Streams) == 0 {
		return nil, errors.NewParseError("no streams in ffprobe output", nil)
	}

	stream := probe.Streams[0]
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, errors.NewParseError(
			"invalid dimensions "+strconv.Itoa(stream.Width)+"x"+strconv.Itoa(stream.Height), nil)
	}

	return &MediaInfo{
		Width:       stream.Width,
		Height:      stream.Height,
		AspectRatio: float64(stream.Width) / float64(stream.Height),
		Codec:       stream.CodecName,
		Duration:    stream.Duration,
	}, nil
}

// parseDiagnosticOutput pattern-matches a WIDTHxHEIGHT token from
// ffmpeg's stream description lines.
func parseDiagnosticOutput(output string) (*MediaInfo, error) {
	match := diagnosticRegex.FindStringSubmatch(output)
	if match == nil {
		return nil, errors.NewParseError("no video stream dimensions in ffmpeg output", nil)
	}

	width, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, errors.NewParseError("invalid width "+match[1], err)
	}
	height, err := strconv.Atoi(match[2])
	if err != nil {
		return nil, errors.NewParseError("invalid height "+match[2], err)
	}
	if width <= 0 || height <= 0 {
		return nil, errors.NewParseError("invalid dimensions in ffmpeg output", nil)
	}

	return &MediaInfo{
		Width:       width,
		Height:      height,
		AspectRatio: float64(width) / float64(height),
	}, nil
}

// hasAttachedPicture reports whether any video stream is flagged as cover art.
func hasAttachedPicture(probe *probeOutput) bool {
	for _, stream := range probe.Streams {
		if stream.CodecType == "video" && stream.Disposition.AttachedPic == 1 {
			return true
		}
	}
	return false
}

// DurationSeconds parses the probed duration string, returning 0 when
// it is absent or malformed. Used for progress estimation only.
func (m *MediaInfo) DurationSeconds() float64 {
	if m == nil || m.Duration == "" {
		return 0
	}
	d, err := strconv.ParseFloat(m.Duration, 64)
	if err != nil {
		return 0
	}
	return d
}
