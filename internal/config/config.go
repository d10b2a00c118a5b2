// Package config provides configuration types and defaults for vidnorm.
package config

import (
	"fmt"
	"time"
)

// Default constants
const (
	// DefaultFFmpegPath is the ffmpeg binary resolved via PATH.
	DefaultFFmpegPath = "ffmpeg"

	// DefaultFFprobePath is the ffprobe binary resolved via PATH.
	DefaultFFprobePath = "ffprobe"

	// DefaultProbeTimeout bounds a single dimension query.
	DefaultProbeTimeout = 30 * time.Second

	// DefaultStageTimeout bounds a single transform stage.
	DefaultStageTimeout = 300 * time.Second

	// DefaultRequestTimeout bounds an entire pipeline run, enforced by the caller.
	DefaultRequestTimeout = 300 * time.Second

	// DefaultTargetAspectRatio is 16:9, the preview-friendly default.
	DefaultTargetAspectRatio = 16.0 / 9.0

	// AspectRatioTolerance is the delta below which two ratios are considered equal.
	AspectRatioTolerance = 0.01

	// MinTargetAspectRatio is the lower bound (exclusive) for a requested ratio.
	MinTargetAspectRatio = 0.1

	// MaxTargetAspectRatio is the upper bound (exclusive) for a requested ratio.
	MaxTargetAspectRatio = 10.0

	// DefaultVideoCodec is the encoder used for re-encoding stages.
	DefaultVideoCodec = "libx264"

	// DefaultEncoderPreset is the x264 speed/quality preset.
	DefaultEncoderPreset = "medium"

	// DefaultCRF is the constant rate factor for re-encoding stages.
	DefaultCRF = 23

	// DefaultThumbnailTimestamp is where the thumbnail frame is taken from.
	DefaultThumbnailTimestamp = "00:00:01"

	// DefaultThumbnailQuality is the JPEG quality scale (-q:v) for extraction.
	DefaultThumbnailQuality = 2
)

// Config contains all settings for the normalization pipeline.
type Config struct {
	// FFmpegPath is the ffmpeg binary to invoke.
	FFmpegPath string

	// FFprobePath is the ffprobe binary to invoke.
	FFprobePath string

	// ProbeTimeout bounds each dimension query.
	ProbeTimeout time.Duration

	// StageTimeout bounds each transform stage.
	StageTimeout time.Duration

	// RequestTimeout bounds the whole pipeline, enforced by the caller.
	RequestTimeout time.Duration

	// VideoCodec, EncoderPreset, and CRF control re-encoding stages.
	VideoCodec    string
	EncoderPreset string
	CRF           int

	// ThumbnailTimestamp is the frame extraction point (HH:MM:SS).
	ThumbnailTimestamp string

	// ThumbnailQuality is the JPEG quality scale for extraction.
	ThumbnailQuality int

	// LogDir is where run logs are written. Empty disables file logging.
	LogDir string

	// Verbose enables debug-level logging.
	Verbose bool
}

// NewConfig creates a configuration with defaults applied.
func NewConfig() *Config {
	return &Config{
		FFmpegPath:         DefaultFFmpegPath,
		FFprobePath:        DefaultFFprobePath,
		ProbeTimeout:       DefaultProbeTimeout,
		StageTimeout:       DefaultStageTimeout,
		RequestTimeout:     DefaultRequestTimeout,
		VideoCodec:         DefaultVideoCodec,
		EncoderPreset:      DefaultEncoderPreset,
		CRF:                DefaultCRF,
		ThumbnailTimestamp: DefaultThumbnailTimestamp,
		ThumbnailQuality:   DefaultThumbnailQuality,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.FFmpegPath == "" {
		return fmt.Errorf("%w: ffmpeg path is empty", ErrInvalidBinaryPath)
	}
	if c.FFprobePath == "" {
		return fmt.Errorf("%w: ffprobe path is empty", ErrInvalidBinaryPath)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("%w: probe timeout %v", ErrInvalidTimeout, c.ProbeTimeout)
	}
	if c.StageTimeout <= 0 {
		return fmt.Errorf("%w: stage timeout %v", ErrInvalidTimeout, c.StageTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout %v", ErrInvalidTimeout, c.RequestTimeout)
	}
	if c.CRF < 0 || c.CRF > 51 {
		return fmt.Errorf("%w: crf %d, valid range 0-51", ErrInvalidQuality, c.CRF)
	}
	if c.ThumbnailQuality < 1 || c.ThumbnailQuality > 31 {
		return fmt.Errorf("%w: thumbnail quality %d, valid range 1-31", ErrInvalidQuality, c.ThumbnailQuality)
	}
	return nil
}

// ValidateTargetAspectRatio checks a requested aspect ratio against the
// allowed range.
func ValidateTargetAspectRatio(ratio float64) error {
	if ratio <= MinTargetAspectRatio || ratio >= MaxTargetAspectRatio {
		return fmt.Errorf("%w: %.3f, valid range (%.1f, %.1f)",
			ErrInvalidAspectRatio, ratio, MinTargetAspectRatio, MaxTargetAspectRatio)
	}
	return nil
}

// ValidateResizeDimension checks a requested resize width or height.
// Zero means "not requested" and is valid.
func ValidateResizeDimension(name string, value int) error {
	if value < 0 {
		return fmt.Errorf("%w: %s %d", ErrInvalidDimension, name, value)
	}
	return nil
}
