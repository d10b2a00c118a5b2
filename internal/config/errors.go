// Package config provides configuration types and defaults for vidnorm.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidBinaryPath indicates an empty ffmpeg or ffprobe path.
	ErrInvalidBinaryPath = errors.New("invalid binary path")

	// ErrInvalidTimeout indicates a non-positive timeout.
	ErrInvalidTimeout = errors.New("timeout must be positive")

	// ErrInvalidAspectRatio indicates a target ratio outside the (0.1, 10.0) range.
	ErrInvalidAspectRatio = errors.New("target aspect ratio out of range")

	// ErrInvalidDimension indicates a negative resize dimension.
	ErrInvalidDimension = errors.New("resize dimension invalid")

	// ErrInvalidQuality indicates an encoder quality value out of range.
	ErrInvalidQuality = errors.New("quality value out of range")
)
