// Package ffmpeg builds and executes ffmpeg invocations for the
// transform stages.
package ffmpeg

import (
	"fmt"
	"math"

	"github.com/previewkit/vidnorm/internal/config"
)

// Stage names, used as operation keys in results and as scratch file names.
const (
	StageResize            = "resize"
	StageNormalizeAspect   = "normalize_aspect"
	StageGenerateThumbnail = "generate_thumbnail"
	StageEmbedThumbnail    = "embed_thumbnail"
)

// ResizeTarget computes the output dimensions for a resize request.
// When only one dimension is given the other is derived from the
// current aspect ratio with integer truncation. Zero means unset.
func ResizeTarget(curWidth, curHeight, reqWidth, reqHeight int) (int, int) {
	switch {
	case reqWidth > 0 && reqHeight > 0:
		return reqWidth, reqHeight
	case reqWidth > 0:
		return reqWidth, int(float64(reqWidth) / (float64(curWidth) / float64(curHeight)))
	case reqHeight > 0:
		return int(float64(reqHeight) * (float64(curWidth) / float64(curHeight))), reqHeight
	default:
		return curWidth, curHeight
	}
}

// Padding describes a letterbox or pillarbox geometry: the padded
// canvas size and the offset of the original frame within it.
type Padding struct {
	Width  int
	Height int
	X      int
	Y      int
}

// Filter renders the padding as an ffmpeg pad filter with black fill.
func (p Padding) Filter() string {
	return fmt.Sprintf("pad=%d:%d:%d:%d:black", p.Width, p.Height, p.X, p.Y)
}

// ComputePadding calculates symmetric padding that brings a frame to
// the target aspect ratio. The split uses floor division: when the
// added rows or columns are odd, the extra pixel goes to the bottom or
// right edge.
func ComputePadding(curWidth, curHeight int, targetRatio float64) Padding {
	currentRatio := float64(curWidth) / float64(curHeight)

	if currentRatio > targetRatio {
		// Frame is wider than the target: letterbox top/bottom.
		newHeight := int(float64(curWidth) / targetRatio)
		return Padding{
			Width:  curWidth,
			Height: newHeight,
			X:      0,
			Y:      (newHeight - curHeight) / 2,
		}
	}

	// Frame is taller than the target: pillarbox left/right.
	newWidth := int(float64(curHeight) * targetRatio)
	return Padding{
		Width:  newWidth,
		Height: curHeight,
		X:      (newWidth - curWidth) / 2,
		Y:      0,
	}
}

// ScaleFilter renders an ffmpeg scale filter for the given dimensions.
func ScaleFilter(width, height int) string {
	return fmt.Sprintf("scale=%d:%d", width, height)
}

// RatioWithinTolerance reports whether two aspect ratios are close
// enough that no normalization is needed.
func RatioWithinTolerance(current, target float64) bool {
	return math.Abs(current-target) < config.AspectRatioTolerance
}
