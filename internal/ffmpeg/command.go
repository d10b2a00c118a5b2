package ffmpeg

import "strconv"

// EncodeSettings are the encoder parameters shared by all re-encoding
// stages. Audio streams are always passed through with stream copy.
type EncodeSettings struct {
	Codec  string
	Preset string
	CRF    int
}

// encodeArgs are the common encoder flags appended after the filter.
func (s EncodeSettings) encodeArgs() []string {
	return []string{
		"-c:v", s.Codec,
		"-preset", s.Preset,
		"-crf", strconv.Itoa(s.CRF),
		"-c:a", "copy",
	}
}

// BuildResizeArgs builds the argument list for a scale re-encode.
func BuildResizeArgs(input, output string, width, height int, settings EncodeSettings) []string {
	args := []string{"-i", input, "-vf", ScaleFilter(width, height)}
	args = append(args, settings.encodeArgs()...)
	return append(args, "-y", output)
}

// BuildPadArgs builds the argument list for a letterbox/pillarbox re-encode.
func BuildPadArgs(input, output string, pad Padding, settings EncodeSettings) []string {
	args := []string{"-i", input, "-vf", pad.Filter()}
	args = append(args, settings.encodeArgs()...)
	return append(args, "-y", output)
}

// BuildThumbnailExtractArgs builds the argument list for extracting a
// single JPEG frame at the given timestamp.
func BuildThumbnailExtractArgs(input, output, timestamp string, quality int) []string {
	return []string{
		"-i", input,
		"-ss", timestamp,
		"-vframes", "1",
		"-q:v", strconv.Itoa(quality),
		"-y", output,
	}
}

// BuildThumbnailEmbedArgs builds the argument list for muxing a
// thumbnail into the container as an attached picture. All existing
// streams are stream-copied.
func BuildThumbnailEmbedArgs(input, thumbnail, output string) []string {
	return []string{
		"-i", input,
		"-i", thumbnail,
		"-map", "0",
		"-map", "1",
		"-c", "copy",
		"-disposition:v:1", "attached_pic",
		"-y", output,
	}
}
