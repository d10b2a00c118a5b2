package util

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// scratchMarker is the infix used in scratch directory names. Pattern
// cleanup reconstructs scratch locations from it, so it must stay stable.
const scratchMarker = "vidnorm"

// ScratchDir is a per-request scratch directory that holds all
// intermediate files for one pipeline run. It lives next to the source
// file so the final rename stays on one filesystem.
type ScratchDir struct {
	path      string
	sourceExt string
}

// ScratchDirName returns the scratch directory path for a source file
// and request token: <dir>/.<basename>.vidnorm-<token>.
func ScratchDirName(sourcePath, token string) string {
	dir := filepath.Dir(sourcePath)
	base := filepath.Base(sourcePath)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s-%s", base, scratchMarker, token))
}

// NewScratchDir creates the scratch directory for a source file.
func NewScratchDir(sourcePath, token string) (*ScratchDir, error) {
	path := ScratchDirName(sourcePath, token)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory %s: %w", path, err)
	}
	return &ScratchDir{
		path:      path,
		sourceExt: filepath.Ext(sourcePath),
	}, nil
}

// Path returns the scratch directory path.
func (s *ScratchDir) Path() string {
	return s.path
}

// StagePath returns the scratch path for a named stage output. The
// source extension is preserved so ffmpeg's container auto-detection
// keeps working on intermediates.
func (s *ScratchDir) StagePath(stage string) string {
	return filepath.Join(s.path, stage+s.sourceExt)
}

// ThumbnailPath returns the scratch path for the extracted JPEG frame.
func (s *ScratchDir) ThumbnailPath() string {
	return filepath.Join(s.path, "thumb.jpg")
}

// Contains reports whether path is inside the scratch directory.
func (s *ScratchDir) Contains(path string) bool {
	return filepath.Dir(path) == s.path
}

// Cleanup removes the scratch directory and anything left inside it.
func (s *ScratchDir) Cleanup() error {
	return RemoveIfExists(s.path)
}

// FindScratchDirs lists every scratch directory belonging to a source
// path, regardless of request token. Used for pattern-based cleanup
// when the explicit temp list is unavailable.
func FindScratchDirs(sourcePath string) ([]string, error) {
	dir := filepath.Dir(sourcePath)
	base := filepath.Base(sourcePath)
	pattern := filepath.Join(dir, fmt.Sprintf(".%s.%s-*", base, scratchMarker))
	return filepath.Glob(pattern)
}

// GetAvailableSpace returns the available disk space in bytes for the
// filesystem containing path. Returns 0 if it cannot be determined.
func GetAvailableSpace(path string) uint64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0
	}
	return stat.Bavail * uint64(stat.Bsize)
}

// CheckDiskSpace logs a warning when the free space near path is less
// than twice the source file size. Re-encoding stages need headroom for
// the intermediate plus the final copy. Advisory only.
func CheckDiskSpace(sourcePath string, logf func(format string, args ...any)) bool {
	size, err := GetFileSize(sourcePath)
	if err != nil {
		return true
	}

	available := GetAvailableSpace(filepath.Dir(sourcePath))
	if available == 0 {
		return true
	}

	if available < size*2 {
		if logf != nil {
			logf("low disk space: %s available, source is %s", FormatBytes(available), FormatBytes(size))
		}
		return false
	}
	return true
}
