package processing

import (
	"github.com/previewkit/vidnorm/internal/logging"
	"github.com/previewkit/vidnorm/internal/util"
)

// Cleanup removes each tracked scratch path, ignoring ones that no
// longer exist. Individual deletion failures are logged, not returned.
func Cleanup(paths []string, logger *logging.Logger) {
	for _, path := range paths {
		if err := util.RemoveIfExists(path); err != nil {
			logger.Warn("cleanup: could not remove %s: %v", path, err)
			continue
		}
		logger.Debug("cleanup: removed %s", path)
	}
}

// CleanupBySource removes every scratch directory derived from the
// source path. Used when a run died from an external timeout before its
// tracked scratch list was available. Returns the number of directories
// removed.
func CleanupBySource(sourcePath string, logger *logging.Logger) int {
	dirs, err := util.FindScratchDirs(sourcePath)
	if err != nil {
		logger.Warn("cleanup: could not list scratch directories for %s: %v", sourcePath, err)
		return 0
	}

	removed := 0
	for _, dir := range dirs {
		if err := util.RemoveIfExists(dir); err != nil {
			logger.Warn("cleanup: could not remove %s: %v", dir, err)
			continue
		}
		logger.Debug("cleanup: removed %s", dir)
		removed++
	}
	return removed
}
