package processing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/previewkit/vidnorm/internal/util"
)

func TestCleanup_IgnoresMissingPaths(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "leftover.mp4")
	if err := os.WriteFile(existing, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	Cleanup([]string{existing, filepath.Join(dir, "already-gone.mp4")}, nil)

	if util.FileExists(existing) {
		t.Error("existing path should have been removed")
	}
}

func TestCleanupBySource(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(source, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, token := range []string{"run1", "run2"} {
		scratch, err := util.NewScratchDir(source, token)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(scratch.StagePath("resize"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	// A sibling video's scratch directory must not be touched.
	other := filepath.Join(dir, "other.mp4")
	otherScratch, err := util.NewScratchDir(other, "run1")
	if err != nil {
		t.Fatal(err)
	}

	if removed := CleanupBySource(source, nil); removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	dirs, err := util.FindScratchDirs(source)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 0 {
		t.Errorf("scratch directories remain: %v", dirs)
	}
	if !util.DirectoryExists(otherScratch.Path()) {
		t.Error("sibling scratch directory should be untouched")
	}
}

func TestCleanupBySource_NothingToRemove(t *testing.T) {
	source := filepath.Join(t.TempDir(), "clip.mp4")
	if removed := CleanupBySource(source, nil); removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}
