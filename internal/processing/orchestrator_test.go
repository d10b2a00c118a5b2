package processing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/previewkit/vidnorm/internal/analysis"
	vnerrors "github.com/previewkit/vidnorm/internal/errors"
	"github.com/previewkit/vidnorm/internal/ffmpeg"
	"github.com/previewkit/vidnorm/internal/ffprobe"
	"github.com/previewkit/vidnorm/internal/util"
)

type fakeProber struct {
	info  *ffprobe.MediaInfo
	err   error
	calls int
}

func (f *fakeProber) Probe(_ context.Context, _ string) (*ffprobe.MediaInfo, error) {
	f.calls++
	return f.info, f.err
}

type fakeAnalyzer struct {
	verdict analysis.Result
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string, _ analysis.Targets) analysis.Result {
	return f.verdict
}

// fakeTransformer writes a marker file for each successful stage and
// records invocation order.
type fakeTransformer struct {
	fail  map[string]bool
	calls []string
}

func (f *fakeTransformer) stage(name, output string) error {
	f.calls = append(f.calls, name)
	if f.fail[name] {
		return vnerrors.NewStageError(name, "ffmpeg failed", nil)
	}
	return os.WriteFile(output, []byte(name), 0644)
}

func (f *fakeTransformer) Resize(_ context.Context, _, output string, _, _ int) error {
	return f.stage(ffmpeg.StageResize, output)
}

func (f *fakeTransformer) NormalizeAspect(_ context.Context, _, output string, _ float64) error {
	return f.stage(ffmpeg.StageNormalizeAspect, output)
}

func (f *fakeTransformer) GenerateThumbnail(_ context.Context, _, output string) error {
	return f.stage(ffmpeg.StageGenerateThumbnail, output)
}

func (f *fakeTransformer) EmbedThumbnail(_ context.Context, _, _, output string) error {
	return f.stage(ffmpeg.StageEmbedThumbnail, output)
}

func newTestPipeline(prober *fakeProber, verdict analysis.Result, transformer *fakeTransformer) *Pipeline {
	return &Pipeline{
		Prober:      prober,
		Analyzer:    &fakeAnalyzer{verdict: verdict},
		Transformer: transformer,
		NewToken:    func() string { return "testtoken" },
	}
}

func writeVideo(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func needsWork(reasons ...string) analysis.Result {
	return analysis.Result{NeedsProcessing: true, Reasons: reasons}
}

func probed(width, height int) *fakeProber {
	return &fakeProber{info: &ffprobe.MediaInfo{
		Width:       width,
		Height:      height,
		AspectRatio: float64(width) / float64(height),
	}}
}

func assertNoScratchLeft(t *testing.T, source string) {
	t.Helper()
	dirs, err := util.FindScratchDirs(source)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 0 {
		t.Errorf("scratch directories left behind: %v", dirs)
	}
}

func TestProcess_MissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.mp4")
	transformer := &fakeTransformer{}
	p := newTestPipeline(probed(640, 480), needsWork("whatever"), transformer)

	result := p.Process(context.Background(), Request{SourcePath: missing, NormalizeAspect: true})

	if result.Success {
		t.Error("Success = true, want false")
	}
	if result.Err == nil || result.Err.Error() != "Video file not found: "+missing {
		t.Errorf("Err = %v, want exact not-found message", result.Err)
	}
	if len(transformer.calls) != 0 {
		t.Errorf("no stages should run, got %v", transformer.calls)
	}
}

func TestProcess_InvalidAspectRatio(t *testing.T) {
	source := writeVideo(t, t.TempDir(), "clip.mp4")
	p := newTestPipeline(probed(640, 480), needsWork(), &fakeTransformer{})

	result := p.Process(context.Background(), Request{
		SourcePath:        source,
		NormalizeAspect:   true,
		TargetAspectRatio: 50.0,
	})

	if result.Err == nil || !vnerrors.IsKind(result.Err, vnerrors.KindConfig) {
		t.Errorf("Err = %v, want config error", result.Err)
	}
}

func TestProcess_InitialProbeFailureIsTerminal(t *testing.T) {
	source := writeVideo(t, t.TempDir(), "clip.mp4")
	prober := &fakeProber{err: vnerrors.NewProbeError(source)}
	transformer := &fakeTransformer{}
	p := newTestPipeline(prober, needsWork("x"), transformer)

	result := p.Process(context.Background(), Request{SourcePath: source, NormalizeAspect: true})

	if result.Success || result.Err == nil {
		t.Errorf("probe failure should be terminal, got success=%v err=%v", result.Success, result.Err)
	}
	if len(transformer.calls) != 0 {
		t.Errorf("no stages should run, got %v", transformer.calls)
	}
}

func TestProcess_SkipWhenAlreadyNormalized(t *testing.T) {
	source := writeVideo(t, t.TempDir(), "clip.mp4")
	transformer := &fakeTransformer{}
	p := newTestPipeline(probed(1920, 1080), analysis.Result{NeedsProcessing: false}, transformer)

	result := p.Process(context.Background(), Request{SourcePath: source, NormalizeAspect: true})

	if !result.Success || !result.Skipped {
		t.Errorf("got success=%v skipped=%v, want both true", result.Success, result.Skipped)
	}
	if result.OutputPath != source {
		t.Errorf("OutputPath = %q, want source path", result.OutputPath)
	}
	if result.FinalDimensions != result.OriginalDimensions {
		t.Errorf("FinalDimensions = %q, want %q", result.FinalDimensions, result.OriginalDimensions)
	}
	if len(transformer.calls) != 0 {
		t.Errorf("no stages should run on skip, got %v", transformer.calls)
	}
	assertNoScratchLeft(t, source)
}

func TestProcess_OverwriteReplacesSource(t *testing.T) {
	source := writeVideo(t, t.TempDir(), "clip.mp4")
	transformer := &fakeTransformer{}
	p := newTestPipeline(probed(640, 480), needsWork("aspect"), transformer)

	result := p.Process(context.Background(), Request{
		SourcePath:      source,
		Overwrite:       true,
		NormalizeAspect: true,
	})

	if !result.Success {
		t.Fatalf("Success = false, err = %v", result.Err)
	}
	if result.OutputPath != source {
		t.Errorf("OutputPath = %q, want source path", result.OutputPath)
	}
	if !result.Operations[ffmpeg.StageNormalizeAspect] {
		t.Errorf("Operations = %v, want normalize_aspect true", result.Operations)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ffmpeg.StageNormalizeAspect {
		t.Errorf("source content = %q, want the processed file", data)
	}

	Cleanup(result.TempFiles, nil)
	assertNoScratchLeft(t, source)
}

func TestProcess_CopyModeWritesOutput(t *testing.T) {
	dir := t.TempDir()
	source := writeVideo(t, dir, "clip.mp4")
	outDir := filepath.Join(dir, "processed")
	transformer := &fakeTransformer{}
	p := newTestPipeline(probed(640, 480), needsWork("aspect"), transformer)

	result := p.Process(context.Background(), Request{
		SourcePath:      source,
		OutputDir:       outDir,
		OutputName:      "normalized.mp4",
		NormalizeAspect: true,
	})

	if !result.Success {
		t.Fatalf("Success = false, err = %v", result.Err)
	}
	want := filepath.Join(outDir, "normalized.mp4")
	if result.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, want)
	}
	if !util.FileExists(want) {
		t.Fatal("output file should exist")
	}

	// The source must be untouched in copy mode.
	data, _ := os.ReadFile(source)
	if string(data) != "original" {
		t.Errorf("source content = %q, want untouched original", data)
	}

	Cleanup(result.TempFiles, nil)
	assertNoScratchLeft(t, source)
}

func TestProcess_StageFailureDoesNotAbortSiblings(t *testing.T) {
	source := writeVideo(t, t.TempDir(), "clip.mp4")
	transformer := &fakeTransformer{fail: map[string]bool{ffmpeg.StageResize: true}}
	p := newTestPipeline(probed(640, 480), needsWork("resize", "aspect"), transformer)

	result := p.Process(context.Background(), Request{
		SourcePath:      source,
		Overwrite:       true,
		ResizeWidth:     1280,
		NormalizeAspect: true,
	})

	if !result.Success {
		t.Fatalf("one succeeding stage should make the run a success, err = %v", result.Err)
	}
	if result.Operations[ffmpeg.StageResize] {
		t.Error("resize should be recorded as failed")
	}
	if !result.Operations[ffmpeg.StageNormalizeAspect] {
		t.Error("normalize_aspect should be recorded as succeeded")
	}
	if len(transformer.calls) != 2 {
		t.Errorf("calls = %v, want both stages attempted", transformer.calls)
	}

	Cleanup(result.TempFiles, nil)
	assertNoScratchLeft(t, source)
}

func TestProcess_AllStagesFail(t *testing.T) {
	source := writeVideo(t, t.TempDir(), "clip.mp4")
	transformer := &fakeTransformer{fail: map[string]bool{
		ffmpeg.StageResize:          true,
		ffmpeg.StageNormalizeAspect: true,
	}}
	p := newTestPipeline(probed(640, 480), needsWork("resize", "aspect"), transformer)

	result := p.Process(context.Background(), Request{
		SourcePath:      source,
		Overwrite:       true,
		ResizeWidth:     1280,
		NormalizeAspect: true,
	})

	if result.Success {
		t.Error("Success = true, want false when every requested stage fails")
	}
	if result.Err != nil {
		t.Errorf("stage failures are not request-level errors, got %v", result.Err)
	}

	// Source must be untouched when nothing changed it.
	data, _ := os.ReadFile(source)
	if string(data) != "original" {
		t.Errorf("source content = %q, want untouched original", data)
	}

	Cleanup(result.TempFiles, nil)
	assertNoScratchLeft(t, source)
}

func TestProcess_ThumbnailFailureSkipsEmbed(t *testing.T) {
	source := writeVideo(t, t.TempDir(), "clip.mp4")
	transformer := &fakeTransformer{fail: map[string]bool{ffmpeg.StageGenerateThumbnail: true}}
	p := newTestPipeline(probed(640, 480), needsWork("thumbnail"), transformer)

	result := p.Process(context.Background(), Request{
		SourcePath:        source,
		Overwrite:         true,
		GenerateThumbnail: true,
	})

	if result.Operations[ffmpeg.StageGenerateThumbnail] {
		t.Error("generate_thumbnail should be recorded as failed")
	}
	if _, attempted := result.Operations[ffmpeg.StageEmbedThumbnail]; attempted {
		t.Error("embed should not be attempted without a thumbnail")
	}

	Cleanup(result.TempFiles, nil)
	assertNoScratchLeft(t, source)
}

func TestProcess_ThumbnailPipelineChainsEmbed(t *testing.T) {
	source := writeVideo(t, t.TempDir(), "clip.mp4")
	transformer := &fakeTransformer{}
	p := newTestPipeline(probed(640, 480), needsWork("thumbnail"), transformer)

	result := p.Process(context.Background(), Request{
		SourcePath:        source,
		Overwrite:         true,
		GenerateThumbnail: true,
	})

	if !result.Success {
		t.Fatalf("Success = false, err = %v", result.Err)
	}
	want := []string{ffmpeg.StageGenerateThumbnail, ffmpeg.StageEmbedThumbnail}
	if len(transformer.calls) != 2 || transformer.calls[0] != want[0] || transformer.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", transformer.calls, want)
	}

	data, _ := os.ReadFile(source)
	if string(data) != ffmpeg.StageEmbedThumbnail {
		t.Errorf("source content = %q, want the embed output", data)
	}

	Cleanup(result.TempFiles, nil)
	assertNoScratchLeft(t, source)
}

func TestProcess_NoStagesRequestedCopiesToOutput(t *testing.T) {
	dir := t.TempDir()
	source := writeVideo(t, dir, "clip.mp4")
	transformer := &fakeTransformer{}

	// A conservative analysis verdict with no stages requested still
	// establishes the output path via a plain copy.
	p := newTestPipeline(probed(640, 480), needsWork("could not check"), transformer)

	result := p.Process(context.Background(), Request{
		SourcePath: source,
		OutputName: "copy.mp4",
	})

	if !result.Success {
		t.Fatalf("a no-op copy should count as success, err = %v", result.Err)
	}
	want := filepath.Join(dir, "copy.mp4")
	if result.OutputPath != want || !util.FileExists(want) {
		t.Errorf("OutputPath = %q, want existing %q", result.OutputPath, want)
	}
	if len(transformer.calls) != 0 {
		t.Errorf("no stages should run, got %v", transformer.calls)
	}

	Cleanup(result.TempFiles, nil)
	assertNoScratchLeft(t, source)
}

func TestProcess_IntermediateHandoffLeavesOneLiveFile(t *testing.T) {
	source := writeVideo(t, t.TempDir(), "clip.mp4")
	transformer := &fakeTransformer{}
	p := newTestPipeline(probed(640, 480), needsWork("resize", "aspect"), transformer)

	result := p.Process(context.Background(), Request{
		SourcePath:      source,
		ResizeWidth:     1280,
		NormalizeAspect: true,
	})

	if !result.Success {
		t.Fatalf("Success = false, err = %v", result.Err)
	}

	// The resize intermediate must have been dropped when the
	// normalize stage superseded it.
	scratch := util.ScratchDirName(source, "testtoken")
	entries, err := os.ReadDir(scratch)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("scratch contains %v, want only the final intermediate", names)
	}

	Cleanup(result.TempFiles, nil)
	assertNoScratchLeft(t, source)
}
