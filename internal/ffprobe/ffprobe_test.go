package ffprobe

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	vnerrors "github.com/previewkit/vidnorm/internal/errors"
)

// loadTestData loads a JSON fixture from the testdata directory.
func loadTestData(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to load test data %s: %v", filename, err)
	}
	return data
}

func TestParseProbeOutput_Valid(t *testing.T) {
	data := loadTestData(t, "video_640x480.json")

	probe, err := parseProbeOutput(data)
	if err != nil {
		t.Fatalf("parseProbeOutput() error = %v", err)
	}

	if len(probe.Streams) != 1 {
		t.Fatalf("len(Streams) = %d, want 1", len(probe.Streams))
	}

	stream := probe.Streams[0]
	if stream.CodecType != "video" {
		t.Errorf("CodecType = %q, want %q", stream.CodecType, "video")
	}
	if stream.Width != 640 {
		t.Errorf("Width = %d, want 640", stream.Width)
	}
	if stream.Height != 480 {
		t.Errorf("Height = %d, want 480", stream.Height)
	}
	if stream.Duration != "12.345000" {
		t.Errorf("Duration = %q, want %q", stream.Duration, "12.345000")
	}
}

func TestParseProbeOutput_MalformedJSON(t *testing.T) {
	data := []byte(`{"streams": [}`)

	_, err := parseProbeOutput(data)
	if err == nil {
		t.Fatal("parseProbeOutput() expected error for malformed JSON, got nil")
	}
	if !vnerrors.IsKind(err, vnerrors.KindParse) {
		t.Errorf("expected parse-kind error, got %v", err)
	}
}

func TestExtractMediaInfo(t *testing.T) {
	data := loadTestData(t, "video_640x480.json")
	probe, err := parseProbeOutput(data)
	if err != nil {
		t.Fatalf("parseProbeOutput() error = %v", err)
	}

	info, err := extractMediaInfo(probe)
	if err != nil {
		t.Fatalf("extractMediaInfo() error = %v", err)
	}

	if info.Width != 640 {
		t.Errorf("Width = %d, want 640", info.Width)
	}
	if info.Height != 480 {
		t.Errorf("Height = %d, want 480", info.Height)
	}
	if math.Abs(info.AspectRatio-640.0/480.0) > 1e-9 {
		t.Errorf("AspectRatio = %v, want %v", info.AspectRatio, 640.0/480.0)
	}
	if info.Codec != "h264" {
		t.Errorf("Codec = %q, want %q", info.Codec, "h264")
	}
	if info.DurationSeconds() != 12.345 {
		t.Errorf("DurationSeconds() = %v, want 12.345", info.DurationSeconds())
	}
}

func TestExtractMediaInfo_NoStreams(t *testing.T) {
	data := loadTestData(t, "video_no_streams.json")
	probe, err := parseProbeOutput(data)
	if err != nil {
		t.Fatalf("parseProbeOutput() error = %v", err)
	}

	if _, err := extractMediaInfo(probe); err == nil {
		t.Error("extractMediaInfo() expected error for empty stream list, got nil")
	}
}

func TestExtractMediaInfo_ZeroDimensions(t *testing.T) {
	data := loadTestData(t, "video_zero_dims.json")
	probe, err := parseProbeOutput(data)
	if err != nil {
		t.Fatalf("parseProbeOutput() error = %v", err)
	}

	if _, err := extractMediaInfo(probe); err == nil {
		t.Error("extractMediaInfo() expected error for zero dimensions, got nil")
	}
}

func TestParseDiagnosticOutput(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		wantWidth  int
		wantHeight int
		wantErr    bool
	}{
		{
			name: "typical h264 stream line",
			output: "Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'clip.mp4':\n" +
				"  Duration: 00:02:00.50, start: 0.000000, bitrate: 1500 kb/s\n" +
				"  Stream #0:0(und): Video: h264 (High) (avc1 / 0x31637661), yuv420p, 1920x1080 [SAR 1:1 DAR 16:9], 25 fps\n" +
				"  Stream #0:1(und): Audio: aac (LC), 48000 Hz, stereo, fltp, 128 kb/s\n",
			wantWidth:  1920,
			wantHeight: 1080,
		},
		{
			name:       "small dimensions",
			output:     "Stream #0:0: Video: mpeg4, yuv420p, 320x240, 30 fps",
			wantWidth:  320,
			wantHeight: 240,
		},
		{
			name:    "audio only",
			output:  "Stream #0:0(und): Audio: aac (LC), 48000 Hz, stereo, fltp",
			wantErr: true,
		},
		{
			name:    "empty output",
			output:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := parseDiagnosticOutput(tt.output)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDiagnosticOutput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if info.Width != tt.wantWidth {
				t.Errorf("Width = %d, want %d", info.Width, tt.wantWidth)
			}
			if info.Height != tt.wantHeight {
				t.Errorf("Height = %d, want %d", info.Height, tt.wantHeight)
			}
			if info.AspectRatio != float64(tt.wantWidth)/float64(tt.wantHeight) {
				t.Errorf("AspectRatio = %v", info.AspectRatio)
			}
		})
	}
}

func TestHasAttachedPicture(t *testing.T) {
	withPic, err := parseProbeOutput(loadTestData(t, "video_attached_pic.json"))
	if err != nil {
		t.Fatalf("parseProbeOutput() error = %v", err)
	}
	if !hasAttachedPicture(withPic) {
		t.Error("hasAttachedPicture() = false, want true for mjpeg attached_pic stream")
	}

	withoutPic, err := parseProbeOutput(loadTestData(t, "video_640x480.json"))
	if err != nil {
		t.Fatalf("parseProbeOutput() error = %v", err)
	}
	if hasAttachedPicture(withoutPic) {
		t.Error("hasAttachedPicture() = true, want false without attached_pic stream")
	}
}

func TestDurationSeconds(t *testing.T) {
	tests := []struct {
		name string
		info *MediaInfo
		want float64
	}{
		{"valid duration", &MediaInfo{Duration: "90.5"}, 90.5},
		{"empty duration", &MediaInfo{}, 0},
		{"malformed duration", &MediaInfo{Duration: "n/a"}, 0},
		{"nil receiver", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.DurationSeconds(); got != tt.want {
				t.Errorf("DurationSeconds() = %v, want %v", got, tt.want)
			}
		})
	}
}
