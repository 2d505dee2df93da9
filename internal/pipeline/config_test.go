package pipeline

import (
	"testing"
	"time"
)

func TestResolveConfig(t *testing.T) {
	tests := []struct {
		name          string
		format        OutputFormat
		aspect        AspectRatio
		width, height int
		frameDuration time.Duration
		fps           int
	}{
		{"square image", FormatImage, AspectSquare, 1080, 1080, 0, 0},
		{"story image", FormatImage, AspectStory, 1080, 1920, 0, 0},
		{"square gif", FormatGIF, AspectSquare, 1080, 1080, 500 * time.Millisecond, 2},
		{"story gif", FormatGIF, AspectStory, 1080, 1920, 500 * time.Millisecond, 2},
		{"square video", FormatVideo, AspectSquare, 1080, 1080, 200 * time.Millisecond, 5},
		{"story video", FormatVideo, AspectStory, 1080, 1920, 200 * time.Millisecond, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ResolveConfig(tt.format, tt.aspect)
			if cfg.Width != tt.width || cfg.Height != tt.height {
				t.Errorf("dimensions = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.width, tt.height)
			}
			if cfg.FrameDuration != tt.frameDuration {
				t.Errorf("frame duration = %v, want %v", cfg.FrameDuration, tt.frameDuration)
			}
			if cfg.FPS != tt.fps {
				t.Errorf("fps = %d, want %d", cfg.FPS, tt.fps)
			}
		})
	}
}

func TestReconcileFormat(t *testing.T) {
	tests := []struct {
		name      string
		requested OutputFormat
		frames    int
		want      OutputFormat
	}{
		{"one frame forces image", FormatGIF, 1, FormatImage},
		{"one frame video forces image", FormatVideo, 1, FormatImage},
		{"multi-frame image upgrades to gif", FormatImage, 3, FormatGIF},
		{"multi-frame gif unchanged", FormatGIF, 3, FormatGIF},
		{"multi-frame video unchanged", FormatVideo, 5, FormatVideo},
		{"single frame image unchanged", FormatImage, 1, FormatImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReconcileFormat(tt.requested, tt.frames); got != tt.want {
				t.Errorf("ReconcileFormat(%q, %d) = %q, want %q", tt.requested, tt.frames, got, tt.want)
			}
		})
	}
}

func TestProviderShape(t *testing.T) {
	if got := AspectSquare.ProviderShape(); got != "1:1" {
		t.Errorf("square shape = %q, want 1:1", got)
	}
	if got := AspectStory.ProviderShape(); got != "9:16" {
		t.Errorf("story shape = %q, want 9:16", got)
	}
}

func TestFormatExtAndOutputName(t *testing.T) {
	if got := FormatImage.Ext(); got != "jpg" {
		t.Errorf("image ext = %q", got)
	}
	if got := FormatGIF.Ext(); got != "gif" {
		t.Errorf("gif ext = %q", got)
	}
	if got := FormatVideo.Ext(); got != "mp4" {
		t.Errorf("video ext = %q", got)
	}
	if got := FormatVideo.OutputName(); got != "mp4" {
		t.Errorf("video output name = %q, want mp4", got)
	}
	if got := FormatGIF.OutputName(); got != "gif" {
		t.Errorf("gif output name = %q", got)
	}
}
