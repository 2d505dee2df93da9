package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// Video assembly constants. The container targets broad playback compatibility:
// H.264 baseline-friendly settings, yuv420p, no audio, and fast-start metadata so
// progressive playback works over HTTP.
const (
	// VideoFPS is the fixed output frame rate for frame-sequence videos.
	VideoFPS = 5

	// VideoCRF is the deterministic quality target for libx264.
	VideoCRF = 23

	shortVideoFrames  = 10
	shortVideoTimeout = 60 * time.Second
	longVideoTimeout  = 120 * time.Second
)

// Video assembles an ordered frame sequence into an MP4 at width x height.
// Frames are cover-scaled and center-cropped to the target, padded up to even
// dimensions (required by yuv420p), and encoded at a fixed low frame rate with
// no audio track.
func (o *Ops) Video(ctx context.Context, frames []string, output string, width, height int) error {
	if len(frames) < 2 {
		return newError(KindValidation, "video needs at least 2 frames, got %d", len(frames))
	}
	if err := validateInputs(frames...); err != nil {
		return err
	}

	timeout := shortVideoTimeout
	if len(frames) > shortVideoFrames {
		timeout = longVideoTimeout
	}

	playlistPath := filepath.Join(filepath.Dir(output), "video-playlist.txt")
	frameDuration := 1.0 / float64(VideoFPS)
	if err := writeConcatPlaylist(playlistPath, frames, frameDuration); err != nil {
		return err
	}

	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase:flags=lanczos,crop=%d:%d,"+
			"pad=ceil(iw/2)*2:ceil(ih/2)*2,format=yuv420p",
		width, height, width, height,
	)

	args := []string{
		"-f", "concat", "-safe", "0",
		"-i", playlistPath,
		"-vf", vf,
		"-r", fmt.Sprintf("%d", VideoFPS),
		"-c:v", "libx264",
		"-crf", fmt.Sprintf("%d", VideoCRF),
		"-preset", "medium",
		"-an",
		"-movflags", "+faststart",
		"-y", output,
	}

	err := o.runner.Run(ctx, args, RunSpec{
		Timeout:     timeout,
		Description: fmt.Sprintf("video assembly (%d frames at %dx%d)", len(frames), width, height),
	})
	if err != nil {
		return err
	}
	return validateOutput(output)
}
