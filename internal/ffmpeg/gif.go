package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Animated sequence timeouts: short sequences get 45s, longer ones 90s.
const (
	shortSequenceFrames  = 5
	shortSequenceTimeout = 45 * time.Second
	longSequenceTimeout  = 90 * time.Second
)

// AnimatedSequence renders an ordered frame list into a looping, palette-quantized
// GIF at the given width. The frames slice may contain duplicate path entries —
// callers encode boomerang playback by repeating paths, never by duplicating files
// on disk. A shared 256-color palette is generated in a first pass over the unique
// underlying frames, then the full play order is rendered against that palette
// with ordered (bayer) dithering.
//
// Each frame is shown for 1/fps seconds; the last frame's duration is omitted so
// the loop has no trailing delay.
func (o *Ops) AnimatedSequence(ctx context.Context, frames []string, output string, width, fps int) error {
	if len(frames) < 2 {
		return newError(KindValidation, "animated sequence needs at least 2 frames, got %d", len(frames))
	}
	if fps <= 0 {
		fps = 2
	}

	unique := uniquePaths(frames)
	if err := validateInputs(unique...); err != nil {
		return err
	}

	timeout := shortSequenceTimeout
	if len(frames) > shortSequenceFrames {
		timeout = longSequenceTimeout
	}

	workDir := filepath.Dir(output)
	playlistPath := filepath.Join(workDir, "sequence-playlist.txt")
	palettePlaylistPath := filepath.Join(workDir, "palette-playlist.txt")
	palettePath := filepath.Join(workDir, "palette.png")

	frameDuration := 1.0 / float64(fps)
	if err := writeConcatPlaylist(playlistPath, frames, frameDuration); err != nil {
		return err
	}
	// Palette pass reads each unique frame once; durations are irrelevant there.
	if err := writeConcatPlaylist(palettePlaylistPath, unique, 0); err != nil {
		return err
	}

	log.Debug().
		Int("play_frames", len(frames)).
		Int("unique_frames", len(unique)).
		Int("width", width).
		Int("fps", fps).
		Msg("Building animated sequence")

	// Pass 1: shared palette over unique frames for visual quality.
	paletteArgs := []string{
		"-f", "concat", "-safe", "0",
		"-i", palettePlaylistPath,
		"-vf", fmt.Sprintf("scale=%d:-2:flags=lanczos,palettegen=max_colors=256:stats_mode=diff", width),
		"-y", palettePath,
	}
	err := o.runner.Run(ctx, paletteArgs, RunSpec{
		Timeout:     timeout,
		Description: "palette generation",
	})
	if err != nil {
		return err
	}
	if err := validateOutput(palettePath); err != nil {
		return err
	}

	// Pass 2: render the full play order against the palette. Ordered dithering
	// keeps frame-to-frame noise stable so the loop doesn't shimmer.
	renderArgs := []string{
		"-f", "concat", "-safe", "0",
		"-i", playlistPath,
		"-i", palettePath,
		"-lavfi", fmt.Sprintf("scale=%d:-2:flags=lanczos[x];[x][1:v]paletteuse=dither=bayer", width),
		"-loop", "0",
		"-y", output,
	}
	err = o.runner.Run(ctx, renderArgs, RunSpec{
		Timeout:     timeout,
		Description: fmt.Sprintf("animated sequence render (%d frames)", len(frames)),
	})
	if err != nil {
		return err
	}
	return validateOutput(output)
}

// writeConcatPlaylist writes an ffconcat playlist. When frameDuration > 0 each
// entry gets an explicit duration directive, except the last entry so no trailing
// delay is added to the loop.
func writeConcatPlaylist(path string, frames []string, frameDuration float64) error {
	var sb strings.Builder
	sb.WriteString("ffconcat version 1.0\n")
	for i, frame := range frames {
		sb.WriteString("file '")
		sb.WriteString(escapeConcatPath(frame))
		sb.WriteString("'\n")
		if frameDuration > 0 && i < len(frames)-1 {
			sb.WriteString(fmt.Sprintf("duration %.3f\n", frameDuration))
		}
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return newError(KindFilesystem, "write concat playlist %s: %v", path, err)
	}
	return nil
}

// escapeConcatPath escapes single quotes for the concat demuxer's quoted syntax.
func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

// uniquePaths returns the distinct paths in order of first appearance.
func uniquePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
