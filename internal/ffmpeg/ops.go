package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Operation timeouts. Frame-dependent operations scale in gif.go / video.go.
const (
	scaleCropTimeout = 30 * time.Second
	thumbnailTimeout = 15 * time.Second
	overlayTimeout   = 45 * time.Second
)

// DefaultThumbnailWidth is the output width for thumbnails (height follows the
// source aspect ratio).
const DefaultThumbnailWidth = 300

// Ops is the library of media operations built on the process Runner.
type Ops struct {
	runner *Runner
}

// NewOps returns an Ops using the given runner.
func NewOps(runner *Runner) *Ops {
	return &Ops{runner: runner}
}

// ScaleAndCrop resizes input so it covers width x height (upscaling if needed,
// lanczos resampling) and center-crops to exactly width x height.
func (o *Ops) ScaleAndCrop(ctx context.Context, input, output string, width, height int) error {
	if err := validateInputs(input); err != nil {
		return err
	}

	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase:flags=lanczos,crop=%d:%d",
		width, height, width, height,
	)
	args := []string{"-i", input, "-vf", vf, "-y", output}

	err := o.runner.Run(ctx, args, RunSpec{
		Timeout:     scaleCropTimeout,
		Description: fmt.Sprintf("scale and crop to %dx%d", width, height),
	})
	if err != nil {
		return err
	}
	return validateOutput(output)
}

// Thumbnail writes a single-frame thumbnail at the given width, height scaled to
// preserve aspect ratio. Works on still images and on the first frame of an
// animation or video.
func (o *Ops) Thumbnail(ctx context.Context, input, output string, width int) error {
	if err := validateInputs(input); err != nil {
		return err
	}
	if width <= 0 {
		width = DefaultThumbnailWidth
	}

	// -2 keeps the computed height even, which some encoders require.
	vf := fmt.Sprintf("scale=%d:-2", width)
	args := []string{"-i", input, "-vf", vf, "-frames:v", "1", "-y", output}

	err := o.runner.Run(ctx, args, RunSpec{
		Timeout:     thumbnailTimeout,
		Description: fmt.Sprintf("thumbnail at width %d", width),
	})
	if err != nil {
		return err
	}
	return validateOutput(output)
}

// Overlay composites a transparent PNG at the origin over the entire base media.
// The overlay is applied per frame by ffmpeg's native frame iteration, so the
// same call handles still images, animated GIFs, and videos. The overlay asset
// is expected to already match the base dimensions.
func (o *Ops) Overlay(ctx context.Context, base, overlayPNG, output string) error {
	if err := validateInputs(base, overlayPNG); err != nil {
		return err
	}

	// GIF output needs re-quantization after compositing or the palette from the
	// base is lost.
	filter := "overlay=0:0"
	if strings.EqualFold(filepath.Ext(output), ".gif") {
		filter = "overlay=0:0,split[a][b];[b]palettegen[p];[a][p]paletteuse"
	}

	args := []string{
		"-i", base,
		"-i", overlayPNG,
		"-filter_complex", filter,
		"-y", output,
	}

	log.Debug().
		Str("base", base).
		Str("overlay", overlayPNG).
		Str("output", output).
		Msg("Compositing overlay")

	err := o.runner.Run(ctx, args, RunSpec{
		Timeout:     overlayTimeout,
		Description: "overlay composite",
	})
	if err != nil {
		return err
	}
	return validateOutput(output)
}
