package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/framebooth/pipeline/internal/session"
)

// runGIF produces the boomerang animation: download every frame, scale and
// center-crop each to the exact target dimensions, render the forward-then-
// backward play order as a palette-quantized GIF, optionally composite the
// branding overlay across all frames, and thumbnail the final animation's
// first frame.
func (p *Pipeline) runGIF(ctx context.Context, sess *session.Session, scratch string, cfg Config, opts Options) (string, string, error) {
	paths, err := p.downloadAssets(ctx, sess.InputAssets, scratch)
	if err != nil {
		return "", "", err
	}

	if err := p.Tracker.UpdateStep(ctx, sess.ID, session.StepProcessing); err != nil {
		return "", "", fmt.Errorf("update step: %w", err)
	}

	// Normalizing frames before assembly keeps the palette passes working on
	// final-size pixels and avoids re-encoding the finished GIF.
	cropped := make([]string, len(paths))
	for i, path := range paths {
		out := filepath.Join(scratch, fmt.Sprintf("cropped-%03d.jpg", i))
		if err := p.Transcoder.ScaleAndCrop(ctx, path, out, cfg.Width, cfg.Height); err != nil {
			return "", "", err
		}
		cropped[i] = out
	}

	order := BoomerangOrder(cropped)

	animated := filepath.Join(scratch, "animated.gif")
	if err := p.Transcoder.AnimatedSequence(ctx, order, animated, cfg.Width, cfg.FPS); err != nil {
		return "", "", err
	}
	final := animated

	if opts.Overlay {
		overlayPath, err := p.downloadOverlay(ctx, sess, cfg.Aspect, scratch)
		if err != nil {
			return "", "", err
		}
		composited := filepath.Join(scratch, "composited.gif")
		if err := p.Transcoder.Overlay(ctx, final, overlayPath, composited); err != nil {
			return "", "", err
		}
		final = composited
	}

	thumb := filepath.Join(scratch, "thumb.jpg")
	if err := p.Transcoder.Thumbnail(ctx, final, thumb, ThumbnailWidth); err != nil {
		return "", "", err
	}
	return final, thumb, nil
}
