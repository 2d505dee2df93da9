package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/framebooth/pipeline/internal/aitransform"
	"github.com/framebooth/pipeline/internal/session"
)

// runImage produces the single-photo artifact: download the first input asset,
// optionally AI-transform it, scale and center-crop to the target dimensions,
// optionally composite the branding overlay, and thumbnail the final result.
// The thumbnail always comes from the fully composited image so it reflects
// both the AI edit and the overlay.
func (p *Pipeline) runImage(ctx context.Context, sess *session.Session, scratch string, cfg Config, opts Options) (string, string, error) {
	paths, err := p.downloadAssets(ctx, sess.InputAssets[:1], scratch)
	if err != nil {
		return "", "", err
	}
	current := paths[0]

	if opts.AITransform {
		if p.Transform == nil {
			return "", "", &aitransform.Error{
				Code:    aitransform.CodeConfigInvalid,
				Message: "AI transform requested but no provider is configured",
			}
		}
		current, err = p.Transform.Apply(ctx, sess.ID, current, scratch, aitransform.Config{
			Prompt:      opts.Prompt,
			AspectRatio: cfg.Aspect.ProviderShape(),
		})
		if err != nil {
			return "", "", err
		}
	}

	if err := p.Tracker.UpdateStep(ctx, sess.ID, session.StepProcessing); err != nil {
		return "", "", fmt.Errorf("update step: %w", err)
	}

	scaled := filepath.Join(scratch, "scaled.jpg")
	if err := p.Transcoder.ScaleAndCrop(ctx, current, scaled, cfg.Width, cfg.Height); err != nil {
		return "", "", err
	}
	final := scaled

	if opts.Overlay {
		overlayPath, err := p.downloadOverlay(ctx, sess, cfg.Aspect, scratch)
		if err != nil {
			return "", "", err
		}
		composited := filepath.Join(scratch, "composited.jpg")
		if err := p.Transcoder.Overlay(ctx, final, overlayPath, composited); err != nil {
			return "", "", err
		}
		final = composited
	}

	thumb := filepath.Join(scratch, "thumb.jpg")
	if err := p.stillThumbnail(ctx, final, thumb); err != nil {
		return "", "", err
	}
	return final, thumb, nil
}
