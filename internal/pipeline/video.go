package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/framebooth/pipeline/internal/session"
)

// runVideo produces the MP4 artifact: download every frame in order, assemble
// the container at the target dimensions, and thumbnail the first source frame.
func (p *Pipeline) runVideo(ctx context.Context, sess *session.Session, scratch string, cfg Config) (string, string, error) {
	paths, err := p.downloadAssets(ctx, sess.InputAssets, scratch)
	if err != nil {
		return "", "", err
	}

	if err := p.Tracker.UpdateStep(ctx, sess.ID, session.StepProcessing); err != nil {
		return "", "", fmt.Errorf("update step: %w", err)
	}

	final := filepath.Join(scratch, "video.mp4")
	if err := p.Transcoder.Video(ctx, paths, final, cfg.Width, cfg.Height); err != nil {
		return "", "", err
	}

	thumb := filepath.Join(scratch, "thumb.jpg")
	if err := p.stillThumbnail(ctx, paths[0], thumb); err != nil {
		return "", "", err
	}
	return final, thumb, nil
}
