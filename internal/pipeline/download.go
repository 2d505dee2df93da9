package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/framebooth/pipeline/internal/imaging"
	"github.com/framebooth/pipeline/internal/session"
	"github.com/framebooth/pipeline/internal/storage"
)

// downloadConcurrency caps the parallel blob fetches per run. The pipeline
// critical path is otherwise sequential; only the fan-out edges run concurrent.
const downloadConcurrency = 4

// downloadAssets fetches every input frame into the scratch directory,
// returning local paths in input-asset order. All-or-nothing: any failed fetch
// fails the whole batch.
func (p *Pipeline) downloadAssets(ctx context.Context, assets []session.InputAsset, scratch string) ([]string, error) {
	paths := make([]string, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadConcurrency)
	for i, asset := range assets {
		i, asset := i, asset
		g.Go(func() error {
			key, err := storage.KeyFromURL(asset.URL)
			if err != nil {
				return validationf("input asset %d: %v", i, err)
			}

			local := filepath.Join(scratch, fmt.Sprintf("frame-%03d%s", i, frameExt(asset)))
			if err := p.Blobs.Download(gctx, key, local); err != nil {
				return &storageError{err: fmt.Errorf("download input asset %d (%s): %w", i, key, err)}
			}
			paths[i] = local

			imaging.LogFrameInfo(local, asset.Filename)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().Int("frames", len(paths)).Str("dir", scratch).Msg("Input frames downloaded")
	return paths, nil
}

// downloadOverlay fetches the branding overlay PNG for the session's company
// and the configured aspect ratio class. Companies predate multi-tenant
// migration on some records; those fall back to the project id.
func (p *Pipeline) downloadOverlay(ctx context.Context, sess *session.Session, aspect AspectRatio, scratch string) (string, error) {
	owner := sess.CompanyID
	if owner == "" {
		owner = sess.ProjectID
	}

	key := storage.OverlayKey(owner, string(aspect))
	local := filepath.Join(scratch, "overlay.png")
	if err := p.Blobs.Download(ctx, key, local); err != nil {
		return "", &storageError{err: fmt.Errorf("download overlay %s: %w", key, err)}
	}
	return local, nil
}

// uploadArtifacts pushes the primary artifact and thumbnail concurrently and
// returns their public URLs.
func (p *Pipeline) uploadArtifacts(ctx context.Context, primaryPath, primaryKey, thumbPath, thumbKey string) (string, string, error) {
	var primaryURL, thumbURL string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := p.Blobs.Upload(gctx, primaryPath, primaryKey)
		if err != nil {
			return &storageError{err: fmt.Errorf("upload %s: %w", primaryKey, err)}
		}
		primaryURL = url
		return nil
	})
	g.Go(func() error {
		url, err := p.Blobs.Upload(gctx, thumbPath, thumbKey)
		if err != nil {
			return &storageError{err: fmt.Errorf("upload %s: %w", thumbKey, err)}
		}
		thumbURL = url
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return primaryURL, thumbURL, nil
}

// stillThumbnail renders a thumbnail for a still image, preferring the in-process
// decoder and falling back to the transcoder for formats it cannot decode.
func (p *Pipeline) stillThumbnail(ctx context.Context, input, output string) error {
	err := imaging.Thumbnail(input, output, ThumbnailWidth)
	if err == nil {
		return nil
	}
	log.Debug().Err(err).Str("input", input).Msg("In-process thumbnail failed, falling back to transcoder")
	return p.Transcoder.Thumbnail(ctx, input, output, ThumbnailWidth)
}

// frameExt picks a local file extension for a downloaded frame, preferring the
// recorded filename and falling back to the storage key's extension via URL.
func frameExt(asset session.InputAsset) string {
	if ext := filepath.Ext(asset.Filename); ext != "" {
		return strings.ToLower(ext)
	}
	if ext := filepath.Ext(asset.URL); ext != "" {
		return strings.ToLower(ext)
	}
	return ".jpg"
}
