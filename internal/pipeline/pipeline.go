// Package pipeline contains the format orchestrators for guest media
// processing. One invocation handles one session: fetch the record, download
// the guest frames, optionally AI-transform, scale/crop, optionally composite a
// brand overlay, generate a thumbnail, upload the artifacts, and finalize the
// session document. On any failure the session is marked failed with a typed
// code and the original error propagates to the caller's retry supervisor; this
// core performs zero internal retries.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/framebooth/pipeline/internal/aitransform"
	"github.com/framebooth/pipeline/internal/metrics"
	"github.com/framebooth/pipeline/internal/session"
	"github.com/framebooth/pipeline/internal/storage"
)

// BlobStore is the storage gateway surface the pipeline needs.
type BlobStore interface {
	Download(ctx context.Context, key, localPath string) error
	Upload(ctx context.Context, localPath, key string) (string, error)
}

// Transcoder is the media operation surface the pipeline needs.
type Transcoder interface {
	ScaleAndCrop(ctx context.Context, input, output string, width, height int) error
	Thumbnail(ctx context.Context, input, output string, width int) error
	AnimatedSequence(ctx context.Context, frames []string, output string, width, fps int) error
	Video(ctx context.Context, frames []string, output string, width, height int) error
	Overlay(ctx context.Context, base, overlayPNG, output string) error
}

// Transformer applies the AI transform step to a downloaded guest photo.
type Transformer interface {
	Apply(ctx context.Context, sessionID, inputPath, scratchDir string, cfg aitransform.Config) (string, error)
}

// ThumbnailWidth is the output width for artifact thumbnails.
const ThumbnailWidth = 300

// Options is the per-invocation request from the task scheduler. It does not
// outlive the single Run call.
type Options struct {
	// Format is the client's requested output format, reconciled against the
	// actual input frame count before dispatch.
	Format OutputFormat

	Aspect      AspectRatio
	Overlay     bool
	AITransform bool

	// Prompt is the experience-configured AI transform instruction.
	Prompt string

	// AttemptNumber and TaskID identify this run for the retry supervisor.
	AttemptNumber int
	TaskID        string
}

// Pipeline wires the processing components together. All fields are required
// except Transform, which may be nil when AI transforms are disabled platform-wide.
type Pipeline struct {
	Blobs      BlobStore
	Tracker    session.Tracker
	Transcoder Transcoder
	Transform  Transformer
}

// Run executes the full processing pipeline for one session and returns the
// recorded outputs. At most one in-flight run per session id is assumed; the
// task queue's deduplication enforces that, not this core.
func (p *Pipeline) Run(ctx context.Context, sessionID string, opts Options) (*session.Outputs, error) {
	start := time.Now()

	outputs, err := p.run(ctx, sessionID, opts, start)

	rec := metrics.New("FrameBooth").
		Property("SessionId", sessionID).
		Metric("ProcessingMs", float64(time.Since(start).Milliseconds()), metrics.UnitMilliseconds)
	if err != nil {
		rec.Count("PipelineErrors").Dimension("ErrorCode", errorCode(err))
	} else {
		rec.Count("PipelineRuns").
			Dimension("Format", outputs.Format).
			Metric("OutputSizeBytes", float64(outputs.SizeBytes), metrics.UnitBytes)
	}
	rec.Flush()

	return outputs, err
}

func (p *Pipeline) run(ctx context.Context, sessionID string, opts Options, start time.Time) (*session.Outputs, error) {
	sess, err := p.Tracker.Get(ctx, sessionID)
	if err != nil {
		return nil, p.fail(ctx, sessionID, fmt.Errorf("fetch session: %w", err))
	}
	if sess == nil {
		return nil, p.fail(ctx, sessionID, validationf("session %s not found", sessionID))
	}

	if len(sess.InputAssets) == 0 {
		return nil, p.fail(ctx, sessionID, validationf("session %s has no input assets", sessionID))
	}

	format := ReconcileFormat(opts.Format, len(sess.InputAssets))
	if format != opts.Format {
		log.Info().
			Str("sessionId", sessionID).
			Str("requested", string(opts.Format)).
			Str("actual", string(format)).
			Int("frames", len(sess.InputAssets)).
			Msg("Reconciled output format against input frame count")
	}
	cfg := ResolveConfig(format, opts.Aspect)

	if format != FormatImage && len(sess.InputAssets) < 2 {
		return nil, p.fail(ctx, sessionID, validationf("%s output needs at least 2 input assets, got %d", format, len(sess.InputAssets)))
	}

	if err := p.Tracker.MarkPending(ctx, sessionID, opts.AttemptNumber, opts.TaskID); err != nil {
		return nil, p.fail(ctx, sessionID, fmt.Errorf("mark pending: %w", err))
	}
	if err := p.Tracker.MarkRunning(ctx, sessionID, session.StepDownloading); err != nil {
		return nil, p.fail(ctx, sessionID, fmt.Errorf("mark running: %w", err))
	}

	scratch, cleanup, err := newScratchDir(sessionID)
	if err != nil {
		return nil, p.fail(ctx, sessionID, err)
	}
	defer cleanup()

	log.Info().
		Str("sessionId", sessionID).
		Str("format", string(format)).
		Str("aspect", string(opts.Aspect)).
		Bool("overlay", opts.Overlay).
		Bool("aiTransform", opts.AITransform).
		Int("frames", len(sess.InputAssets)).
		Msg("Pipeline run started")

	var primaryPath, thumbPath string
	switch format {
	case FormatImage:
		primaryPath, thumbPath, err = p.runImage(ctx, sess, scratch, cfg, opts)
	case FormatGIF:
		primaryPath, thumbPath, err = p.runGIF(ctx, sess, scratch, cfg, opts)
	case FormatVideo:
		primaryPath, thumbPath, err = p.runVideo(ctx, sess, scratch, cfg)
	default:
		err = validationf("unsupported output format %q", format)
	}
	if err != nil {
		return nil, p.fail(ctx, sessionID, err)
	}

	outputs, err := p.uploadAndFinalize(ctx, sess, cfg, primaryPath, thumbPath, start)
	if err != nil {
		return nil, p.fail(ctx, sessionID, err)
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("url", outputs.PrimaryURL).
		Int64("processing_ms", outputs.ProcessingTimeMs).
		Msg("Pipeline run complete")
	return outputs, nil
}

// fail records the terminal error on the session document and returns err
// unchanged, so the session record and the propagated error always agree. The
// MarkFailed write is idempotent: steps that already recorded their own failure
// (the AI transform) produce the same code again.
func (p *Pipeline) fail(ctx context.Context, sessionID string, err error) error {
	code := errorCode(err)
	if markErr := p.Tracker.MarkFailed(ctx, sessionID, code, err.Error()); markErr != nil {
		log.Error().Err(markErr).Str("sessionId", sessionID).Msg("Failed to record pipeline failure")
	}
	return err
}

// uploadAndFinalize pushes the primary artifact and its thumbnail concurrently,
// then replaces the processing sub-document with outputs in one write.
func (p *Pipeline) uploadAndFinalize(ctx context.Context, sess *session.Session, cfg Config, primaryPath, thumbPath string, start time.Time) (*session.Outputs, error) {
	if err := p.Tracker.UpdateStep(ctx, sess.ID, session.StepUploading); err != nil {
		return nil, fmt.Errorf("update step: %w", err)
	}

	primaryKey := storage.OutputKey(sess.ProjectID, sess.ID, storage.KindOutput, cfg.Format.Ext())
	thumbKey := storage.OutputKey(sess.ProjectID, sess.ID, storage.KindThumb, "jpg")

	primaryURL, thumbURL, err := p.uploadArtifacts(ctx, primaryPath, primaryKey, thumbPath, thumbKey)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(primaryPath)
	if err != nil {
		return nil, fmt.Errorf("stat output artifact: %w", err)
	}

	outputs := &session.Outputs{
		PrimaryURL:       primaryURL,
		ThumbnailURL:     thumbURL,
		Format:           cfg.Format.OutputName(),
		Width:            cfg.Width,
		Height:           cfg.Height,
		SizeBytes:        info.Size(),
		CompletedAt:      time.Now().UnixMilli(),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	if err := p.Tracker.Finalize(ctx, sess.ID, outputs); err != nil {
		return nil, fmt.Errorf("finalize session: %w", err)
	}
	return outputs, nil
}
