package aitransform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/framebooth/pipeline/internal/session"
)

// Pipeline-level error codes. The provider's finer-grained kinds collapse to
// these three at the pipeline boundary.
const (
	CodeReferenceImageNotFound = "REFERENCE_IMAGE_NOT_FOUND"
	CodeConfigInvalid          = "AI_CONFIG_INVALID"
	CodeTransformFailed        = "AI_TRANSFORM_FAILED"
)

// Error is an AI transform failure carrying its pipeline-level code.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Config resolves what the provider is asked to do for one session.
type Config struct {
	// Prompt is the experience-configured transform instruction.
	Prompt string

	// AspectRatio is the provider-shape target, e.g. "1:1" or "9:16".
	AspectRatio string

	// ReferencePaths are optional local style-reference images, already
	// downloaded to scratch space.
	ReferencePaths []string
}

// Step applies the AI transform to a downloaded guest photo. It owns the
// session state transitions around the provider call so progress watchers can
// distinguish "still transforming" from "stuck downloading", and so the session
// document reflects terminal state even before the orchestrator's generic
// failure handler runs.
type Step struct {
	APIKey   string
	Provider Provider
	Tracker  session.Tracker
}

// Apply transforms the image at inputPath and returns the path of the
// transformed image inside scratchDir. Every failure is recorded on the session
// via MarkFailed before being returned.
func (s *Step) Apply(ctx context.Context, sessionID, inputPath, scratchDir string, cfg Config) (string, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return "", s.fail(ctx, sessionID, CodeConfigInvalid, "AI transform credential is missing or blank", nil)
	}

	if err := s.Tracker.UpdateStep(ctx, sessionID, session.StepAITransform); err != nil {
		return "", s.fail(ctx, sessionID, CodeTransformFailed, fmt.Sprintf("update step: %v", err), err)
	}

	imageBytes, err := os.ReadFile(inputPath)
	if err != nil {
		return "", s.fail(ctx, sessionID, CodeTransformFailed, fmt.Sprintf("read input image: %v", err), err)
	}

	var refs [][]byte
	for _, refPath := range cfg.ReferencePaths {
		data, err := os.ReadFile(refPath)
		if err != nil {
			return "", s.fail(ctx, sessionID, CodeReferenceImageNotFound,
				fmt.Sprintf("reference image %s not found", filepath.Base(refPath)), err)
		}
		refs = append(refs, data)
	}

	result, err := s.Provider.EditImage(ctx, &Request{
		ImageBytes:      imageBytes,
		MIMEType:        mimeFromExt(inputPath),
		Prompt:          cfg.Prompt,
		AspectRatio:     cfg.AspectRatio,
		ReferenceImages: refs,
	})
	if err != nil {
		code := mapProviderError(err)
		return "", s.fail(ctx, sessionID, code, err.Error(), err)
	}

	outputPath := filepath.Join(scratchDir, "ai-transformed"+extFromMIME(result.MIMEType))
	if err := os.WriteFile(outputPath, result.ImageBytes, 0o644); err != nil {
		return "", s.fail(ctx, sessionID, CodeTransformFailed, fmt.Sprintf("write transformed image: %v", err), err)
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("output", outputPath).
		Int("output_bytes", len(result.ImageBytes)).
		Msg("AI transform applied")
	return outputPath, nil
}

// fail records the failure on the session document first, then returns the
// typed error. The early write is intentional: observers see the terminal state
// without waiting for the orchestrator's generic handler.
func (s *Step) fail(ctx context.Context, sessionID, code, message string, cause error) error {
	if err := s.Tracker.MarkFailed(ctx, sessionID, code, message); err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("Failed to record AI transform failure")
	}
	return &Error{Code: code, Message: message, cause: cause}
}

// mapProviderError collapses provider kinds to pipeline codes.
func mapProviderError(err error) string {
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		return CodeTransformFailed
	}
	switch provErr.Kind {
	case KindReferenceImageNotFound:
		return CodeReferenceImageNotFound
	case KindInvalidConfig:
		return CodeConfigInvalid
	default:
		// api-error, invalid-input-image, timeout, other
		return CodeTransformFailed
	}
}

func mimeFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func extFromMIME(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
