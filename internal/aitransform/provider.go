// Package aitransform wraps the external AI image generation provider behind a
// uniform interface and translates provider-specific failures into the
// pipeline's smaller error taxonomy. The transform step also owns its session
// state side effects: it marks the ai-transform step before calling the
// provider and records the session as failed before re-raising any error.
package aitransform

import "context"

// Kind classifies a provider-boundary failure.
type Kind string

const (
	KindReferenceImageNotFound Kind = "reference-image-not-found"
	KindInvalidConfig          Kind = "invalid-config"
	KindAPIError               Kind = "api-error"
	KindInvalidInputImage      Kind = "invalid-input-image"
	KindTimeout                Kind = "timeout"
	KindOther                  Kind = "other"
)

// ProviderError is a failure at the generation provider boundary.
type ProviderError struct {
	Kind    Kind
	Message string
}

func (e *ProviderError) Error() string {
	return "ai provider " + string(e.Kind) + ": " + e.Message
}

// Request is the generation provider contract.
type Request struct {
	ImageBytes      []byte
	MIMEType        string
	Prompt          string
	AspectRatio     string // provider shape, e.g. "1:1" or "9:16"
	ReferenceImages [][]byte
}

// Result is the transformed image returned by the provider.
type Result struct {
	ImageBytes []byte
	MIMEType   string
}

// Provider is the remote AI image generation service.
type Provider interface {
	EditImage(ctx context.Context, req *Request) (*Result, error)
}
