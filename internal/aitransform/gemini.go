package aitransform

// gemini.go is a REST API client for Gemini image editing. Direct HTTP is used
// instead of the Go SDK because the SDK does not support image output for the
// image-preview models.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// geminiBaseURL is the Gemini REST API base URL.
const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultModel is the image generation model used unless overridden by the
// BOOTH_AI_MODEL environment variable.
const DefaultModel = "gemini-3-pro-image-preview"

// ModelName resolves the generation model from the environment.
func ModelName() string {
	if env := os.Getenv("BOOTH_AI_MODEL"); env != "" {
		return env
	}
	return DefaultModel
}

// GeminiClient calls the Gemini image model via REST for guest photo transforms.
type GeminiClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ Provider = (*GeminiClient)(nil)

// NewGeminiClient creates a client for Gemini image editing.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		model:  ModelName(),
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // Image generation can take 10-30s
		},
	}
}

// --- REST API request/response types ---

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobData `json:"inlineData,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiBlobData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiAPIError   `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// EditImage sends the guest photo plus the experience prompt to Gemini and
// returns the transformed image bytes.
func (c *GeminiClient) EditImage(ctx context.Context, req *Request) (*Result, error) {
	startTime := time.Now()
	log.Info().
		Str("model", c.model).
		Int("image_bytes", len(req.ImageBytes)).
		Str("aspect_ratio", req.AspectRatio).
		Int("reference_images", len(req.ReferenceImages)).
		Msg("Sending image to Gemini for transform")

	parts := []geminiPart{
		{
			InlineData: &geminiBlobData{
				MIMEType: req.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(req.ImageBytes),
			},
		},
	}
	for _, ref := range req.ReferenceImages {
		parts = append(parts, geminiPart{
			InlineData: &geminiBlobData{
				MIMEType: "image/png",
				Data:     base64.StdEncoding.EncodeToString(ref),
			},
		})
	}
	parts = append(parts, geminiPart{Text: req.Prompt})

	apiReq := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			ImageConfig:        &geminiImageConfig{AspectRatio: req.AspectRatio},
		},
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, &ProviderError{Kind: KindOther, Message: fmt.Sprintf("marshal request: %v", err)}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", geminiBaseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Kind: KindOther, Message: fmt.Sprintf("create request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, &ProviderError{Kind: KindTimeout, Message: "generation request timed out"}
		}
		return nil, &ProviderError{Kind: KindAPIError, Message: fmt.Sprintf("HTTP request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Kind: KindAPIError, Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Gemini API returned error")
		return nil, classifyHTTPStatus(resp.StatusCode, string(respBody))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, &ProviderError{Kind: KindAPIError, Message: fmt.Sprintf("parse response: %v", err)}
	}
	if geminiResp.Error != nil {
		return nil, &ProviderError{
			Kind:    KindAPIError,
			Message: fmt.Sprintf("API error: %s (code: %d)", geminiResp.Error.Message, geminiResp.Error.Code),
		}
	}

	result := &Result{}
	var text string
	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil {
				decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, &ProviderError{Kind: KindAPIError, Message: fmt.Sprintf("decode image data: %v", err)}
				}
				result.ImageBytes = decoded
				result.MIMEType = part.InlineData.MIMEType
			}
			if part.Text != "" {
				text += part.Text
			}
		}
	}

	if result.ImageBytes == nil {
		return nil, &ProviderError{
			Kind:    KindAPIError,
			Message: fmt.Sprintf("no image returned in response (text: %s)", truncateString(text, 200)),
		}
	}

	log.Info().
		Int("output_bytes", len(result.ImageBytes)).
		Str("output_mime", result.MIMEType).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini transform complete")
	return result, nil
}

// classifyHTTPStatus maps non-200 responses to provider error kinds.
func classifyHTTPStatus(status int, body string) *ProviderError {
	msg := fmt.Sprintf("API returned status %d: %s", status, truncateString(body, 200))
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ProviderError{Kind: KindInvalidConfig, Message: msg}
	case http.StatusBadRequest:
		return &ProviderError{Kind: KindInvalidInputImage, Message: msg}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &ProviderError{Kind: KindTimeout, Message: msg}
	default:
		return &ProviderError{Kind: KindAPIError, Message: msg}
	}
}

// isTimeout reports whether err is a network timeout.
func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
