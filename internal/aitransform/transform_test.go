package aitransform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/framebooth/pipeline/internal/session"
)

type fakeProvider struct {
	req    *Request
	result *Result
	err    error
}

func (f *fakeProvider) EditImage(_ context.Context, req *Request) (*Result, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newStep(t *testing.T, provider Provider) (*Step, *session.MemoryTracker) {
	t.Helper()
	tracker := session.NewMemoryTracker()
	tracker.Seed(&session.Session{ID: "sess-1", ProjectID: "proj-1"})
	if err := tracker.MarkPending(context.Background(), "sess-1", 1, "task-1"); err != nil {
		t.Fatal(err)
	}
	if err := tracker.MarkRunning(context.Background(), "sess-1", session.StepDownloading); err != nil {
		t.Fatal(err)
	}
	return &Step{APIKey: "key-123", Provider: provider, Tracker: tracker}, tracker
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "input.jpg")
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{result: &Result{ImageBytes: []byte("png-bytes"), MIMEType: "image/png"}}
	step, tracker := newStep(t, provider)

	out, err := step.Apply(context.Background(), "sess-1", writeInput(t, dir), dir, Config{
		Prompt:      "oil painting",
		AspectRatio: "9:16",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if filepath.Base(out) != "ai-transformed.png" {
		t.Errorf("output = %q, want extension to follow result MIME type", out)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "png-bytes" {
		t.Errorf("output bytes = %q, %v", data, err)
	}

	if provider.req.Prompt != "oil painting" || provider.req.AspectRatio != "9:16" {
		t.Errorf("provider request = %+v", provider.req)
	}
	if provider.req.MIMEType != "image/jpeg" {
		t.Errorf("input MIME = %q, want image/jpeg", provider.req.MIMEType)
	}

	last := tracker.StepHistory[len(tracker.StepHistory)-1]
	if last != session.StepAITransform {
		t.Errorf("last step = %q, want %q", last, session.StepAITransform)
	}
}

func TestApplyBlankCredential(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{}
	step, tracker := newStep(t, provider)
	step.APIKey = "   "

	_, err := step.Apply(context.Background(), "sess-1", writeInput(t, dir), dir, Config{Prompt: "p"})
	if err == nil {
		t.Fatal("expected error for blank credential")
	}

	var aiErr *Error
	if !errors.As(err, &aiErr) || aiErr.Code != CodeConfigInvalid {
		t.Errorf("err = %v, want code %q", err, CodeConfigInvalid)
	}
	if provider.req != nil {
		t.Error("provider called despite blank credential")
	}

	// The failure must already be on the session document.
	sess := tracker.Snapshot("sess-1")
	if sess.Processing.State != session.StateFailed || sess.Processing.Error.Code != CodeConfigInvalid {
		t.Errorf("session failure not recorded: %+v", sess.Processing)
	}
}

func TestApplyMissingReferenceImage(t *testing.T) {
	dir := t.TempDir()
	step, tracker := newStep(t, &fakeProvider{})

	_, err := step.Apply(context.Background(), "sess-1", writeInput(t, dir), dir, Config{
		Prompt:         "p",
		ReferencePaths: []string{filepath.Join(dir, "missing-ref.png")},
	})
	if err == nil {
		t.Fatal("expected error for missing reference image")
	}

	var aiErr *Error
	if !errors.As(err, &aiErr) || aiErr.Code != CodeReferenceImageNotFound {
		t.Errorf("err = %v, want code %q", err, CodeReferenceImageNotFound)
	}
	if got := tracker.Snapshot("sess-1").Processing.Error.Code; got != CodeReferenceImageNotFound {
		t.Errorf("recorded code = %q", got)
	}
}

func TestApplyProviderErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		wantCode string
	}{
		{"invalid config", KindInvalidConfig, CodeConfigInvalid},
		{"reference missing", KindReferenceImageNotFound, CodeReferenceImageNotFound},
		{"api error", KindAPIError, CodeTransformFailed},
		{"invalid input image", KindInvalidInputImage, CodeTransformFailed},
		{"timeout", KindTimeout, CodeTransformFailed},
		{"other", KindOther, CodeTransformFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			provider := &fakeProvider{err: &ProviderError{Kind: tt.kind, Message: "boom"}}
			step, tracker := newStep(t, provider)

			_, err := step.Apply(context.Background(), "sess-1", writeInput(t, dir), dir, Config{Prompt: "p"})
			if err == nil {
				t.Fatal("expected error")
			}

			var aiErr *Error
			if !errors.As(err, &aiErr) || aiErr.Code != tt.wantCode {
				t.Errorf("err = %v, want code %q", err, tt.wantCode)
			}
			if got := tracker.Snapshot("sess-1").Processing.Error.Code; got != tt.wantCode {
				t.Errorf("recorded code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestApplyWrapsNonProviderError(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{err: errors.New("connection reset")}
	step, _ := newStep(t, provider)

	_, err := step.Apply(context.Background(), "sess-1", writeInput(t, dir), dir, Config{Prompt: "p"})
	var aiErr *Error
	if !errors.As(err, &aiErr) || aiErr.Code != CodeTransformFailed {
		t.Errorf("err = %v, want code %q", err, CodeTransformFailed)
	}
}

func TestMIMERoundTrip(t *testing.T) {
	if got := mimeFromExt("/x/a.PNG"); got != "image/png" {
		t.Errorf("mimeFromExt(.PNG) = %q", got)
	}
	if got := mimeFromExt("/x/a.jpeg"); got != "image/jpeg" {
		t.Errorf("mimeFromExt(.jpeg) = %q", got)
	}
	if got := extFromMIME("image/webp"); got != ".webp" {
		t.Errorf("extFromMIME(webp) = %q", got)
	}
	if got := extFromMIME("image/jpeg"); got != ".jpg" {
		t.Errorf("extFromMIME(jpeg) = %q", got)
	}
}
