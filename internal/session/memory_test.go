package session

import (
	"context"
	"testing"
)

func TestTrackerLifecycle(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker()
	tracker.Seed(&Session{ID: "s1", ProjectID: "p1", InputAssets: []InputAsset{{URL: "s3://b/k.jpg"}}})

	if err := tracker.MarkPending(ctx, "s1", 2, "task-7"); err != nil {
		t.Fatal(err)
	}
	sess := tracker.Snapshot("s1")
	if sess.Processing == nil || sess.Processing.State != StatePending {
		t.Fatalf("after MarkPending: %+v", sess.Processing)
	}
	if sess.Processing.AttemptNumber != 2 || sess.Processing.TaskID != "task-7" {
		t.Errorf("attempt/task = %d/%q", sess.Processing.AttemptNumber, sess.Processing.TaskID)
	}

	if err := tracker.MarkRunning(ctx, "s1", StepDownloading); err != nil {
		t.Fatal(err)
	}
	if got := tracker.Snapshot("s1").Processing.State; got != StateRunning {
		t.Errorf("state = %q, want running", got)
	}

	if err := tracker.UpdateStep(ctx, "s1", StepProcessing); err != nil {
		t.Fatal(err)
	}
	if got := tracker.Snapshot("s1").Processing.CurrentStep; got != StepProcessing {
		t.Errorf("current step = %q", got)
	}

	outputs := &Outputs{PrimaryURL: "https://cdn/x.jpg", Format: "image"}
	if err := tracker.Finalize(ctx, "s1", outputs); err != nil {
		t.Fatal(err)
	}

	sess = tracker.Snapshot("s1")
	if sess.Processing != nil {
		t.Error("processing survived finalize; outputs and processing must be mutually exclusive")
	}
	if sess.Outputs == nil || sess.Outputs.PrimaryURL != "https://cdn/x.jpg" {
		t.Errorf("outputs = %+v", sess.Outputs)
	}
}

func TestTrackerMarkFailed(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker()
	tracker.Seed(&Session{ID: "s1"})

	if err := tracker.MarkPending(ctx, "s1", 1, ""); err != nil {
		t.Fatal(err)
	}
	if err := tracker.MarkFailed(ctx, "s1", "TRANSCODE_FAILED", "ffmpeg exploded"); err != nil {
		t.Fatal(err)
	}

	p := tracker.Snapshot("s1").Processing
	if p.State != StateFailed {
		t.Errorf("state = %q, want failed", p.State)
	}
	if p.Error == nil || p.Error.Code != "TRANSCODE_FAILED" || p.Error.Message != "ffmpeg exploded" {
		t.Errorf("error = %+v", p.Error)
	}
	if p.Error.Timestamp == 0 {
		t.Error("error timestamp not assigned")
	}
}

func TestTrackerStepRequiresProcessing(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker()
	tracker.Seed(&Session{ID: "s1"})

	if err := tracker.MarkRunning(ctx, "s1", StepDownloading); err == nil {
		t.Error("MarkRunning without MarkPending should fail")
	}
	if err := tracker.UpdateStep(ctx, "s1", StepProcessing); err == nil {
		t.Error("UpdateStep without processing sub-document should fail")
	}
}

func TestTrackerGetMissingSession(t *testing.T) {
	tracker := NewMemoryTracker()
	sess, err := tracker.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess != nil {
		t.Errorf("Get(missing) = %+v, want nil", sess)
	}
}
