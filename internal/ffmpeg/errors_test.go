package ffmpeg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClassifyStderr(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   ErrorKind
	}{
		{"invalid data", "frame.jpg: Invalid data found when processing input", KindValidation},
		{"missing file", "frame.jpg: No such file or directory", KindValidation},
		{"no streams", "output.mp4: does not contain any stream", KindValidation},
		{"moov atom", "moov atom not found", KindValidation},
		{"unknown encoder", "Unknown encoder 'libx265'", KindCodec},
		{"encoder not found", "Encoder not found", KindCodec},
		{"permission", "output.gif: Permission denied", KindFilesystem},
		{"disk full", "No space left on device", KindFilesystem},
		{"oom", "Cannot allocate memory", KindMemory},
		{"unmatched", "something exploded in an unexpected way", KindUnknown},
		{"empty", "", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStderr(tt.stderr); got != tt.want {
				t.Errorf("classifyStderr(%q) = %q, want %q", tt.stderr, got, tt.want)
			}
		})
	}
}

func TestErrorMessageIncludesLastStderrLine(t *testing.T) {
	err := &Error{
		Kind:    KindCodec,
		Message: "video assembly failed",
		Stderr:  "header line\nintermediate noise\nEncoder not found\n\n",
	}
	msg := err.Error()
	if !strings.Contains(msg, "Encoder not found") {
		t.Errorf("Error() = %q, want the last stderr line included", msg)
	}
	if !strings.Contains(msg, "codec") {
		t.Errorf("Error() = %q, want the kind included", msg)
	}
}

func TestLastStderrLine(t *testing.T) {
	if got := lastStderrLine("a\nb\n   \n"); got != "b" {
		t.Errorf("lastStderrLine = %q, want b", got)
	}
	if got := lastStderrLine(""); got != "" {
		t.Errorf("lastStderrLine(empty) = %q", got)
	}
}

func TestValidateInputs(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.jpg")
	if err := os.WriteFile(good, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.jpg")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := validateInputs(good); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "nope.jpg")},
		{"empty", empty},
		{"directory", dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInputs(tt.path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			ffErr, ok := err.(*Error)
			if !ok || ffErr.Kind != KindValidation {
				t.Errorf("err = %v, want KindValidation", err)
			}
		})
	}

	// One bad file fails the whole batch.
	if err := validateInputs(good, empty); err == nil {
		t.Error("batch with empty file accepted")
	}
}

func TestValidateOutput(t *testing.T) {
	dir := t.TempDir()

	if err := validateOutput(filepath.Join(dir, "missing.gif")); err == nil {
		t.Error("missing output accepted")
	}

	empty := filepath.Join(dir, "empty.gif")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := validateOutput(empty); err == nil {
		t.Error("empty output accepted")
	}

	good := filepath.Join(dir, "good.gif")
	if err := os.WriteFile(good, []byte("GIF89a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := validateOutput(good); err != nil {
		t.Errorf("valid output rejected: %v", err)
	}
}
