package storage

import "testing"

func TestOutputKey(t *testing.T) {
	got := OutputKey("proj-1", "sess-9", KindOutput, "gif")
	want := "proj-1/results/sess-9-output.gif"
	if got != want {
		t.Errorf("OutputKey = %q, want %q", got, want)
	}

	// Re-runs of the same session must produce the same key.
	if again := OutputKey("proj-1", "sess-9", KindOutput, "gif"); again != got {
		t.Errorf("OutputKey not deterministic: %q vs %q", got, again)
	}

	if got := OutputKey("p", "s", KindThumb, ".jpg"); got != "p/results/s-thumb.jpg" {
		t.Errorf("dotted ext key = %q", got)
	}
}

func TestOverlayKey(t *testing.T) {
	got := OverlayKey("co-42", "story")
	want := "media/co-42/overlays/story-overlay.png"
	if got != want {
		t.Errorf("OverlayKey = %q, want %q", got, want)
	}
}

func TestKeyFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"s3 scheme", "s3://booth-media/proj/inputs/f.jpg", "proj/inputs/f.jpg", false},
		{"virtual hosted", "https://booth-media.s3.eu-west-1.amazonaws.com/proj/inputs/f.jpg", "proj/inputs/f.jpg", false},
		{"path style", "https://s3.eu-west-1.amazonaws.com/booth-media/proj/inputs/f.jpg", "proj/inputs/f.jpg", false},
		{"cdn url", "https://media.framebooth.io/proj/results/s-output.gif", "proj/results/s-output.gif", false},
		{"bare key", "proj/inputs/f.jpg", "proj/inputs/f.jpg", false},
		{"bare key leading slash", "/proj/inputs/f.jpg", "proj/inputs/f.jpg", false},
		{"empty", "", "", true},
		{"no object path", "https://media.framebooth.io/", "", true},
		{"path style without key", "https://s3.amazonaws.com/booth-media", "", true},
		{"unsupported scheme", "ftp://host/key", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KeyFromURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("KeyFromURL(%q) = %q, want error", tt.url, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("KeyFromURL(%q): %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("KeyFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
