package ffmpeg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteConcatPlaylist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playlist.txt")

	frames := []string{"/tmp/a.jpg", "/tmp/b.jpg", "/tmp/c.jpg"}
	if err := writeConcatPlaylist(path, frames, 0.5); err != nil {
		t.Fatalf("writeConcatPlaylist: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)

	want := "ffconcat version 1.0\n" +
		"file '/tmp/a.jpg'\n" +
		"duration 0.500\n" +
		"file '/tmp/b.jpg'\n" +
		"duration 0.500\n" +
		"file '/tmp/c.jpg'\n"
	if got != want {
		t.Errorf("playlist = %q, want %q", got, want)
	}
}

// The last frame gets no duration directive so the loop has no trailing delay.
func TestWriteConcatPlaylistOmitsLastDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playlist.txt")

	if err := writeConcatPlaylist(path, []string{"/a.jpg", "/b.jpg"}, 0.2); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if n := strings.Count(string(data), "duration"); n != 1 {
		t.Errorf("duration directives = %d, want 1", n)
	}
}

func TestWriteConcatPlaylistZeroDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playlist.txt")

	if err := writeConcatPlaylist(path, []string{"/a.jpg", "/b.jpg"}, 0); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "duration") {
		t.Error("palette playlist should carry no duration directives")
	}
}

func TestEscapeConcatPath(t *testing.T) {
	got := escapeConcatPath("/tmp/guest's photo.jpg")
	want := `/tmp/guest'\''s photo.jpg`
	if got != want {
		t.Errorf("escapeConcatPath = %q, want %q", got, want)
	}
}

func TestUniquePaths(t *testing.T) {
	got := uniquePaths([]string{"a", "b", "c", "b", "a"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("uniquePaths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("uniquePaths[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
