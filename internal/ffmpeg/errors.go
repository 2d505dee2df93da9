package ffmpeg

import (
	"fmt"
	"strings"
)

// ErrorKind categorizes a transcode failure. Classification from stderr text is
// best-effort diagnostic metadata, not a contract; the raw stderr and exit code
// are always attached for debugging.
type ErrorKind string

const (
	// KindValidation means the input data was missing, empty, oversized, or unreadable.
	KindValidation ErrorKind = "validation"

	// KindTimeout means the operation exceeded its wall-clock limit and the
	// child process was killed.
	KindTimeout ErrorKind = "timeout"

	// KindCodec means an encoder or decoder was unavailable or unsupported.
	KindCodec ErrorKind = "codec"

	// KindFilesystem means a permission or disk-space problem.
	KindFilesystem ErrorKind = "filesystem"

	// KindMemory means the tool failed to allocate memory.
	KindMemory ErrorKind = "memory"

	// KindUnknown is the fallback when stderr matched no known pattern.
	KindUnknown ErrorKind = "unknown"
)

// Error is the typed failure returned by every transcoder operation.
type Error struct {
	Kind     ErrorKind
	Message  string
	Stderr   string
	ExitCode int
}

func (e *Error) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("ffmpeg %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("ffmpeg %s: %s: %s", e.Kind, e.Message, lastStderrLine(e.Stderr))
}

// newError builds an Error with the given kind and formatted message.
func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// stderrPatterns maps lowercase stderr substrings to error kinds, checked in order.
var stderrPatterns = []struct {
	substr string
	kind   ErrorKind
}{
	{"invalid data found", KindValidation},
	{"no such file or directory", KindValidation},
	{"does not contain any stream", KindValidation},
	{"invalid argument", KindValidation},
	{"moov atom not found", KindValidation},
	{"unknown encoder", KindCodec},
	{"encoder not found", KindCodec},
	{"codec not currently supported", KindCodec},
	{"incorrect codec parameters", KindCodec},
	{"permission denied", KindFilesystem},
	{"no space left on device", KindFilesystem},
	{"read-only file system", KindFilesystem},
	{"cannot allocate memory", KindMemory},
	{"out of memory", KindMemory},
}

// classifyStderr maps ffmpeg stderr text to an ErrorKind by substring matching.
// Returns KindUnknown when nothing matches.
func classifyStderr(stderr string) ErrorKind {
	lower := strings.ToLower(stderr)
	for _, p := range stderrPatterns {
		if strings.Contains(lower, p.substr) {
			return p.kind
		}
	}
	return KindUnknown
}

// lastStderrLine returns the last non-empty line of stderr, which is where
// ffmpeg usually puts the actual failure reason.
func lastStderrLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
