// Package ffmpeg wraps the FFmpeg command-line tool behind a supervised process
// runner and a small library of media operations: scale/crop, thumbnails,
// palette-quantized animated GIFs, frame-sequence video assembly, and overlay
// compositing. Every operation validates its inputs before spawning the tool and
// its output afterwards, and fails with a typed *Error.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// RunSpec configures one supervised ffmpeg invocation.
type RunSpec struct {
	// Timeout is the hard wall-clock limit. The child process is killed on expiry.
	Timeout time.Duration

	// Description names the operation for logs and error messages.
	Description string
}

// Runner spawns and supervises ffmpeg invocations.
type Runner struct {
	// BinaryPath is the ffmpeg executable. Defaults to "ffmpeg" (resolved via PATH).
	BinaryPath string
}

// NewRunner returns a Runner using the ffmpeg binary from PATH.
func NewRunner() *Runner {
	return &Runner{BinaryPath: "ffmpeg"}
}

// CheckAvailable verifies the ffmpeg binary can be resolved. Call at worker
// startup so a missing install fails fast instead of on the first session.
func (r *Runner) CheckAvailable() error {
	path, err := exec.LookPath(r.BinaryPath)
	if err != nil {
		return newError(KindValidation, "ffmpeg not found in PATH: install FFmpeg with: brew install ffmpeg (macOS) or apt install ffmpeg (Linux)")
	}
	log.Debug().Str("path", path).Msg("ffmpeg found")
	return nil
}

// Run executes ffmpeg with the given arguments, enforcing spec.Timeout.
// Stdout and stderr are buffered in memory; on failure the stderr text is
// classified into an ErrorKind and attached to the returned *Error.
func (r *Runner) Run(ctx context.Context, args []string, spec RunSpec) error {
	runCtx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.BinaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().
		Str("operation", spec.Description).
		Dur("timeout", spec.Timeout).
		Strs("args", args).
		Msg("Running ffmpeg")

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err == nil {
		log.Debug().
			Str("operation", spec.Description).
			Dur("duration", elapsed).
			Msg("ffmpeg completed")
		return nil
	}

	stderrText := stderr.String()

	// Timeout takes precedence: CommandContext kills the child on deadline and
	// Run reports the resulting exit error, not context.DeadlineExceeded.
	if runCtx.Err() == context.DeadlineExceeded {
		log.Warn().
			Str("operation", spec.Description).
			Dur("timeout", spec.Timeout).
			Dur("duration", elapsed).
			Msg("ffmpeg killed after timeout")
		return &Error{
			Kind:    KindTimeout,
			Message: spec.Description + " exceeded " + spec.Timeout.String(),
			Stderr:  stderrText,
		}
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	kind := classifyStderr(stderrText)
	log.Warn().
		Err(err).
		Str("operation", spec.Description).
		Str("kind", string(kind)).
		Int("exit_code", exitCode).
		Str("stderr_tail", lastStderrLine(stderrText)).
		Dur("duration", elapsed).
		Msg("ffmpeg failed")

	return &Error{
		Kind:     kind,
		Message:  spec.Description + " failed",
		Stderr:   stderrText,
		ExitCode: exitCode,
	}
}
