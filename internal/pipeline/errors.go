package pipeline

import (
	"errors"
	"fmt"

	"github.com/framebooth/pipeline/internal/aitransform"
	"github.com/framebooth/pipeline/internal/ffmpeg"
)

// Orchestrator-level error codes recorded in processing.error.code. AI transform
// failures keep their own codes (see aitransform).
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeTranscodeTimeout = "TRANSCODE_TIMEOUT"
	CodeTranscodeFailed  = "TRANSCODE_FAILED"
	CodeStorageFailed    = "STORAGE_FAILED"
	CodePipelineFailed   = "PIPELINE_FAILED"
)

// validationError is an orchestrator-level precondition failure (missing or
// insufficient input assets, missing overlay asset).
type validationError struct {
	msg string
}

func (e *validationError) Error() string {
	return e.msg
}

func validationf(format string, args ...interface{}) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// storageError wraps a blob gateway failure so errorCode can distinguish it
// from generic failures.
type storageError struct {
	err error
}

func (e *storageError) Error() string {
	return "storage: " + e.err.Error()
}

func (e *storageError) Unwrap() error {
	return e.err
}

// errorCode maps any pipeline failure to the code recorded on the session
// document. The session record and the returned error always agree.
func errorCode(err error) string {
	var aiErr *aitransform.Error
	if errors.As(err, &aiErr) {
		return aiErr.Code
	}

	var ffErr *ffmpeg.Error
	if errors.As(err, &ffErr) {
		switch ffErr.Kind {
		case ffmpeg.KindTimeout:
			return CodeTranscodeTimeout
		case ffmpeg.KindValidation:
			return CodeInvalidInput
		default:
			return CodeTranscodeFailed
		}
	}

	var valErr *validationError
	if errors.As(err, &valErr) {
		return CodeInvalidInput
	}

	var stErr *storageError
	if errors.As(err, &stErr) {
		return CodeStorageFailed
	}

	return CodePipelineFailed
}
