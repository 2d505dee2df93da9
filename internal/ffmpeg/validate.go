package ffmpeg

import (
	"os"
)

// MaxInputBytes is the per-file input ceiling. Guest uploads larger than this are
// rejected before ffmpeg ever runs.
const MaxInputBytes = 50 * 1024 * 1024

// validateInputs checks each input file exists, is non-empty, and is under the
// 50MB ceiling. Fails fast with KindValidation.
func validateInputs(paths ...string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return newError(KindValidation, "input file not found: %s", path)
			}
			return newError(KindValidation, "stat input file %s: %v", path, err)
		}
		if info.IsDir() {
			return newError(KindValidation, "input path is a directory: %s", path)
		}
		if info.Size() == 0 {
			return newError(KindValidation, "input file is empty: %s", path)
		}
		if info.Size() > MaxInputBytes {
			return newError(KindValidation, "input file %s is %d bytes, exceeds %d byte limit", path, info.Size(), MaxInputBytes)
		}
	}
	return nil
}

// validateOutput checks the output file exists and is non-empty after the tool
// ran, catching silent corruption where ffmpeg exits zero but writes nothing.
func validateOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return newError(KindValidation, "output file missing after transcode: %s", path)
	}
	if info.Size() == 0 {
		return newError(KindValidation, "output file is empty after transcode: %s", path)
	}
	return nil
}
