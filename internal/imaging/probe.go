package imaging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// FrameInfo is the EXIF metadata extracted from a downloaded guest frame.
// All fields are best-effort; zero values mean the data was absent.
type FrameInfo struct {
	CameraMake  string
	CameraModel string
	DateTaken   time.Time
}

// ProbeFrame reads EXIF metadata from an image file. Used for diagnostics only:
// callers log the result and never fail a run on a probe error.
func ProbeFrame(path string) (*FrameInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	exifData, err := imagemeta.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode EXIF metadata: %w", err)
	}

	info := &FrameInfo{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
	}
	if !exifData.DateTimeOriginal().IsZero() {
		info.DateTaken = exifData.DateTimeOriginal()
	} else if !exifData.CreateDate().IsZero() {
		info.DateTaken = exifData.CreateDate()
	}
	return info, nil
}

// LogFrameInfo probes a frame and logs what it finds. Errors are demoted to
// debug: most browser-captured frames carry no EXIF at all.
func LogFrameInfo(path, filename string) {
	info, err := ProbeFrame(path)
	if err != nil {
		log.Debug().Err(err).Str("filename", filename).Msg("No EXIF metadata in frame")
		return
	}
	log.Debug().
		Str("filename", filename).
		Str("camera", strings.TrimSpace(info.CameraMake+" "+info.CameraModel)).
		Time("date_taken", info.DateTaken).
		Msg("Frame metadata")
}
