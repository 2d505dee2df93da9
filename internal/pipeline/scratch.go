package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// newScratchDir creates a fresh, exclusively-owned working directory for one
// pipeline run and returns it with a cleanup function. The cleanup must run on
// every exit path; callers defer it immediately.
func newScratchDir(sessionID string) (string, func(), error) {
	dir := filepath.Join(os.TempDir(), fmt.Sprintf("booth-%s-%s", sessionID, uuid.NewString()[:8]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}

	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Failed to remove scratch dir")
			return
		}
		log.Debug().Str("dir", dir).Msg("Scratch dir removed")
	}
	return dir, cleanup, nil
}
