package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// OutputKind distinguishes the primary artifact from its thumbnail in output keys.
type OutputKind string

const (
	KindOutput OutputKind = "output"
	KindThumb  OutputKind = "thumb"
)

// OutputKey returns the deterministic storage key for a session artifact:
// {projectId}/results/{sessionId}-{output|thumb}.{ext}. Re-runs of the same
// session overwrite rather than accumulate.
func OutputKey(projectID, sessionID string, kind OutputKind, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s/results/%s-%s.%s", projectID, sessionID, kind, ext)
}

// OverlayKey returns the conventional storage key for a company's branding
// overlay for the given aspect ratio class ("square" or "story").
func OverlayKey(companyID, aspect string) string {
	return fmt.Sprintf("media/%s/overlays/%s-overlay.png", companyID, aspect)
}

// KeyFromURL extracts the underlying storage key from any of the reference
// shapes the platform has used over time:
//
//   - s3://bucket/path/to/object (scheme-qualified, current)
//   - https://bucket.s3.region.amazonaws.com/path/to/object (virtual-hosted)
//   - https://s3.region.amazonaws.com/bucket/path/to/object (legacy path-style)
//   - https://cdn.example.com/path/to/object (public base URL)
//   - path/to/object (bare key, passed through)
func KeyFromURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("empty storage reference")
	}
	if !strings.Contains(rawURL, "://") {
		// Already a bare key.
		return strings.TrimPrefix(rawURL, "/"), nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse storage reference %q: %w", rawURL, err)
	}

	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		return "", fmt.Errorf("storage reference %q has no object path", rawURL)
	}

	switch u.Scheme {
	case "s3":
		// s3://bucket/key — host is the bucket.
		return path, nil
	case "http", "https":
		// Legacy path-style URLs embed the bucket as the first path segment.
		if strings.HasPrefix(u.Host, "s3.") || strings.HasPrefix(u.Host, "s3-") {
			if idx := strings.Index(path, "/"); idx >= 0 {
				return path[idx+1:], nil
			}
			return "", fmt.Errorf("path-style reference %q has no key after bucket", rawURL)
		}
		// Virtual-hosted S3 URLs and public CDN URLs both carry the key as the path.
		return path, nil
	default:
		return "", fmt.Errorf("unsupported storage reference scheme %q", u.Scheme)
	}
}
