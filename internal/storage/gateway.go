// Package storage is the blob gateway for the processing pipeline: it moves
// guest frames and overlay assets between S3 and local scratch space, and
// uploads finished artifacts to stable, publicly readable, long-cache locations.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// outputCacheControl is set on every uploaded artifact. Output keys are
// deterministic per session, so re-runs overwrite in place and the long TTL is
// safe.
const outputCacheControl = "public, max-age=31536000, immutable"

// Gateway moves blobs between S3 and local scratch space.
type Gateway struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewGateway creates a Gateway for the given bucket. publicBaseURL is the
// HTTPS prefix under which uploaded objects are publicly reachable, e.g.
// "https://media.framebooth.io".
func NewGateway(client *s3.Client, bucket, publicBaseURL string) *Gateway {
	return &Gateway{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Bucket returns the backing bucket name.
func (g *Gateway) Bucket() string {
	return g.bucket
}

// Download fetches an object to localPath. It fails if the object does not
// exist or downloads as zero bytes.
func (g *Gateway) Download(ctx context.Context, key, localPath string) error {
	log.Debug().Str("bucket", g.bucket).Str("key", key).Str("localPath", localPath).Msg("Downloading from S3")

	result, err := g.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &g.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("S3 GetObject %s: %w", key, err)
	}
	defer result.Body.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, result.Body)
	if err != nil {
		return fmt.Errorf("download %s: %w", key, err)
	}
	if written == 0 {
		return fmt.Errorf("downloaded zero bytes for key %s", key)
	}

	log.Debug().Str("key", key).Int64("size_bytes", written).Msg("Download complete")
	return nil
}

// Upload stores a local file at the given key, publicly readable with long-lived
// cache headers, and returns the stable public URL. Zero-byte local files are
// rejected.
func (g *Gateway) Upload(ctx context.Context, localPath, key string) (string, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return "", fmt.Errorf("stat upload source: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("refusing to upload zero-byte file %s", localPath)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload source: %w", err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       &g.bucket,
		Key:          &key,
		Body:         f,
		ContentType:  &contentType,
		CacheControl: aws.String(outputCacheControl),
		ACL:          s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("S3 PutObject %s: %w", key, err)
	}

	url := g.PublicURL(key)
	log.Info().
		Str("key", key).
		Int64("size_bytes", info.Size()).
		Str("content_type", contentType).
		Str("url", url).
		Msg("Uploaded to S3")
	return url, nil
}

// PublicURL returns the stable public HTTPS URL for a storage key.
func (g *Gateway) PublicURL(key string) string {
	return g.publicBaseURL + "/" + key
}
