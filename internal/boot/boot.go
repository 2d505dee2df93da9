// Package boot provides worker startup bootstrap logic.
//
// Every worker entry point needs some subset of: AWS config, the S3 media
// gateway, the DynamoDB session tracker, and the AI provider credential. This
// package extracts the common init patterns so each command's setup is a short
// composition of helpers. Missing required configuration is fatal at startup,
// never mid-run.
package boot

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/framebooth/pipeline/internal/session"
	"github.com/framebooth/pipeline/internal/storage"
)

// Environment variables consumed at startup.
const (
	EnvMediaBucket   = "BOOTH_MEDIA_BUCKET"
	EnvPublicBaseURL = "BOOTH_PUBLIC_BASE_URL"
	EnvSessionsTable = "BOOTH_SESSIONS_TABLE"
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
)

// InitAWS loads the default AWS config. Fatals if the SDK cannot resolve
// credentials or region.
func InitAWS() aws.Config {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return cfg
}

// InitStorage creates the media gateway from BOOTH_MEDIA_BUCKET and
// BOOTH_PUBLIC_BASE_URL. Fatals if either is empty.
func InitStorage(cfg aws.Config) *storage.Gateway {
	bucket := os.Getenv(EnvMediaBucket)
	if bucket == "" {
		log.Fatal().Str("envVar", EnvMediaBucket).Msg("Media bucket environment variable is required")
	}
	baseURL := os.Getenv(EnvPublicBaseURL)
	if baseURL == "" {
		log.Fatal().Str("envVar", EnvPublicBaseURL).Msg("Public base URL environment variable is required")
	}
	return storage.NewGateway(s3.NewFromConfig(cfg), bucket, baseURL)
}

// InitTracker creates the DynamoDB session tracker from BOOTH_SESSIONS_TABLE.
// Fatals if the env var is empty.
func InitTracker(cfg aws.Config) *session.DynamoTracker {
	tableName := os.Getenv(EnvSessionsTable)
	if tableName == "" {
		log.Fatal().Str("envVar", EnvSessionsTable).Msg("Sessions table environment variable is required")
	}
	return session.NewDynamoTracker(dynamodb.NewFromConfig(cfg), tableName)
}

// GeminiKey returns the AI provider credential from the environment. A blank
// key is not fatal here: runs without the AI transform never need it, and runs
// that do fail with a typed config error at the transform step.
func GeminiKey() string {
	key := os.Getenv(EnvGeminiAPIKey)
	if key == "" {
		log.Warn().Str("envVar", EnvGeminiAPIKey).Msg("AI provider credential not set; AI transforms will fail")
	}
	return key
}
