package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/framebooth/pipeline/internal/aitransform"
	"github.com/framebooth/pipeline/internal/boot"
	"github.com/framebooth/pipeline/internal/ffmpeg"
	"github.com/framebooth/pipeline/internal/logging"
	"github.com/framebooth/pipeline/internal/pipeline"
)

// CLI flags
var (
	sessionFlag string
	formatFlag  string
	aspectFlag  string
	overlayFlag bool
	aiFlag      bool
	promptFlag  string
	attemptFlag int
	taskIDFlag  string
)

// rootCmd is the main Cobra command for the worker.
var rootCmd = &cobra.Command{
	Use:   "boothworker",
	Short: "FrameBooth media processing worker",
	Long: `boothworker runs the server-side media pipeline for one photobooth session:
download the guest frames, optionally AI-transform them, scale and crop to the
target aspect ratio, composite the branding overlay, generate a thumbnail,
assemble the image/GIF/video artifact, and upload the results.

The worker is invoked once per session by the task scheduler and runs to
completion or terminal failure; retries are the scheduler's responsibility.`,
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process one photobooth session to completion",
	Run:   runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&sessionFlag, "session", "s", "", "Session ID to process (required)")
	processCmd.Flags().StringVarP(&formatFlag, "format", "f", "image", "Requested output format: image, gif, or video")
	processCmd.Flags().StringVarP(&aspectFlag, "aspect", "a", "square", "Output aspect ratio: square or story")
	processCmd.Flags().BoolVar(&overlayFlag, "overlay", false, "Composite the company branding overlay")
	processCmd.Flags().BoolVar(&aiFlag, "ai", false, "Apply the AI transform to the guest photo")
	processCmd.Flags().StringVar(&promptFlag, "prompt", "", "AI transform prompt (required with --ai)")
	processCmd.Flags().IntVar(&attemptFlag, "attempt", 1, "Attempt number assigned by the task scheduler")
	processCmd.Flags().StringVar(&taskIDFlag, "task-id", "", "Task ID assigned by the task scheduler")
	_ = processCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(processCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runProcess(cmd *cobra.Command, args []string) {
	logging.Init()

	format := pipeline.OutputFormat(formatFlag)
	switch format {
	case pipeline.FormatImage, pipeline.FormatGIF, pipeline.FormatVideo:
	default:
		log.Fatal().Str("format", formatFlag).Msg("Unknown output format")
	}

	aspect := pipeline.AspectRatio(aspectFlag)
	switch aspect {
	case pipeline.AspectSquare, pipeline.AspectStory:
	default:
		log.Fatal().Str("aspect", aspectFlag).Msg("Unknown aspect ratio")
	}

	if aiFlag && promptFlag == "" {
		log.Fatal().Msg("--ai requires --prompt")
	}

	runner := ffmpeg.NewRunner()
	if err := runner.CheckAvailable(); err != nil {
		log.Fatal().Err(err).Msg("ffmpeg is not available")
	}

	awsCfg := boot.InitAWS()
	tracker := boot.InitTracker(awsCfg)
	geminiKey := boot.GeminiKey()

	p := &pipeline.Pipeline{
		Blobs:      boot.InitStorage(awsCfg),
		Tracker:    tracker,
		Transcoder: ffmpeg.NewOps(runner),
		Transform: &aitransform.Step{
			APIKey:   geminiKey,
			Provider: aitransform.NewGeminiClient(geminiKey),
			Tracker:  tracker,
		},
	}

	outputs, err := p.Run(context.Background(), sessionFlag, pipeline.Options{
		Format:        format,
		Aspect:        aspect,
		Overlay:       overlayFlag,
		AITransform:   aiFlag,
		Prompt:        promptFlag,
		AttemptNumber: attemptFlag,
		TaskID:        taskIDFlag,
	})
	if err != nil {
		log.Fatal().Err(err).Str("sessionId", sessionFlag).Msg("Session processing failed")
	}

	log.Info().
		Str("sessionId", sessionFlag).
		Str("url", outputs.PrimaryURL).
		Str("format", outputs.Format).
		Int64("size_bytes", outputs.SizeBytes).
		Msg("Session processed")
}
