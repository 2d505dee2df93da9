package pipeline

import "time"

// OutputFormat is the closed set of artifact formats the pipeline produces.
type OutputFormat string

const (
	FormatImage OutputFormat = "image"
	FormatGIF   OutputFormat = "gif"
	FormatVideo OutputFormat = "video"
)

// AspectRatio is the closed set of output aspect ratio classes.
type AspectRatio string

const (
	AspectSquare AspectRatio = "square"
	AspectStory  AspectRatio = "story"
)

// Config holds the concrete output dimensions and frame timing for one run,
// derived once per invocation from the format and aspect ratio.
type Config struct {
	Format        OutputFormat
	Aspect        AspectRatio
	Width         int
	Height        int
	FrameDuration time.Duration
	FPS           int
}

// ResolveConfig maps a (format, aspect ratio) pair to concrete dimensions and
// frame timing. Pure and total over the enum product; unknown values fall back
// to square/image.
func ResolveConfig(format OutputFormat, aspect AspectRatio) Config {
	cfg := Config{Format: format, Aspect: aspect}

	switch aspect {
	case AspectStory:
		cfg.Width, cfg.Height = 1080, 1920
	default:
		cfg.Width, cfg.Height = 1080, 1080
	}

	switch format {
	case FormatGIF:
		cfg.FrameDuration = 500 * time.Millisecond
		cfg.FPS = 2
	case FormatVideo:
		cfg.FrameDuration = 200 * time.Millisecond
		cfg.FPS = 5
	}

	return cfg
}

// ReconcileFormat reconciles the client's requested output format against the
// actual number of input frames. A single photo can never be a GIF or video, so
// one frame always forces image output; conversely multiple frames requested as
// a plain image upgrade to GIF rather than silently dropping frames. Both
// directions are deliberate policy, not derived defaults.
func ReconcileFormat(requested OutputFormat, inputFrameCount int) OutputFormat {
	if inputFrameCount == 1 {
		return FormatImage
	}
	if inputFrameCount > 1 && requested == FormatImage {
		return FormatGIF
	}
	return requested
}

// ProviderShape maps the aspect ratio class to the generation provider's
// aspect-ratio string.
func (a AspectRatio) ProviderShape() string {
	if a == AspectStory {
		return "9:16"
	}
	return "1:1"
}

// Ext returns the artifact file extension for a format.
func (f OutputFormat) Ext() string {
	switch f {
	case FormatGIF:
		return "gif"
	case FormatVideo:
		return "mp4"
	default:
		return "jpg"
	}
}

// OutputName is the format discriminant recorded in session outputs.
func (f OutputFormat) OutputName() string {
	if f == FormatVideo {
		return "mp4"
	}
	return string(f)
}
