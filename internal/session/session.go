// Package session owns the persistent record of one guest processing run: which
// step is executing, attempt count, terminal error information, and the final
// output artifacts. The Tracker interface is the single write path the pipeline
// uses; every write is a narrow field update so concurrent writers touching
// unrelated fields (e.g. a cancellation flag set by the UI) are never clobbered.
package session

import "context"

// State is the processing lifecycle state.
type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateFailed  State = "failed"
)

// Step identifies the pipeline step currently executing. A progress watcher
// observes these advancing strictly in pipeline order.
type Step string

const (
	StepDownloading Step = "downloading"
	StepAITransform Step = "ai-transform"
	StepProcessing  Step = "processing"
	StepUploading   Step = "uploading"
)

// InputAsset is one guest-submitted source frame. Order within
// Session.InputAssets is significant: it is the frame order for animation and
// video assembly.
type InputAsset struct {
	URL        string `json:"url" dynamodbav:"url"`
	Filename   string `json:"filename" dynamodbav:"filename"`
	MIMEType   string `json:"mimeType" dynamodbav:"mimeType"`
	SizeBytes  int64  `json:"sizeBytes" dynamodbav:"sizeBytes"`
	UploadedAt int64  `json:"uploadedAt" dynamodbav:"uploadedAt"`
}

// ProcessingError is the structured terminal error recorded on failure.
type ProcessingError struct {
	Code      string `json:"code" dynamodbav:"code"`
	Message   string `json:"message" dynamodbav:"message"`
	Timestamp int64  `json:"timestamp" dynamodbav:"timestamp"`
}

// Processing is the mutable in-flight sub-document. It exists while a run is in
// flight and is removed entirely on success, replaced by Outputs.
type Processing struct {
	State         State            `json:"state" dynamodbav:"state"`
	StartedAt     int64            `json:"startedAt" dynamodbav:"startedAt"`
	UpdatedAt     int64            `json:"updatedAt" dynamodbav:"updatedAt"`
	CurrentStep   Step             `json:"currentStep,omitempty" dynamodbav:"currentStep,omitempty"`
	AttemptNumber int              `json:"attemptNumber,omitempty" dynamodbav:"attemptNumber,omitempty"`
	TaskID        string           `json:"taskId,omitempty" dynamodbav:"taskId,omitempty"`
	Error         *ProcessingError `json:"error,omitempty" dynamodbav:"error,omitempty"`
}

// Outputs is written exactly once, on success. Outputs and Processing are
// mutually exclusive in steady state.
type Outputs struct {
	PrimaryURL       string `json:"primaryUrl" dynamodbav:"primaryUrl"`
	ThumbnailURL     string `json:"thumbnailUrl" dynamodbav:"thumbnailUrl"`
	Format           string `json:"format" dynamodbav:"format"`
	Width            int    `json:"width" dynamodbav:"width"`
	Height           int    `json:"height" dynamodbav:"height"`
	SizeBytes        int64  `json:"sizeBytes" dynamodbav:"sizeBytes"`
	CompletedAt      int64  `json:"completedAt" dynamodbav:"completedAt"`
	ProcessingTimeMs int64  `json:"processingTimeMs" dynamodbav:"processingTimeMs"`
}

// Session is one guest interaction instance and its processing outcome.
// ID is derived from the partition key and excluded from stored attributes.
type Session struct {
	ID          string       `json:"id" dynamodbav:"-"`
	ProjectID   string       `json:"projectId" dynamodbav:"projectId"`
	CompanyID   string       `json:"companyId,omitempty" dynamodbav:"companyId,omitempty"`
	InputAssets []InputAsset `json:"inputAssets" dynamodbav:"inputAssets"`
	Processing  *Processing  `json:"processing,omitempty" dynamodbav:"processing,omitempty"`
	Outputs     *Outputs     `json:"outputs,omitempty" dynamodbav:"outputs,omitempty"`
	CreatedAt   int64        `json:"createdAt" dynamodbav:"createdAt"`
}

// Tracker is the narrow interface through which the pipeline reads and mutates
// session documents. Each write touches only the fields it names. All methods
// are safe for concurrent use.
//
// Get returns (nil, nil) when the session does not exist.
type Tracker interface {
	Get(ctx context.Context, sessionID string) (*Session, error)

	// MarkPending initializes the processing sub-document with state=pending.
	MarkPending(ctx context.Context, sessionID string, attemptNumber int, taskID string) error

	// MarkRunning sets state=running and the current step.
	MarkRunning(ctx context.Context, sessionID string, step Step) error

	// UpdateStep updates only currentStep and updatedAt.
	UpdateStep(ctx context.Context, sessionID string, step Step) error

	// MarkFailed sets state=failed and a structured error with a tracker-assigned
	// timestamp.
	MarkFailed(ctx context.Context, sessionID, code, message string) error

	// Finalize atomically replaces the processing sub-document with outputs in a
	// single write.
	Finalize(ctx context.Context, sessionID string, outputs *Outputs) error
}
