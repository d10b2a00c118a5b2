package vidnorm

import "time"

// EventType identifies the kind of event delivered to an EventHandler.
type EventType string

const (
	EventTypeProcessingSuccess EventType = "video_processing_success"
	EventTypeProcessingFailed  EventType = "video_processing_failed"
	EventTypeVideoSkipped      EventType = "video_skipped"
	EventTypeStageProgress     EventType = "stage_progress"
	EventTypeWarning           EventType = "warning"
)

// Event is implemented by all event payloads.
type Event interface {
	Type() EventType
}

// EventHandler receives events during processing. A non-nil return
// value is logged and otherwise ignored.
type EventHandler func(Event) error

// BaseEvent carries fields common to all events.
type BaseEvent struct {
	EventType EventType `json:"event_type"`
	Time      string    `json:"timestamp"`
}

// Type returns the event type.
func (e BaseEvent) Type() EventType { return e.EventType }

// NewTimestamp returns the current time in RFC 3339 form.
func NewTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ProcessingSuccessEvent is emitted when a pipeline run succeeds.
type ProcessingSuccessEvent struct {
	BaseEvent
	SourcePath         string          `json:"source_path"`
	OutputPath         string          `json:"output_path"`
	OriginalDimensions string          `json:"original_dimensions"`
	FinalDimensions    string          `json:"final_dimensions"`
	Operations         map[string]bool `json:"operations"`
}

// ProcessingFailedEvent is emitted when a pipeline run fails.
type ProcessingFailedEvent struct {
	BaseEvent
	SourcePath string `json:"source_path"`
	Error      string `json:"error"`
}

// VideoSkippedEvent is emitted when a file already matches all targets.
type VideoSkippedEvent struct {
	BaseEvent
	SourcePath string `json:"source_path"`
}

// StageProgressEvent carries a progress update from a running stage.
type StageProgressEvent struct {
	BaseEvent
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Speed   float64 `json:"speed"`
}

// WarningEvent carries a non-fatal warning.
type WarningEvent struct {
	BaseEvent
	Message string `json:"message"`
}
