package catalog

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a catalog item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInspecting Status = "inspecting"
	StatusInspected  Status = "inspected"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

var allStatuses = []Status{
	StatusPending,
	StatusInspecting,
	StatusInspected,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusSkipped,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusInspecting: {},
	StatusProcessing: {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions return interrupted items to the last stable
// status so an aborted run can resume cleanly.
var stageRollbackTransitions = []statusTransition{
	{from: StatusInspecting, to: StatusPending},
	{from: StatusProcessing, to: StatusInspected},
}

// Kind classifies a catalog item by media type.
type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
)

// TimeSource records where an item's capture time came from.
type TimeSource string

const (
	// TimeSourceEXIF means the capture time was read from photo EXIF data.
	TimeSourceEXIF TimeSource = "exif"
	// TimeSourceContainer means the capture time came from the video
	// container's creation_time tag.
	TimeSourceContainer TimeSource = "container"
	// TimeSourceMtime means the file modification time was used as fallback.
	TimeSourceMtime TimeSource = "mtime"
)

// Item represents a catalog item persisted in SQLite.
type Item struct {
	ID              int64
	SourcePath      string
	Kind            Kind
	Status          Status
	CapturedAt      *time.Time
	TimeSource      TimeSource
	DestPath        string
	ErrorMessage    string
	RunID           string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HealthSummary describes aggregated catalog counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
	Skipped    int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// SetProgress updates all three progress fields together.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressStage = "Failed"
	i.ProgressPercent = 0
	i.ProgressMessage = message
}

// SetSkipped marks the item as skipped with the reason it cannot be ingested.
func (i *Item) SetSkipped(message string) {
	i.Status = StatusSkipped
	i.ErrorMessage = message
	i.ProgressStage = "Skipped"
	i.ProgressPercent = 0
	i.ProgressMessage = message
}
