package queue

import (
	"encoding/json"
	"strings"
	"time"
)

// Status represents the lifecycle of an ingestion job.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusDownloaded  Status = "downloaded"
	StatusVerifying   Status = "verifying"
	StatusVerified    Status = "verified"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusReview      Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusDownloading,
	StatusDownloaded,
	StatusVerifying,
	StatusVerified,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusDownloading: {},
	StatusVerifying:   {},
}

// Item represents one ingestion job persisted in SQLite.
type Item struct {
	ID              int64
	JobID           string
	URLs            []string
	Status          Status
	ErrorMessage    string
	ProgressStage   string
	ProgressMessage string
	ResultsJSON     string
	NeedsReview     bool
	ReviewReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FileResult records the outcome of one URL within a job.
type FileResult struct {
	URL      string   `json:"url"`
	FilePath string   `json:"file_path,omitempty"`
	TrackID  string   `json:"track_id,omitempty"`
	Verdict  string   `json:"verdict,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Review     int
	Completed  int
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

// Results decodes the per-URL outcomes recorded so far.
func (i Item) Results() []FileResult {
	trimmed := strings.TrimSpace(i.ResultsJSON)
	if trimmed == "" {
		return nil
	}
	var results []FileResult
	if err := json.Unmarshal([]byte(trimmed), &results); err != nil {
		return nil
	}
	return results
}

// SetResults encodes per-URL outcomes onto the item.
func (i *Item) SetResults(results []FileResult) error {
	if len(results) == 0 {
		i.ResultsJSON = ""
		return nil
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return err
	}
	i.ResultsJSON = string(payload)
	return nil
}

// SetProgress updates the progress fields together.
func (i *Item) SetProgress(stage, message string) {
	i.ProgressStage = stage
	i.ProgressMessage = message
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressStage = "Failed"
	i.ProgressMessage = message
}

// SetReview parks the item for manual intervention with the given reason.
func (i *Item) SetReview(reason string) {
	i.Status = StatusReview
	i.NeedsReview = true
	i.ReviewReason = reason
	i.ProgressStage = "Review"
	i.ProgressMessage = reason
}
