package catalog

import (
	"context"
	"errors"
	"time"
)

// Track is one verified audio file recorded in the catalog.
type Track struct {
	ID              string
	JobID           string
	Title           string
	Artist          string
	SourceURL       string
	FilePath        string
	DurationSeconds float64
	BitrateKbps     int
	SampleRateHz    int
	Channels        int
	Codec           string
	SizeBytes       int64
	UploadedAt      *time.Time
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Deleted reports whether the track has been soft deleted.
func (t Track) Deleted() bool {
	return t.DeletedAt != nil
}

// Uploaded reports whether the track has been published to the library.
func (t Track) Uploaded() bool {
	return t.UploadedAt != nil
}

// Update carries the mutable metadata fields; nil fields are left unchanged.
type Update struct {
	Title  *string
	Artist *string
}

// ErrNotFound is returned when a track id does not resolve to a live row.
var ErrNotFound = errors.New("track not found")

// ErrConfirmRequired is returned when Purge is invoked without confirmation.
var ErrConfirmRequired = errors.New("purge requires confirmation")

// Catalog is the track persistence capability set.
type Catalog interface {
	Create(ctx context.Context, track Track) (Track, error)
	Get(ctx context.Context, id string) (Track, error)
	List(ctx context.Context, limit int) ([]Track, error)
	Search(ctx context.Context, query string, limit int) ([]Track, error)
	Update(ctx context.Context, id string, update Update) (Track, error)
	Delete(ctx context.Context, id string, hard bool) error
	Purge(ctx context.Context, olderThan *time.Duration, confirm bool) (int64, error)
	MarkUploaded(ctx context.Context, id string) (Track, error)
	ByJobID(ctx context.Context, jobID string) ([]Track, error)
}
