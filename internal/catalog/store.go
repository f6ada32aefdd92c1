package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the SQLite-backed Catalog implementation. It shares the database
// opened by the queue store.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const trackColumns = "id, job_id, title, artist, source_url, file_path, duration_seconds, bitrate_kbps, sample_rate_hz, channels, codec, size_bytes, uploaded_at, deleted_at, created_at, updated_at"

// Create inserts a track. A missing ID is generated; timestamps are stamped.
func (s *Store) Create(ctx context.Context, track Track) (Track, error) {
	if strings.TrimSpace(track.Title) == "" {
		return Track{}, errors.New("track title required")
	}
	if strings.TrimSpace(track.FilePath) == "" {
		return Track{}, errors.New("track file path required")
	}
	if strings.TrimSpace(track.ID) == "" {
		track.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	track.CreatedAt = now
	track.UpdatedAt = now

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tracks (
            id, job_id, title, artist, source_url, file_path,
            duration_seconds, bitrate_kbps, sample_rate_hz, channels, codec,
            size_bytes, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		track.ID,
		nullableString(track.JobID),
		track.Title,
		nullableString(track.Artist),
		nullableString(track.SourceURL),
		track.FilePath,
		track.DurationSeconds,
		track.BitrateKbps,
		track.SampleRateHz,
		track.Channels,
		nullableString(track.Codec),
		track.SizeBytes,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Track{}, fmt.Errorf("insert track: %w", err)
	}
	return track, nil
}

// Get resolves a live (not soft-deleted) track by id or unique id prefix.
func (s *Store) Get(ctx context.Context, id string) (Track, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Track{}, errors.New("track id required")
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	track, err := scanTrack(row)
	if err == nil {
		return track, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Track{}, fmt.Errorf("get track: %w", err)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE id LIKE ? AND deleted_at IS NULL ORDER BY id LIMIT 2`,
		id+"%",
	)
	if err != nil {
		return Track{}, fmt.Errorf("get track by prefix: %w", err)
	}
	defer rows.Close()

	var matches []Track
	for rows.Next() {
		match, scanErr := scanTrack(rows)
		if scanErr != nil {
			return Track{}, fmt.Errorf("scan track: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return Track{}, err
	}
	switch len(matches) {
	case 0:
		return Track{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return Track{}, fmt.Errorf("track id prefix %q is ambiguous", id)
	}
}

// List returns live tracks newest first, up to limit (0 means no limit).
func (s *Store) List(ctx context.Context, limit int) ([]Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryTracks(ctx, query, args...)
}

// Search matches live tracks whose title or artist contains query.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query required")
	}
	pattern := "%" + escapeLike(query) + "%"
	sqlQuery := `SELECT ` + trackColumns + ` FROM tracks
         WHERE deleted_at IS NULL
           AND (title LIKE ? ESCAPE '\' OR artist LIKE ? ESCAPE '\')
         ORDER BY created_at DESC, id DESC`
	args := []any{pattern, pattern}
	if limit > 0 {
		sqlQuery += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryTracks(ctx, sqlQuery, args...)
}

// Update applies the non-nil fields and returns the updated track.
func (s *Store) Update(ctx context.Context, id string, update Update) (Track, error) {
	track, err := s.Get(ctx, id)
	if err != nil {
		return Track{}, err
	}
	if update.Title == nil && update.Artist == nil {
		return track, nil
	}
	if update.Title != nil {
		track.Title = strings.TrimSpace(*update.Title)
		if track.Title == "" {
			return Track{}, errors.New("track title cannot be empty")
		}
	}
	if update.Artist != nil {
		track.Artist = strings.TrimSpace(*update.Artist)
	}
	track.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE tracks SET title = ?, artist = ?, updated_at = ? WHERE id = ?`,
		track.Title,
		nullableString(track.Artist),
		track.UpdatedAt.Format(time.RFC3339Nano),
		track.ID,
	)
	if err != nil {
		return Track{}, fmt.Errorf("update track: %w", err)
	}
	return track, nil
}

// Delete soft-deletes by default; hard removes the row entirely.
func (s *Store) Delete(ctx context.Context, id string, hard bool) error {
	track, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if hard {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, track.ID); err != nil {
			return fmt.Errorf("delete track: %w", err)
		}
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(
		ctx,
		`UPDATE tracks SET deleted_at = ?, updated_at = ? WHERE id = ?`,
		now, now, track.ID,
	); err != nil {
		return fmt.Errorf("soft delete track: %w", err)
	}
	return nil
}

// Purge hard-deletes soft-deleted tracks, optionally limited to rows deleted
// longer ago than olderThan. Requires explicit confirmation.
func (s *Store) Purge(ctx context.Context, olderThan *time.Duration, confirm bool) (int64, error) {
	if !confirm {
		return 0, ErrConfirmRequired
	}

	query := `DELETE FROM tracks WHERE deleted_at IS NOT NULL`
	args := []any{}
	if olderThan != nil {
		cutoff := time.Now().UTC().Add(-*olderThan)
		query += ` AND deleted_at < ?`
		args = append(args, cutoff.Format(time.RFC3339Nano))
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge tracks: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

// MarkUploaded stamps the upload time on a track.
func (s *Store) MarkUploaded(ctx context.Context, id string) (Track, error) {
	track, err := s.Get(ctx, id)
	if err != nil {
		return Track{}, err
	}
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(
		ctx,
		`UPDATE tracks SET uploaded_at = ?, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		track.ID,
	); err != nil {
		return Track{}, fmt.Errorf("mark uploaded: %w", err)
	}
	track.UploadedAt = &now
	track.UpdatedAt = now
	return track, nil
}

// ByJobID returns the live tracks produced by a job, oldest first.
func (s *Store) ByJobID(ctx context.Context, jobID string) ([]Track, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, errors.New("job id required")
	}
	return s.queryTracks(
		ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE job_id = ? AND deleted_at IS NULL ORDER BY created_at, id`,
		jobID,
	)
}

func (s *Store) queryTracks(ctx context.Context, query string, args ...any) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		track, scanErr := scanTrack(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan track: %w", scanErr)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

func scanTrack(scanner interface{ Scan(dest ...any) error }) (Track, error) {
	var (
		id          string
		jobID       sql.NullString
		title       string
		artist      sql.NullString
		sourceURL   sql.NullString
		filePath    string
		duration    sql.NullFloat64
		bitrate     sql.NullInt64
		sampleRate  sql.NullInt64
		channels    sql.NullInt64
		codec       sql.NullString
		sizeBytes   sql.NullInt64
		uploadedRaw sql.NullString
		deletedRaw  sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&jobID,
		&title,
		&artist,
		&sourceURL,
		&filePath,
		&duration,
		&bitrate,
		&sampleRate,
		&channels,
		&codec,
		&sizeBytes,
		&uploadedRaw,
		&deletedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return Track{}, err
	}

	track := Track{
		ID:              id,
		JobID:           jobID.String,
		Title:           title,
		Artist:          artist.String,
		SourceURL:       sourceURL.String,
		FilePath:        filePath,
		DurationSeconds: duration.Float64,
		BitrateKbps:     int(bitrate.Int64),
		SampleRateHz:    int(sampleRate.Int64),
		Channels:        int(channels.Int64),
		Codec:           codec.String,
		SizeBytes:       sizeBytes.Int64,
	}
	if uploaded, err := parseTimeString(uploadedRaw.String); err == nil {
		track.UploadedAt = &uploaded
	}
	if deleted, err := parseTimeString(deletedRaw.String); err == nil {
		track.DeletedAt = &deleted
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		track.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		track.UpdatedAt = updated
	}
	return track, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

var _ Catalog = (*Store)(nil)
