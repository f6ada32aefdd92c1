package queue

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const itemColumns = "id, job_id, urls_json, status, error_message, progress_stage, progress_message, results_json, needs_review, review_reason, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id              int64
		jobID           string
		urlsJSON        string
		statusStr       string
		errorMessage    sql.NullString
		progressStage   sql.NullString
		progressMessage sql.NullString
		resultsJSON     sql.NullString
		needsReview     sql.NullInt64
		reviewReason    sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&jobID,
		&urlsJSON,
		&statusStr,
		&errorMessage,
		&progressStage,
		&progressMessage,
		&resultsJSON,
		&needsReview,
		&reviewReason,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		JobID:           jobID,
		Status:          Status(statusStr),
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressMessage: progressMessage.String,
		ResultsJSON:     resultsJSON.String,
		ReviewReason:    reviewReason.String,
	}
	if needsReview.Valid {
		item.NeedsReview = needsReview.Int64 != 0
	}
	if urlsJSON != "" {
		if err := json.Unmarshal([]byte(urlsJSON), &item.URLs); err != nil {
			return nil, err
		}
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
