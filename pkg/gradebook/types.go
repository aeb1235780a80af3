// Package gradebook pushes finalized submission scores to an external
// gradebook service: one column per assessment, one score per submission.
package gradebook

import (
	"context"
	"time"
)

type Assessment struct {
	ID        string
	Title     string
	MaxPoints float64
}

// Result is the slice of a submission the passback needs.
type Result struct {
	SubmissionID string
	AssessmentID string
	UserID       string
	Score        float64
	SubmittedAt  *time.Time
}

// Column is a gradebook column. ID is the absolute URL of the column on
// the remote service.
type Column struct {
	ID         string
	Label      string
	ResourceID string // assessment id on our side
	ScoreMax   float64
}

type CreateColumnReq struct {
	Label      string
	ScoreMax   float64
	ResourceID string
}

type Score struct {
	UserID       string
	ScoreGiven   float64
	ScoreMaximum float64
	Timestamp    time.Time
}

// Store: implement this in your app, or use the SQL-backed one in this
// package.
type Store interface {
	GetAssessment(ctx context.Context, id string) (Assessment, error)
	GetResult(ctx context.Context, submissionID string) (Result, error)

	MarkSyncPending(ctx context.Context, submissionID string) error
	MarkSyncOK(ctx context.Context, submissionID string) error
	MarkSyncFailed(ctx context.Context, submissionID, lastErr string) error
}

type Client interface {
	ListColumns(ctx context.Context, q map[string]string) ([]Column, error)
	CreateColumn(ctx context.Context, req CreateColumnReq) (Column, error)
	PostScore(ctx context.Context, columnID string, s Score) error
}
