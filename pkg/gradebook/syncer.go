package gradebook

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Clock func() time.Time

type Syncer struct {
	Store Store
	Book  Client
	Now   Clock
}

func New(store Store, book Client, now Clock) *Syncer {
	if now == nil {
		now = time.Now
	}
	return &Syncer{Store: store, Book: book, Now: now}
}

// EnsureColumn finds the remote column for an assessment, creating it when
// the service doesn't have one yet.
func (s *Syncer) EnsureColumn(ctx context.Context, a Assessment) (Column, error) {
	items, err := s.Book.ListColumns(ctx, map[string]string{"resource_id": a.ID})
	if err == nil {
		for _, it := range items {
			if it.ResourceID == a.ID {
				return it, nil
			}
		}
	}
	created, err := s.Book.CreateColumn(ctx, CreateColumnReq{
		Label:      a.Title,
		ScoreMax:   a.MaxPoints,
		ResourceID: a.ID,
	})
	if err != nil {
		return Column{}, fmt.Errorf("create column: %w", err)
	}
	return created, nil
}

// SyncSubmission pushes one submission's score. Sync state transitions are
// recorded in the store so failed passbacks can be retried.
func (s *Syncer) SyncSubmission(ctx context.Context, submissionID string) error {
	res, err := s.Store.GetResult(ctx, submissionID)
	if err != nil {
		return err
	}
	if res.SubmittedAt == nil {
		return errors.New("submission not submitted")
	}
	_ = s.Store.MarkSyncPending(ctx, res.SubmissionID)

	a, err := s.Store.GetAssessment(ctx, res.AssessmentID)
	if err != nil {
		_ = s.Store.MarkSyncFailed(ctx, res.SubmissionID, err.Error())
		return err
	}

	col, err := s.EnsureColumn(ctx, a)
	if err != nil {
		_ = s.Store.MarkSyncFailed(ctx, res.SubmissionID, err.Error())
		return err
	}

	if err := s.Book.PostScore(ctx, col.ID, Score{
		UserID:       res.UserID,
		ScoreGiven:   res.Score,
		ScoreMaximum: a.MaxPoints,
		Timestamp:    s.Now(),
	}); err != nil {
		_ = s.Store.MarkSyncFailed(ctx, res.SubmissionID, err.Error())
		return err
	}
	return s.Store.MarkSyncOK(ctx, res.SubmissionID)
}
