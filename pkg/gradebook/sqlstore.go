package gradebook

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// SQLStore reads assessments and submission results from the application
// tables and keeps passback state in grade_sync.
type SQLStore struct{ DB *sql.DB }

func (s *SQLStore) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	var a Assessment
	var qjson string
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, title, questions_json FROM exams WHERE id=$1`, id).
		Scan(&a.ID, &a.Title, &qjson)
	if err != nil {
		return Assessment{}, err
	}
	var questions []struct {
		Points float64 `json:"points"`
	}
	if err := json.Unmarshal([]byte(qjson), &questions); err != nil {
		return Assessment{}, err
	}
	for _, q := range questions {
		a.MaxPoints += q.Points
	}
	return a, nil
}

func (s *SQLStore) GetResult(ctx context.Context, submissionID string) (Result, error) {
	var r Result
	var submittedAt sql.NullInt64
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, exam_id, user_id, score, submitted_at FROM submissions WHERE id=$1`,
		submissionID).
		Scan(&r.SubmissionID, &r.AssessmentID, &r.UserID, &r.Score, &submittedAt)
	if err != nil {
		return Result{}, err
	}
	if submittedAt.Valid {
		t := time.Unix(submittedAt.Int64, 0)
		r.SubmittedAt = &t
	}
	return r, nil
}

func (s *SQLStore) MarkSyncPending(ctx context.Context, submissionID string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO grade_sync (submission_id, status, retries, updated_at)
		VALUES ($1,'pending',0,$2)
		ON CONFLICT (submission_id)
		DO UPDATE SET status='pending', updated_at=EXCLUDED.updated_at`,
		submissionID, time.Now().Unix())
	return err
}

func (s *SQLStore) MarkSyncOK(ctx context.Context, submissionID string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE grade_sync
		   SET status='ok', last_error='', updated_at=$1
		 WHERE submission_id=$2`,
		time.Now().Unix(), submissionID)
	return err
}

func (s *SQLStore) MarkSyncFailed(ctx context.Context, submissionID, lastErr string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO grade_sync (submission_id, status, last_error, retries, updated_at)
		VALUES ($1,'failed',$2,1,$3)
		ON CONFLICT (submission_id)
		DO UPDATE SET status='failed', last_error=EXCLUDED.last_error,
		              retries=grade_sync.retries+1, updated_at=EXCLUDED.updated_at`,
		submissionID, lastErr, time.Now().Unix())
	return err
}
