package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	seq    func() string
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{
		db:     db,
		driver: driver,
		seq:    uuid.NewString,
	}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	qj, err := json.Marshal(e.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exams (id,title,time_limit_sec,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, time_limit_sec=EXCLUDED.time_limit_sec, questions_json=EXCLUDED.questions_json`,
		e.ID, e.Title, e.TimeLimitSec, string(qj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	e, err := s.loadExam(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	return stripKey(e), nil
}

// loadExam reads the exam with its answer key intact, for scoring.
func (s *SQLStore) loadExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,time_limit_sec,questions_json FROM exams WHERE id=$1`, id)
	var e Exam
	var qjson string
	if err := row.Scan(&e.ID, &e.Title, &e.TimeLimitSec, &qjson); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &e.Questions); err != nil {
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT id,title,time_limit_sec,questions_json,created_at FROM exams`
	args := []any{}
	if needle := strings.ToLower(strings.TrimSpace(opts.Q)); needle != "" {
		q += ` WHERE lower(title) LIKE $1 OR lower(id) LIKE $1`
		args = append(args, "%"+needle+"%")
	}
	q += fmt.Sprintf(` ORDER BY id LIMIT %d OFFSET %d`, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ExamSummary{}
	for rows.Next() {
		var sum ExamSummary
		var qjson string
		var created sql.NullInt64
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.TimeLimitSec, &qjson, &created); err != nil {
			return nil, err
		}
		var questions []Question
		if err := json.Unmarshal([]byte(qjson), &questions); err != nil {
			return nil, err
		}
		sum.QuestionCount = len(questions)
		for _, qu := range questions {
			sum.MaxPoints += qu.Points
		}
		sum.CreatedAt = created.Int64
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListSubmissions(ctx context.Context, opts SubmissionListOpts) ([]Submission, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT id FROM submissions`
	args := []any{}
	where := []string{}
	if opts.ExamID != "" {
		args = append(args, opts.ExamID)
		where = append(where, fmt.Sprintf("exam_id=$%d", len(args)))
	}
	if opts.UserID != "" {
		args = append(args, opts.UserID)
		where = append(where, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if opts.Status != "" {
		args = append(args, opts.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += fmt.Sprintf(` ORDER BY started_at DESC, id LIMIT %d OFFSET %d`, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Submission, 0, len(ids))
	for _, id := range ids {
		sub, err := s.GetSubmission(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *SQLStore) NewSubmission(ctx context.Context, examID, userID string) (Submission, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM exams WHERE id=$1`, examID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrExamNotFound
		}
		return Submission{}, err
	}
	sub := Submission{
		ID:     s.seq(),
		ExamID: examID,
		UserID: userID,
		Status: StatusInProgress,
	}
	rj, _ := json.Marshal([]*Response{})
	_, err := s.db.ExecContext(ctx, `INSERT INTO submissions (id,exam_id,user_id,status,score,responses_json,started_at)
		VALUES ($1,$2,$3,$4,0,$5,$6)`,
		sub.ID, examID, userID, sub.Status, string(rj), time.Now().Unix())
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// GetSubmission loads a submission and reconciles each stored response
// total against a fresh auto-score: any difference is booked as a manual
// evaluation adjustment so grader corrections survive the re-score.
func (s *SQLStore) GetSubmission(ctx context.Context, id string) (Submission, error) {
	sub, err := s.loadSubmission(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	e, err := s.loadExam(ctx, sub.ExamID)
	if err != nil {
		return Submission{}, err
	}
	for _, r := range sub.Responses {
		q := e.Question(r.QuestionID)
		if q == nil {
			return Submission{}, fmt.Errorf("submission %s: %w: %s", id, ErrQuestionNotInExam, r.QuestionID)
		}
		r.Verify(q)
		// only submitted work carries scores worth reconciling
		if sub.Status == StatusSubmitted {
			Reconcile(q, r, r.TotalScore())
		}
	}
	return sub, nil
}

func (s *SQLStore) loadSubmission(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,exam_id,user_id,status,responses_json,submitted_at,eval_score,eval_comment FROM submissions WHERE id=$1`, id)
	var sub Submission
	var rjson string
	var submittedAt sql.NullInt64
	var evalScore sql.NullFloat64
	var evalComment sql.NullString
	if err := row.Scan(&sub.ID, &sub.ExamID, &sub.UserID, &sub.Status, &rjson, &submittedAt, &evalScore, &evalComment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(rjson), &sub.Responses); err != nil {
		return Submission{}, err
	}
	if submittedAt.Valid {
		t := time.Unix(submittedAt.Int64, 0)
		sub.SubmittedAt = &t
	}
	if evalScore.Valid {
		v := evalScore.Float64
		sub.EvalScore = &v
	}
	if evalComment.Valid {
		sub.EvalComment = evalComment.String
	}
	return sub, nil
}

func (s *SQLStore) saveResponses(ctx context.Context, sub *Submission) error {
	rj, err := json.Marshal(sub.Responses)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE submissions SET responses_json=$1, score=$2 WHERE id=$3`,
		string(rj), sub.TotalScore(), sub.ID)
	return err
}

func (s *SQLStore) SaveAnswer(ctx context.Context, subID, questionID string, in AnswerInput) (Submission, error) {
	sub, err := s.loadSubmission(ctx, subID)
	if err != nil {
		return Submission{}, err
	}
	if sub.Status == StatusSubmitted {
		return Submission{}, ErrAlreadySubmitted
	}
	e, err := s.loadExam(ctx, sub.ExamID)
	if err != nil {
		return Submission{}, err
	}
	if err := applyAnswer(&e, &sub, questionID, in, time.Now()); err != nil {
		return Submission{}, err
	}
	if err := s.saveResponses(ctx, &sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (s *SQLStore) Submit(ctx context.Context, subID string) (Submission, error) {
	sub, err := s.loadSubmission(ctx, subID)
	if err != nil {
		return Submission{}, err
	}
	if sub.Status == StatusSubmitted {
		return sub, nil
	}
	e, err := s.loadExam(ctx, sub.ExamID)
	if err != nil {
		return Submission{}, err
	}

	sub.ScoreAll(&e)
	sub.Status = StatusSubmitted
	now := time.Now()
	sub.SubmittedAt = &now

	rj, err := json.Marshal(sub.Responses)
	if err != nil {
		return Submission{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE submissions SET status=$1, score=$2, responses_json=$3, submitted_at=$4 WHERE id=$5`,
		sub.Status, sub.TotalScore(), string(rj), now.Unix(), subID)
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (s *SQLStore) Review(ctx context.Context, subID string) ([]ReviewItem, error) {
	sub, err := s.GetSubmission(ctx, subID)
	if err != nil {
		return nil, err
	}
	e, err := s.loadExam(ctx, sub.ExamID)
	if err != nil {
		return nil, err
	}
	return reviewItems(&e, &sub), nil
}

func (s *SQLStore) ApplyEvaluation(ctx context.Context, subID string, items map[string]EvalInput, overall *EvalInput) (Submission, error) {
	sub, err := s.GetSubmission(ctx, subID)
	if err != nil {
		return Submission{}, err
	}
	for qid, ev := range items {
		r := sub.Response(qid)
		if r == nil {
			continue
		}
		if ev.Score != nil {
			v := *ev.Score
			r.EvalScore = &v
		}
		if ev.Comment != "" {
			r.EvalComment = ev.Comment
		}
	}
	if overall != nil {
		if overall.Score != nil {
			v := *overall.Score
			sub.EvalScore = &v
		}
		if overall.Comment != "" {
			sub.EvalComment = overall.Comment
		}
	}

	rj, err := json.Marshal(sub.Responses)
	if err != nil {
		return Submission{}, err
	}
	var evalScore any
	if sub.EvalScore != nil {
		evalScore = *sub.EvalScore
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE submissions SET responses_json=$1, score=$2, eval_score=$3, eval_comment=$4 WHERE id=$5`,
		string(rj), sub.TotalScore(), evalScore, sub.EvalComment, subID)
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}
