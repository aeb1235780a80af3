package exam

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadySubmitted   = errors.New("submission already submitted")
	ErrQuestionNotInExam  = errors.New("question not in exam")
	ErrBadAnswerShape     = errors.New("answer does not fit question shape")
)

// AnswerInput is one save call against a single question: exactly one of
// the content fields is used, per the question type.
type AnswerInput struct {
	ChoiceIDs []string `json:"choice_ids,omitempty"` // choice-based types
	Texts     []string `json:"texts,omitempty"`      // fill_in / numeric blanks
	Text      *string  `json:"text,omitempty"`       // single-entry free text

	Rationale       string `json:"rationale,omitempty"`
	MarkedForReview bool   `json:"marked_for_review,omitempty"`
}

// EvalInput is a grader's manual adjustment.
type EvalInput struct {
	Score   *float64 `json:"score,omitempty"`
	Comment string   `json:"comment,omitempty"`
}

// ReviewItem is the per-question review view served after submit.
type ReviewItem struct {
	QuestionID       string   `json:"question_id"`
	AutoScore        float64  `json:"auto_score"`
	EvalScore        *float64 `json:"eval_score,omitempty"`
	TotalScore       float64  `json:"total_score"`
	MaxPoints        float64  `json:"max_points"`
	Correct          bool     `json:"correct"`
	EntryCorrect     []bool   `json:"entry_correct,omitempty"`
	EntryFeedback    []string `json:"entry_feedback,omitempty"`
	QuestionFeedback string   `json:"question_feedback,omitempty"`
}

// ExamSummary is the listing row for an exam.
type ExamSummary struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	TimeLimitSec  int     `json:"time_limit_sec"`
	QuestionCount int     `json:"question_count"`
	MaxPoints     float64 `json:"max_points"`
	CreatedAt     int64   `json:"created_at,omitempty"`
}

// ListOpts filters exam listings.
type ListOpts struct {
	Q      string
	Limit  int
	Offset int
}

// SubmissionListOpts filters submission listings.
type SubmissionListOpts struct {
	ExamID string
	UserID string
	Status string
	Limit  int
	Offset int
}

// Store persists exams and submissions and drives the scoring engine for
// the state transitions that need it.
type Store interface {
	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error)
	ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error)
	ListSubmissions(ctx context.Context, opts SubmissionListOpts) ([]Submission, error)

	NewSubmission(ctx context.Context, examID, userID string) (Submission, error)
	GetSubmission(ctx context.Context, id string) (Submission, error)

	// SaveAnswer records content for one question, aligning the response
	// to the question's shape on first touch.
	SaveAnswer(ctx context.Context, subID, questionID string, in AnswerInput) (Submission, error)

	// Submit scores every response and finalizes the submission.
	Submit(ctx context.Context, subID string) (Submission, error)

	// Review serves the correctness/feedback view of a submission.
	Review(ctx context.Context, subID string) ([]ReviewItem, error)

	// ApplyEvaluation records manual grades: per-question adjustments and
	// an optional submission-level one.
	ApplyEvaluation(ctx context.Context, subID string, items map[string]EvalInput, overall *EvalInput) (Submission, error)
}

// applyAnswer folds one AnswerInput into a submission in memory: shared by
// the store implementations. The input is validated against the question's
// shape first, so malformed requests come back as ErrBadAnswerShape and
// never reach the panicking alignment setters.
func applyAnswer(e *Exam, s *Submission, questionID string, in AnswerInput, now time.Time) error {
	q := e.Question(questionID)
	if q == nil {
		return ErrQuestionNotInExam
	}

	r := s.Response(questionID)
	if r == nil {
		r = NewResponse(q)
		s.Responses = append(s.Responses, r)
	}

	if err := validateAnswer(q, r, in); err != nil {
		return err
	}

	switch {
	case in.Text != nil:
		r.SetSingleText(q, *in.Text)
	case in.Texts != nil:
		r.SetTexts(q, in.Texts...)
	case in.ChoiceIDs != nil:
		r.SetChoiceIDs(q, in.ChoiceIDs...)
	}

	r.Rationale = in.Rationale
	r.MarkedForReview = in.MarkedForReview
	t := now
	r.SubmittedAt = &t
	r.Verify(q)
	return nil
}

// validateAnswer checks an AnswerInput against the aligned response before
// any entry is touched, so a bad request can never leave a half-mutated
// response behind. The rules mirror the alignment setters' panics.
func validateAnswer(q *Question, r *Response, in AnswerInput) error {
	fields := 0
	if in.Text != nil {
		fields++
	}
	if in.Texts != nil {
		fields++
	}
	if in.ChoiceIDs != nil {
		fields++
	}
	if fields > 1 {
		return fmt.Errorf("%w: more than one content field set: question %s",
			ErrBadAnswerShape, q.ID)
	}

	resizable := q.Type == MCQMulti || q.Type == FileUpload

	switch {
	case in.Text != nil:
		if len(r.Entries) != 1 {
			return fmt.Errorf("%w: single text for %d entries: question %s",
				ErrBadAnswerShape, len(r.Entries), q.ID)
		}

	case in.Texts != nil:
		if resizable {
			if len(in.Texts) < 1 {
				return fmt.Errorf("%w: no texts: question %s", ErrBadAnswerShape, q.ID)
			}
		} else if len(in.Texts) != len(r.Entries) {
			return fmt.Errorf("%w: %d texts for %d entries: question %s",
				ErrBadAnswerShape, len(in.Texts), len(r.Entries), q.ID)
		}

	case in.ChoiceIDs != nil:
		if resizable {
			if len(in.ChoiceIDs) < 1 {
				return fmt.Errorf("%w: no choice ids: question %s", ErrBadAnswerShape, q.ID)
			}
		} else if len(in.ChoiceIDs) != len(r.Entries) {
			return fmt.Errorf("%w: %d choice ids for %d entries: question %s",
				ErrBadAnswerShape, len(in.ChoiceIDs), len(r.Entries), q.ID)
		}
		for i, raw := range in.ChoiceIDs {
			id := strings.TrimSpace(raw)
			if id == "" {
				continue
			}
			if q.Choice(id) == nil {
				return fmt.Errorf("%w: choice %s not in question %s",
					ErrBadAnswerShape, id, q.ID)
			}
			partID := q.Part().ID
			if q.Type == Matching {
				partID = q.Parts[i].ID
			}
			if q.ChoicePart(id).ID != partID {
				return fmt.Errorf("%w: choice %s not in part %s: question %s",
					ErrBadAnswerShape, id, partID, q.ID)
			}
		}
	}
	return nil
}

// reviewItems builds the review view for a scored submission.
func reviewItems(e *Exam, s *Submission) []ReviewItem {
	items := make([]ReviewItem, 0, len(s.Responses))
	for _, r := range s.Responses {
		q := e.Question(r.QuestionID)
		if q == nil {
			continue
		}
		entryOK := make([]bool, len(r.Entries))
		for i, en := range r.Entries {
			entryOK[i] = entryCorrect(q, en)
		}
		items = append(items, ReviewItem{
			QuestionID:       q.ID,
			AutoScore:        r.AutoScore(),
			EvalScore:        r.EvalScore,
			TotalScore:       r.TotalScore(),
			MaxPoints:        q.Points,
			Correct:          Check(q, r),
			EntryCorrect:     entryOK,
			EntryFeedback:    EntryFeedback(q, r),
			QuestionFeedback: QuestionFeedback(q, r),
		})
	}
	return items
}
