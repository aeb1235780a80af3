package exam

import "strings"

// Submission-level queries compose per-response results. They take the
// exam explicitly; a submission stores only question ids, never the live
// question graph.

// ScoreAll re-scores every response of the submission against its question.
func (s *Submission) ScoreAll(e *Exam) {
	for _, r := range s.Responses {
		q := e.Question(r.QuestionID)
		if q == nil {
			alignFail("score all: question %s not in exam %s", r.QuestionID, e.ID)
		}
		Score(q, r)
	}
}

// TotalScore sums the responses' totals (auto plus per-response manual
// evaluation) and adds the submission-level evaluation score.
func (s *Submission) TotalScore() float64 {
	total := 0.0
	for _, r := range s.Responses {
		total += r.TotalScore()
	}
	if s.EvalScore != nil {
		total += *s.EvalScore
	}
	return total
}

// IsAnswered reports whether every question of the exam, less the skip
// list, has a submitted response with real content that is not held for
// review, with a rationale where the question demands one.
func (s *Submission) IsAnswered(e *Exam, skip []string) bool {
	skipped := map[string]bool{}
	for _, id := range skip {
		skipped[id] = true
	}

	for i := range e.Questions {
		q := &e.Questions[i]
		if skipped[q.ID] {
			continue
		}
		r := s.Response(q.ID)
		if r == nil || r.SubmittedAt == nil {
			return false
		}
		if !r.Answered(q) {
			return false
		}
		if r.MarkedForReview {
			return false
		}
		if q.RequireRationale && strings.TrimSpace(r.Rationale) == "" {
			return false
		}
	}
	return true
}

// Reconcile compares a persisted response total against a fresh auto-score
// and books any difference as a manual evaluation adjustment, so grader
// corrections baked into a stored score survive a re-score on reload.
func Reconcile(q *Question, r *Response, storedScore float64) {
	Score(q, r)
	diff := storedScore - r.AutoScore()
	if diff != 0 {
		r.EvalScore = &diff
	} else {
		r.EvalScore = nil
	}
}
