package exam

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryStore struct {
	mu          sync.RWMutex
	exams       map[string]Exam
	submissions map[string]*Submission
	seq         int
}

// NewInMemoryStore is the offline/dev store; state lives for the process.
func NewInMemoryStore() Store {
	return &memoryStore{
		exams:       map[string]Exam{},
		submissions: map[string]*Submission{},
	}
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exams[e.ID] = e
	return nil
}

func (m *memoryStore) GetExam(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	// hide the answer key from students
	return stripKey(e), nil
}

func (m *memoryStore) ListExams(_ context.Context, opts ListOpts) ([]ExamSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ExamSummary, 0, len(m.exams))
	q := strings.ToLower(strings.TrimSpace(opts.Q))
	for _, e := range m.exams {
		if q != "" && !strings.Contains(strings.ToLower(e.Title), q) &&
			!strings.Contains(strings.ToLower(e.ID), q) {
			continue
		}
		out = append(out, ExamSummary{
			ID:            e.ID,
			Title:         e.Title,
			TimeLimitSec:  e.TimeLimitSec,
			QuestionCount: len(e.Questions),
			MaxPoints:     e.MaxPoints(),
			CreatedAt:     e.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) ListSubmissions(_ context.Context, opts SubmissionListOpts) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Submission, 0, len(m.submissions))
	for _, s := range m.submissions {
		if opts.ExamID != "" && s.ExamID != opts.ExamID {
			continue
		}
		if opts.UserID != "" && s.UserID != opts.UserID {
			continue
		}
		if opts.Status != "" && s.Status != opts.Status {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, opts.Limit, opts.Offset), nil
}

func page[T any](in []T, limit, offset int) []T {
	if offset > len(in) {
		offset = len(in)
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

func (m *memoryStore) NewSubmission(_ context.Context, examID, userID string) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[examID]; !ok {
		return Submission{}, ErrExamNotFound
	}
	m.seq++
	s := &Submission{
		ID:     fmt.Sprintf("sub-%d", m.seq),
		ExamID: examID,
		UserID: userID,
		Status: StatusInProgress,
	}
	m.submissions[s.ID] = s
	return *s, nil
}

func (m *memoryStore) GetSubmission(_ context.Context, id string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.submissions[id]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	return *s, nil
}

func (m *memoryStore) SaveAnswer(_ context.Context, subID, questionID string, in AnswerInput) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[subID]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	if s.Status == StatusSubmitted {
		return Submission{}, ErrAlreadySubmitted
	}
	e := m.exams[s.ExamID]
	if err := applyAnswer(&e, s, questionID, in, time.Now()); err != nil {
		return Submission{}, err
	}
	return *s, nil
}

func (m *memoryStore) Submit(_ context.Context, subID string) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[subID]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	if s.Status == StatusSubmitted {
		return *s, nil
	}
	e := m.exams[s.ExamID]
	s.ScoreAll(&e)
	s.Status = StatusSubmitted
	now := time.Now()
	s.SubmittedAt = &now
	return *s, nil
}

func (m *memoryStore) Review(_ context.Context, subID string) ([]ReviewItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.submissions[subID]
	if !ok {
		return nil, ErrSubmissionNotFound
	}
	e := m.exams[s.ExamID]
	return reviewItems(&e, s), nil
}

func (m *memoryStore) ApplyEvaluation(_ context.Context, subID string, items map[string]EvalInput, overall *EvalInput) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[subID]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	for qid, ev := range items {
		r := s.Response(qid)
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
			s.EvalScore = &v
		}
		if overall.Comment != "" {
			s.EvalComment = overall.Comment
		}
	}
	return *s, nil
}

// stripKey blanks correctness and answer patterns before serving an exam
// to a test taker.
func stripKey(e Exam) Exam {
	out := e
	out.Questions = make([]Question, len(e.Questions))
	copy(out.Questions, e.Questions)
	for qi := range out.Questions {
		q := &out.Questions[qi]
		q.Parts = make([]Part, len(e.Questions[qi].Parts))
		copy(q.Parts, e.Questions[qi].Parts)
		for pi := range q.Parts {
			p := &q.Parts[pi]
			p.Choices = make([]Choice, len(e.Questions[qi].Parts[pi].Choices))
			copy(p.Choices, e.Questions[qi].Parts[pi].Choices)
			for ci := range p.Choices {
				c := &p.Choices[ci]
				c.Correct = false
				c.FeedbackCorrect = ""
				c.FeedbackIncorrect = ""
				if q.Type == FillIn || q.Type == Numeric {
					c.Text = ""
				}
			}
		}
	}
	return out
}
