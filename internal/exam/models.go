package exam

import "time"

// QuestionType is the closed set of question kinds the engine understands.
type QuestionType string

const (
	TrueFalse  QuestionType = "true_false"
	MCQSingle  QuestionType = "mcq_single"
	MCQMulti   QuestionType = "mcq_multi"
	FillIn     QuestionType = "fill_in"
	Numeric    QuestionType = "numeric"
	Matching   QuestionType = "matching"
	Essay      QuestionType = "essay"
	Survey     QuestionType = "survey"
	FileUpload QuestionType = "file_upload"
	AudioRec   QuestionType = "audio_recording"
)

// Known reports whether t is one of the defined question types.
func (t QuestionType) Known() bool {
	switch t {
	case TrueFalse, MCQSingle, MCQMulti, FillIn, Numeric, Matching,
		Essay, Survey, FileUpload, AudioRec:
		return true
	}
	return false
}

// Choice is one authored answer choice within a question part. For fill_in
// and numeric questions Text carries the correct-answer pattern; for
// matching questions Label carries the match label.
type Choice struct {
	ID                string `json:"id"`
	Text              string `json:"text,omitempty"`
	Label             string `json:"label,omitempty"`
	Correct           bool   `json:"correct,omitempty"`
	FeedbackCorrect   string `json:"feedback_correct,omitempty"`
	FeedbackIncorrect string `json:"feedback_incorrect,omitempty"`
}

// Part is a sub-unit of a question. Matching questions have several; every
// other type has exactly one.
type Part struct {
	ID      string   `json:"id"`
	Title   string   `json:"title,omitempty"`
	Choices []Choice `json:"choices,omitempty"` // authored order
}

// CorrectChoices returns the choices flagged correct, in authored order.
func (p *Part) CorrectChoices() []Choice {
	var out []Choice
	for _, c := range p.Choices {
		if c.Correct {
			out = append(out, c)
		}
	}
	return out
}

// Choice finds a choice of this part by id, or nil.
func (p *Part) Choice(id string) *Choice {
	for i := range p.Choices {
		if p.Choices[i].ID == id {
			return &p.Choices[i]
		}
	}
	return nil
}

type Question struct {
	ID         string       `json:"id"`
	Type       QuestionType `json:"type"`
	PromptHTML string       `json:"prompt_html,omitempty"`
	Points     float64      `json:"points"`
	Parts      []Part       `json:"parts"`

	CaseSensitive     bool `json:"case_sensitive,omitempty"`     // fill_in text comparison
	MutuallyExclusive bool `json:"mutually_exclusive,omitempty"` // fill_in duplicate suppression
	RequireRationale  bool `json:"require_rationale,omitempty"`

	FeedbackGeneral   string `json:"feedback_general,omitempty"`
	FeedbackCorrect   string `json:"feedback_correct,omitempty"`
	FeedbackIncorrect string `json:"feedback_incorrect,omitempty"`
}

// Part returns the single part of a non-matching question (the first part).
func (q *Question) Part() *Part {
	if len(q.Parts) == 0 {
		return nil
	}
	return &q.Parts[0]
}

// PartByID finds a part by id, or nil.
func (q *Question) PartByID(id string) *Part {
	for i := range q.Parts {
		if q.Parts[i].ID == id {
			return &q.Parts[i]
		}
	}
	return nil
}

// Choice finds an authored choice anywhere in the question, or nil.
func (q *Question) Choice(id string) *Choice {
	for i := range q.Parts {
		if c := q.Parts[i].Choice(id); c != nil {
			return c
		}
	}
	return nil
}

// ChoicePart returns the part owning the choice with this id, or nil.
func (q *Question) ChoicePart(id string) *Part {
	for i := range q.Parts {
		if q.Parts[i].Choice(id) != nil {
			return &q.Parts[i]
		}
	}
	return nil
}

type Exam struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	TimeLimitSec int        `json:"time_limit_sec"`
	Questions    []Question `json:"questions"`
	CreatedAt    int64      `json:"created_at,omitempty"`
}

// Question finds a question by id, or nil.
func (e *Exam) Question(id string) *Question {
	for i := range e.Questions {
		if e.Questions[i].ID == id {
			return &e.Questions[i]
		}
	}
	return nil
}

// MaxPoints is the sum of the question point values.
func (e *Exam) MaxPoints() float64 {
	total := 0.0
	for i := range e.Questions {
		total += e.Questions[i].Points
	}
	return total
}

// Entry is one scoring slot within a Response: it points at one question
// part and carries either a chosen choice id or free text. AutoScore is nil
// whenever the entry's content changed and has not been re-scored.
type Entry struct {
	ID        string   `json:"id,omitempty"` // persistence id, kept across resizes
	PartID    string   `json:"part_id"`
	ChoiceID  string   `json:"choice_id,omitempty"`
	Text      string   `json:"text,omitempty"`
	AutoScore *float64 `json:"auto_score,omitempty"`
}

// score returns the entry's auto-score, treating unscored as zero.
func (en *Entry) score() float64 {
	if en.AutoScore == nil {
		return 0
	}
	return *en.AutoScore
}

func (en *Entry) setScore(v float64) { s := v; en.AutoScore = &s }

// SetText replaces the entry's free text and clears the auto-score.
func (en *Entry) SetText(text string) {
	en.Text = text
	en.AutoScore = nil
}

// SetChoiceID replaces the entry's chosen choice and clears the auto-score.
func (en *Entry) SetChoiceID(id string) {
	en.ChoiceID = id
	en.AutoScore = nil
}

// Response is a user's answer to one question: an ordered entry list whose
// shape is dictated by the question type, plus review/evaluation state.
// Retired entries detached by a shrink sit in Recycle so their persistence
// ids can be reused by a later grow; they are never scored.
type Response struct {
	QuestionID      string     `json:"question_id"`
	Entries         []*Entry   `json:"entries"`
	Recycle         []*Entry   `json:"recycle,omitempty"`
	Rationale       string     `json:"rationale,omitempty"`
	MarkedForReview bool       `json:"marked_for_review,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	EvalScore       *float64   `json:"eval_score,omitempty"`
	EvalComment     string     `json:"eval_comment,omitempty"`
}

// AutoScore sums the entries' auto-scores. It does not re-score.
func (r *Response) AutoScore() float64 {
	total := 0.0
	for _, en := range r.Entries {
		total += en.score()
	}
	return total
}

// TotalScore is the auto-score plus any manual evaluation adjustment.
func (r *Response) TotalScore() float64 {
	total := r.AutoScore()
	if r.EvalScore != nil {
		total += *r.EvalScore
	}
	return total
}

// ChoiceIDs returns the entries' chosen choice ids, one per entry in order.
func (r *Response) ChoiceIDs() []string {
	out := make([]string, len(r.Entries))
	for i, en := range r.Entries {
		out[i] = en.ChoiceID
	}
	return out
}

// Texts returns the entries' free texts, one per entry in order.
func (r *Response) Texts() []string {
	out := make([]string, len(r.Entries))
	for i, en := range r.Entries {
		out[i] = en.Text
	}
	return out
}

// Answered reports whether the response carries content: free text for the
// text-entry types, at least one chosen choice id for the rest.
func (r *Response) Answered(q *Question) bool {
	if len(r.Entries) == 0 {
		return false
	}
	switch q.Type {
	case Essay, FillIn, Numeric, FileUpload, AudioRec:
		for _, en := range r.Entries {
			if en.Text != "" {
				return true
			}
		}
	default:
		for _, en := range r.Entries {
			if en.ChoiceID != "" {
				return true
			}
		}
	}
	return false
}

// Submission is one user's run at an exam: one response per answered
// question, created on demand, plus submission-level evaluation.
type Submission struct {
	ID          string      `json:"id"`
	ExamID      string      `json:"exam_id"`
	UserID      string      `json:"user_id"`
	Status      string      `json:"status"` // in_progress|submitted
	Responses   []*Response `json:"responses"`
	SubmittedAt *time.Time  `json:"submitted_at,omitempty"`
	EvalScore   *float64    `json:"eval_score,omitempty"`
	EvalComment string      `json:"eval_comment,omitempty"`
}

const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

// Response finds the response to a question, or nil if none yet.
func (s *Submission) Response(questionID string) *Response {
	for _, r := range s.Responses {
		if r.QuestionID == questionID {
			return r
		}
	}
	return nil
}
