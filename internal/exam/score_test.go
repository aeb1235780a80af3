package exam

import (
	"math"
	"testing"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScoreTrueFalse(t *testing.T) {
	q := trueFalseQuestion(5)

	r := NewResponse(q)
	r.SetChoiceIDs(q, "t")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 5) {
		t.Fatalf("correct pick: score = %v want 5", got)
	}
	if !Check(q, r) {
		t.Fatalf("correct pick: verdict false")
	}

	r.SetChoiceIDs(q, "f")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 0) {
		t.Fatalf("wrong pick: score = %v want 0", got)
	}
	if Check(q, r) {
		t.Fatalf("wrong pick: verdict true")
	}
}

func TestScoreZeroPointQuestion(t *testing.T) {
	q := trueFalseQuestion(0)
	r := NewResponse(q)
	r.SetChoiceIDs(q, "t")
	Score(q, r)
	if got := r.AutoScore(); got != 0 {
		t.Fatalf("zero-point question scored %v", got)
	}
}

func TestScoreMCQMultiAllCorrect(t *testing.T) {
	q := mcqMultiQuestion(6, 3, 2)
	r := NewResponse(q)
	r.SetChoiceIDs(q, "ok-a", "ok-b", "ok-c")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 6) {
		t.Fatalf("all correct: score = %v want 6", got)
	}
	if !Check(q, r) {
		t.Fatalf("all correct: verdict false")
	}
}

func TestScoreMCQMultiPenaltyAndClamp(t *testing.T) {
	q := mcqMultiQuestion(6, 3, 2)

	// two correct, one wrong: 2 + 2 - 2 = 2
	r := NewResponse(q)
	r.SetChoiceIDs(q, "ok-a", "ok-b", "no-a")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 2) {
		t.Fatalf("mixed picks: score = %v want 2", got)
	}
	if Check(q, r) {
		t.Fatalf("mixed picks: verdict true")
	}

	// one wrong only: -2 clamps to 0
	r2 := NewResponse(q)
	r2.SetChoiceIDs(q, "no-a")
	Score(q, r2)
	if got := r2.AutoScore(); got < 0 || !almost(got, 0) {
		t.Fatalf("lone wrong pick: score = %v want 0 after clamp", got)
	}
}

func TestScoreMCQMultiNoCorrectChoicesStaysBestEffort(t *testing.T) {
	// a part authored with zero correct choices cannot go negative either:
	// the per-unit value is 0, so the clamp loop never runs
	q := mcqMultiQuestion(6, 0, 2)
	r := NewResponse(q)
	r.SetChoiceIDs(q, "no-a", "no-b")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 0) {
		t.Fatalf("no-correct-choice part: score = %v want 0", got)
	}
}

func TestScoreMCQMultiExtraPickVerdict(t *testing.T) {
	q := mcqMultiQuestion(6, 2, 2)
	r := NewResponse(q)
	r.SetChoiceIDs(q, "ok-a", "ok-b", "no-a")
	Score(q, r)
	if Check(q, r) {
		t.Fatalf("extra wrong pick should fail the exact-set verdict")
	}

	r2 := NewResponse(q)
	r2.SetChoiceIDs(q, "ok-a")
	if Check(q, r2) {
		t.Fatalf("missing correct pick should fail the exact-set verdict")
	}
}

func TestScoreFillInPartialCredit(t *testing.T) {
	q := fillInQuestion(10, "Paris", "Rome")

	r := NewResponse(q)
	r.SetTexts(q, "paris", "rome")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 10) {
		t.Fatalf("both blanks right (wrong case): score = %v want 10", got)
	}
	if !Check(q, r) {
		t.Fatalf("both blanks right: verdict false")
	}

	r.SetTexts(q, "paris", "london")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 5) {
		t.Fatalf("one blank right: score = %v want 5", got)
	}
	if Check(q, r) {
		t.Fatalf("one blank wrong: verdict true")
	}
}

func TestScoreFillInCaseSensitive(t *testing.T) {
	q := fillInQuestion(10, "Paris", "Rome")
	q.CaseSensitive = true

	r := NewResponse(q)
	r.SetTexts(q, "paris", "Rome")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 5) {
		t.Fatalf("case-sensitive: score = %v want 5", got)
	}
}

func TestScoreFillInNoPenalty(t *testing.T) {
	q := fillInQuestion(10, "Paris", "Rome")
	r := NewResponse(q)
	r.SetTexts(q, "wrong", "guesses")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 0) {
		t.Fatalf("all wrong blanks: score = %v want 0", got)
	}
}

func TestScoreMutuallyExclusiveSuppression(t *testing.T) {
	// two blanks asking the identical sub-question with the same pattern
	q := fillInQuestion(10, "ant|bee", "ant|bee")
	q.MutuallyExclusive = true

	r := NewResponse(q)
	r.SetTexts(q, "Ant", "ant")
	Score(q, r)

	// the earlier entry loses its credit, the later keeps it
	if got := r.Entries[0].score(); !almost(got, 0) {
		t.Fatalf("earlier duplicate kept credit: %v", got)
	}
	if got := r.Entries[1].score(); !almost(got, 5) {
		t.Fatalf("later duplicate lost credit: %v", got)
	}
	if got := r.AutoScore(); !almost(got, 5) {
		t.Fatalf("total = %v want 5", got)
	}
	if Check(q, r) {
		t.Fatalf("suppressed duplicate should fail the verdict")
	}
}

func TestScoreMutuallyExclusiveDistinctBlanks(t *testing.T) {
	// same response text but different authored blank texts: no suppression
	q := fillInQuestion(10, "ant", "ant|bee")
	q.MutuallyExclusive = true

	r := NewResponse(q)
	r.SetTexts(q, "ant", "ant")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 10) {
		t.Fatalf("distinct blanks: score = %v want 10", got)
	}
	if !Check(q, r) {
		t.Fatalf("distinct blanks: verdict false")
	}
}

func TestScoreMatchingPartial(t *testing.T) {
	q := matchingQuestion(9, 3)
	r := NewResponse(q)
	// parts a and b matched right, part c matched wrong
	r.SetChoiceIDs(q, "part-a-ca", "part-b-cb", "part-c-ca")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 6) {
		t.Fatalf("2 of 3 matches: score = %v want 6", got)
	}
	if Check(q, r) {
		t.Fatalf("2 of 3 matches: verdict true")
	}

	r2 := NewResponse(q)
	r2.SetChoiceIDs(q, "part-a-ca", "part-b-cb", "part-c-cc")
	Score(q, r2)
	if got := r2.AutoScore(); !almost(got, 9) {
		t.Fatalf("all matches: score = %v want 9", got)
	}
	if !Check(q, r2) {
		t.Fatalf("all matches: verdict false")
	}
}

func TestScoreNumericEndToEnd(t *testing.T) {
	q := &Question{
		ID: "qn", Type: Numeric, Points: 5,
		Parts: []Part{{ID: "p1", Choices: []Choice{{ID: "a1", Text: "4", Correct: true}}}},
	}

	r := NewResponse(q)
	r.SetTexts(q, "4")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 5) {
		t.Fatalf("numeric 4: score = %v want 5", got)
	}
	if !Check(q, r) {
		t.Fatalf("numeric 4: verdict false")
	}

	r.SetTexts(q, "four")
	Score(q, r)
	if got := r.AutoScore(); !almost(got, 0) {
		t.Fatalf("numeric 'four': score = %v want 0", got)
	}
	if Check(q, r) {
		t.Fatalf("numeric 'four': verdict true")
	}
}

func TestScoreUnansweredEntries(t *testing.T) {
	q := trueFalseQuestion(5)
	r := NewResponse(q)
	Score(q, r)
	if got := r.AutoScore(); got != 0 {
		t.Fatalf("blank response scored %v", got)
	}
	if Check(q, r) {
		t.Fatalf("blank response passed the verdict")
	}
}

func TestScoreUnscoredTypes(t *testing.T) {
	for _, typ := range []QuestionType{Essay, Survey, FileUpload, AudioRec} {
		q := &Question{ID: "q", Type: typ, Points: 10, Parts: []Part{{ID: "p1"}}}
		r := NewResponse(q)
		r.SetSingleText(q, "some work")
		Score(q, r)
		if got := r.AutoScore(); got != 0 {
			t.Errorf("%s: auto-score = %v want 0", typ, got)
		}
	}
}

func TestScoreUnknownTypePanics(t *testing.T) {
	q := &Question{ID: "q", Type: "riddle", Points: 1, Parts: []Part{{ID: "p1"}}}
	r := &Response{QuestionID: "q", Entries: []*Entry{{PartID: "p1"}}}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unknown question type")
		}
	}()
	Score(q, r)
}

func TestEntryAndQuestionFeedback(t *testing.T) {
	q := trueFalseQuestion(5)
	q.Parts[0].Choices[0].FeedbackCorrect = "right"
	q.Parts[0].Choices[1].FeedbackIncorrect = "wrong"
	q.FeedbackCorrect = "well done"
	q.FeedbackIncorrect = "try again"

	r := NewResponse(q)
	r.SetChoiceIDs(q, "t")
	Score(q, r)
	if fb := EntryFeedback(q, r); fb[0] != "right" {
		t.Fatalf("entry feedback = %q", fb[0])
	}
	if fb := QuestionFeedback(q, r); fb != "well done" {
		t.Fatalf("question feedback = %q", fb)
	}

	r.SetChoiceIDs(q, "f")
	Score(q, r)
	if fb := EntryFeedback(q, r); fb[0] != "wrong" {
		t.Fatalf("entry feedback = %q", fb[0])
	}
	if fb := QuestionFeedback(q, r); fb != "try again" {
		t.Fatalf("question feedback = %q", fb)
	}
}
