package exam

import (
	"fmt"
	"log"
	"strings"
)

// The scorer is a pure, total function over a shape-verified response: it
// never errors on well-formed input. Malformed shapes must already have
// been rejected by Verify. An unknown question type reaching it is a
// caller bug and panics.

// Score computes every entry's auto-score and reconciles the response
// total: a negative total (mcq_multi picks penalize) is clamped back
// toward zero, and mutually-exclusive fill_in duplicates lose credit.
func Score(q *Question, r *Response) {
	if !q.Type.Known() {
		msg := fmt.Sprintf("score: unknown question type %q: question %s", q.Type, q.ID)
		log.Print(msg)
		panic(msg)
	}

	for _, en := range r.Entries {
		score := 0.0
		if q.Points > 0 {
			switch q.Type {
			case TrueFalse, MCQSingle:
				if entryCorrect(q, en) {
					score = q.Points
				}

			case MCQMulti:
				// per-unit credit for a correct pick, the same amount
				// negative for a wrong one
				if n := len(q.Part().CorrectChoices()); n > 0 {
					unit := q.Points / float64(n)
					if entryCorrect(q, en) {
						score = unit
					} else {
						score = -unit
					}
				}

			case FillIn, Numeric:
				// per-blank credit, no penalty for a miss
				if n := len(q.Part().Choices); n > 0 && entryCorrect(q, en) {
					score = q.Points / float64(n)
				}

			case Matching:
				if n := len(q.Parts); n > 0 && entryCorrect(q, en) {
					score = q.Points / float64(n)
				}
			}
		}
		en.setScore(score)
	}

	// claw the total back to zero by zeroing negative entries one at a time
	for r.AutoScore() < 0 {
		found := false
		for _, en := range r.Entries {
			if en.score() < 0 {
				en.setScore(0)
				found = true
				break
			}
		}
		if !found {
			// unusual authored data (a part with no correct choices);
			// keep the best-effort total rather than abort
			log.Printf("score: ran out of entries to clear to reach 0: question %s", q.ID)
			break
		}
	}

	if q.Type == FillIn && q.MutuallyExclusive {
		suppressDuplicates(q, r)
	}
}

// suppressDuplicates zeroes credit for the earlier of two fill_in blanks
// that ask the identical sub-question and got the identical response, so
// one answer cannot be paid twice. The later entry keeps its credit.
func suppressDuplicates(q *Question, r *Response) {
	for i := 0; i < len(r.Entries)-1; i++ {
		en := r.Entries[i]
		if en.score() <= 0 {
			continue
		}
		blankText := q.Choice(en.ChoiceID).Text
		for j := i + 1; j < len(r.Entries); j++ {
			other := r.Entries[j]
			if !sameText(en.Text, other.Text, q.CaseSensitive) {
				continue
			}
			// the authored blank text must match exactly
			if blankText == q.Choice(other.ChoiceID).Text {
				en.setScore(0)
				break
			}
		}
	}
}

// Check computes the overall correctness verdict for a response, distinct
// from its score. Used for pass/fail feedback display.
func Check(q *Question, r *Response) bool {
	switch q.Type {
	case TrueFalse, MCQSingle:
		return entryCorrect(q, r.Entries[0])

	case MCQMulti:
		// every correct choice picked, nothing extra
		remaining := map[string]bool{}
		for _, c := range q.Part().CorrectChoices() {
			remaining[c.ID] = true
		}
		for _, en := range r.Entries {
			if !remaining[en.ChoiceID] {
				return false
			}
			delete(remaining, en.ChoiceID)
		}
		return len(remaining) == 0

	case FillIn, Numeric, Matching:
		for _, en := range r.Entries {
			if !entryCorrect(q, en) {
				return false
			}
		}
		if q.Type == FillIn && q.MutuallyExclusive {
			for i := 0; i < len(r.Entries)-1; i++ {
				en := r.Entries[i]
				blankText := q.Choice(en.ChoiceID).Text
				for j := i + 1; j < len(r.Entries); j++ {
					other := r.Entries[j]
					if sameText(en.Text, other.Text, q.CaseSensitive) &&
						blankText == q.Choice(other.ChoiceID).Text {
						return false
					}
				}
			}
		}
		return true
	}

	return false
}

// entryCorrect evaluates one entry against the question's answer key:
// fill_in and numeric compare the entry text to its paired choice's
// pattern, every other type reads the chosen choice's correct flag.
func entryCorrect(q *Question, en *Entry) bool {
	c := q.Choice(en.ChoiceID)
	if c == nil {
		return false
	}
	switch q.Type {
	case FillIn:
		return c.Text != "" && en.Text != "" && matchFillIn(en.Text, c.Text, q.CaseSensitive)
	case Numeric:
		return c.Text != "" && en.Text != "" && matchNumeric(en.Text, c.Text)
	}
	return c.Correct
}

// EntryFeedback returns the per-entry feedback strings, one per entry:
// the chosen choice's correct or incorrect feedback, "" for no choice.
func EntryFeedback(q *Question, r *Response) []string {
	out := make([]string, len(r.Entries))
	for i, en := range r.Entries {
		c := q.Choice(en.ChoiceID)
		if c == nil {
			continue
		}
		if c.Correct {
			out[i] = c.FeedbackCorrect
		} else {
			out[i] = c.FeedbackIncorrect
		}
	}
	return out
}

// QuestionFeedback picks the question-level feedback for a response:
// general for the non-scored types, else correct/incorrect by verdict.
func QuestionFeedback(q *Question, r *Response) string {
	if q.Type == Survey || q.Type == Essay {
		return q.FeedbackGeneral
	}
	if Check(q, r) {
		return q.FeedbackCorrect
	}
	return q.FeedbackIncorrect
}

func sameText(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}
