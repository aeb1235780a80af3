package exam

import (
	"fmt"
	"log"
	"strings"
)

// Entry alignment keeps a response's entry list congruent with its
// question's shape. Shape mismatches are caller bugs, not user input
// errors, so they panic; the saving/edit API upstream is responsible for
// never producing one.

// NewResponse builds an empty response bound to the question, with its
// entries aligned to the question's shape.
func NewResponse(q *Question) *Response {
	r := &Response{QuestionID: q.ID}
	r.Align(q)
	return r
}

// Align builds the entry list for a response that has none yet:
//   - fill_in / numeric: one entry per authored choice of the single part,
//     pre-paired to that choice's id, text blank;
//   - matching: one entry per part, choice and text blank;
//   - everything else: a single blank entry for the single part
//     (mcq_multi and file_upload grow later via resize).
//
// Panics if the response already has entries or the question is nil.
func (r *Response) Align(q *Question) {
	if len(r.Entries) != 0 {
		alignFail("align: entries already exist: question %s", r.QuestionID)
	}
	if q == nil {
		alignFail("align: no question: response for %s", r.QuestionID)
	}

	switch q.Type {
	case FillIn, Numeric:
		part := q.Part()
		for _, c := range part.Choices {
			r.Entries = append(r.Entries, &Entry{PartID: part.ID, ChoiceID: c.ID})
		}
	case Matching:
		for i := range q.Parts {
			r.Entries = append(r.Entries, &Entry{PartID: q.Parts[i].ID})
		}
	default:
		r.Entries = append(r.Entries, &Entry{PartID: q.Part().ID})
	}

	r.Verify(q)
}

// Verify re-checks the entry/question shape invariants. It is called after
// every mutation that can affect shape, including a load from storage, and
// panics on any mismatch. Calling it twice in a row is harmless.
func (r *Response) Verify(q *Question) {
	if q == nil {
		alignFail("verify: no question: response for %s", r.QuestionID)
	}

	switch q.Type {
	case FillIn, Numeric:
		part := q.Part()
		if len(r.Entries) != len(part.Choices) {
			alignFail("verify: %s: %d authored choices, %d entries: question %s",
				q.Type, len(part.Choices), len(r.Entries), q.ID)
		}
		for i, en := range r.Entries {
			if en.PartID != part.ID {
				alignFail("verify: %s: entry part %s not question part %s: question %s",
					q.Type, en.PartID, part.ID, q.ID)
			}
			if en.ChoiceID != part.Choices[i].ID {
				alignFail("verify: %s: entry choice %s not paired choice %s: question %s",
					q.Type, en.ChoiceID, part.Choices[i].ID, q.ID)
			}
		}

	case Matching:
		if len(r.Entries) != len(q.Parts) {
			alignFail("verify: matching: %d parts, %d entries: question %s",
				len(q.Parts), len(r.Entries), q.ID)
		}
		for i, en := range r.Entries {
			if en.PartID != q.Parts[i].ID {
				alignFail("verify: matching: entry part %s not question part %s: question %s",
					en.PartID, q.Parts[i].ID, q.ID)
			}
		}

	default:
		if len(r.Entries) < 1 {
			alignFail("verify: no entries: question %s", q.ID)
		}
		if len(r.Entries) > 1 && q.Type != MCQMulti && q.Type != FileUpload {
			alignFail("verify: %s: %d entries for single-entry type: question %s",
				q.Type, len(r.Entries), q.ID)
		}
		for _, en := range r.Entries {
			if en.PartID != q.Part().ID {
				alignFail("verify: entry part %s not question part %s: question %s",
					en.PartID, q.Part().ID, q.ID)
			}
		}
	}
}

// resize grows or shrinks the entry list for the variable-length types
// (mcq_multi, file_upload); a no-op for every other type. The size clamps
// to a minimum of one. Growing reuses retired entries from the recycle so
// their persistence ids survive; shrinking retires entries from the end.
func (r *Response) resize(q *Question, size int) {
	if q.Type != MCQMulti && q.Type != FileUpload {
		return
	}
	if size < 1 {
		size = 1
	}

	excess := len(r.Entries) - size
	for excess < 0 {
		var en *Entry
		if n := len(r.Recycle); n > 0 {
			en = r.Recycle[n-1]
			r.Recycle = r.Recycle[:n-1]
		} else {
			en = &Entry{}
		}
		// point at the single part, blank the content, keep the id
		en.PartID = q.Part().ID
		en.ChoiceID = ""
		en.Text = ""
		en.AutoScore = nil
		r.Entries = append(r.Entries, en)
		excess++
	}
	for excess > 0 {
		n := len(r.Entries)
		r.Recycle = append(r.Recycle, r.Entries[n-1])
		r.Entries = r.Entries[:n-1]
		excess--
	}
}

// SetChoiceIDs records the user's chosen choice ids, one per entry in
// order, resizing first for the variable-length types. An empty string is
// a missing pick. Every non-empty id must name a choice of the question,
// owned by the entry's part. Each touched entry's text and auto-score are
// cleared.
func (r *Response) SetChoiceIDs(q *Question, choiceIDs ...string) {
	r.resize(q, len(choiceIDs))

	if choiceIDs != nil && len(choiceIDs) != len(r.Entries) {
		alignFail("set choice ids: %d ids for %d entries: question %s",
			len(choiceIDs), len(r.Entries), q.ID)
	}

	for i, en := range r.Entries {
		var id string
		if choiceIDs != nil {
			id = strings.TrimSpace(choiceIDs[i])
		}
		if id != "" {
			if q.Choice(id) == nil {
				alignFail("set choice ids: choice %s not in question %s", id, q.ID)
			}
			if q.ChoicePart(id).ID != en.PartID {
				alignFail("set choice ids: choice %s not in entry part %s: question %s",
					id, en.PartID, q.ID)
			}
		}
		en.ChoiceID = id
		en.Text = ""
		en.AutoScore = nil
	}

	r.Verify(q)
}

// SetTexts records the user's free texts, one per entry in order, resizing
// first for the variable-length types. Each touched entry's auto-score is
// cleared.
func (r *Response) SetTexts(q *Question, texts ...string) {
	r.resize(q, len(texts))

	if texts != nil && len(texts) != len(r.Entries) {
		alignFail("set texts: %d texts for %d entries: question %s",
			len(texts), len(r.Entries), q.ID)
	}

	for i, en := range r.Entries {
		var text string
		if texts != nil {
			text = strings.TrimSpace(texts[i])
		}
		en.Text = text
		en.AutoScore = nil
	}
}

// SetSingleText records free text on a response that must have exactly one
// entry (essay and friends).
func (r *Response) SetSingleText(q *Question, text string) {
	if len(r.Entries) != 1 {
		alignFail("set single text: %d entries: question %s", len(r.Entries), q.ID)
	}
	r.Entries[0].SetText(text)
}

// RemoveText drops the entry holding this text. The last entry is blanked
// rather than removed so the shape invariant holds.
func (r *Response) RemoveText(q *Question, text string) {
	if text == "" {
		return
	}
	for i, en := range r.Entries {
		if en.Text == text {
			if len(r.Entries) == 1 {
				en.SetText("")
			} else {
				r.Recycle = append(r.Recycle, en)
				r.Entries = append(r.Entries[:i], r.Entries[i+1:]...)
			}
			r.Verify(q)
			return
		}
	}
}

func alignFail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Print(msg)
	panic(msg)
}
