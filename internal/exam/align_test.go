package exam

import "testing"

func fillInQuestion(points float64, patterns ...string) *Question {
	part := Part{ID: "p1"}
	for i, p := range patterns {
		part.Choices = append(part.Choices, Choice{ID: choiceID(i), Text: p, Correct: true})
	}
	return &Question{ID: "q1", Type: FillIn, Points: points, Parts: []Part{part}}
}

func choiceID(i int) string {
	return string(rune('a'+i)) + "1"
}

func matchingQuestion(points float64, pairs int) *Question {
	q := &Question{ID: "qm", Type: Matching, Points: points}
	for i := 0; i < pairs; i++ {
		part := Part{ID: "part-" + string(rune('a'+i))}
		for j := 0; j < pairs; j++ {
			part.Choices = append(part.Choices, Choice{
				ID:      part.ID + "-c" + string(rune('a'+j)),
				Label:   string(rune('A' + j)),
				Correct: i == j,
			})
		}
		q.Parts = append(q.Parts, part)
	}
	return q
}

func mcqMultiQuestion(points float64, correct, incorrect int) *Question {
	part := Part{ID: "p1"}
	for i := 0; i < correct; i++ {
		part.Choices = append(part.Choices, Choice{ID: "ok-" + string(rune('a'+i)), Correct: true})
	}
	for i := 0; i < incorrect; i++ {
		part.Choices = append(part.Choices, Choice{ID: "no-" + string(rune('a'+i))})
	}
	return &Question{ID: "qmm", Type: MCQMulti, Points: points, Parts: []Part{part}}
}

func trueFalseQuestion(points float64) *Question {
	return &Question{
		ID: "qtf", Type: TrueFalse, Points: points,
		Parts: []Part{{ID: "p1", Choices: []Choice{
			{ID: "t", Text: "true", Correct: true},
			{ID: "f", Text: "false"},
		}}},
	}
}

func TestAlignFillIn(t *testing.T) {
	q := fillInQuestion(10, "red", "blue", "green", "white")
	r := NewResponse(q)

	if len(r.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(r.Entries))
	}
	for i, en := range r.Entries {
		if en.PartID != "p1" {
			t.Errorf("entry %d part = %q", i, en.PartID)
		}
		if en.ChoiceID != q.Part().Choices[i].ID {
			t.Errorf("entry %d not pre-paired: choice %q want %q", i, en.ChoiceID, q.Part().Choices[i].ID)
		}
		if en.Text != "" {
			t.Errorf("entry %d text not blank", i)
		}
	}
}

func TestAlignMatching(t *testing.T) {
	q := matchingQuestion(9, 3)
	r := NewResponse(q)

	if len(r.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(r.Entries))
	}
	for i, en := range r.Entries {
		if en.PartID != q.Parts[i].ID {
			t.Errorf("entry %d part = %q want %q", i, en.PartID, q.Parts[i].ID)
		}
		if en.ChoiceID != "" {
			t.Errorf("entry %d choice not blank", i)
		}
	}
}

func TestAlignSingleEntryTypes(t *testing.T) {
	for _, typ := range []QuestionType{TrueFalse, MCQSingle, MCQMulti, Essay, Survey, FileUpload, AudioRec} {
		q := &Question{ID: "q", Type: typ, Points: 1, Parts: []Part{{ID: "p1"}}}
		r := NewResponse(q)
		if len(r.Entries) != 1 {
			t.Errorf("%s: expected 1 entry, got %d", typ, len(r.Entries))
		}
		if r.Entries[0].PartID != "p1" {
			t.Errorf("%s: entry part = %q", typ, r.Entries[0].PartID)
		}
	}
}

func TestAlignPanicsOnNonEmpty(t *testing.T) {
	q := trueFalseQuestion(1)
	r := NewResponse(q)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic aligning a non-empty response")
		}
	}()
	r.Align(q)
}

func TestVerifyIdempotent(t *testing.T) {
	q := fillInQuestion(10, "one", "two")
	r := NewResponse(q)
	r.SetTexts(q, "one", "two")

	before := len(r.Entries)
	r.Verify(q)
	r.Verify(q)
	if len(r.Entries) != before {
		t.Fatalf("verify changed entry count: %d -> %d", before, len(r.Entries))
	}
}

func TestVerifyPanicsOnMismatch(t *testing.T) {
	q := fillInQuestion(10, "one", "two")
	r := NewResponse(q)
	r.Entries = r.Entries[:1] // break the shape

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on entry/choice count mismatch")
		}
	}()
	r.Verify(q)
}

func TestResizeGrowAndShrink(t *testing.T) {
	q := mcqMultiQuestion(6, 2, 2)
	r := NewResponse(q)
	if len(r.Entries) != 1 {
		t.Fatalf("expected 1 initial entry, got %d", len(r.Entries))
	}

	r.SetChoiceIDs(q, "ok-a", "ok-b", "no-a")
	if len(r.Entries) != 3 {
		t.Fatalf("grow: expected 3 entries, got %d", len(r.Entries))
	}
	for i, en := range r.Entries {
		if en.PartID != "p1" {
			t.Errorf("grow: entry %d part = %q", i, en.PartID)
		}
	}

	r.SetChoiceIDs(q, "ok-a")
	if len(r.Entries) != 1 {
		t.Fatalf("shrink: expected 1 entry, got %d", len(r.Entries))
	}
	if len(r.Recycle) != 2 {
		t.Fatalf("shrink: expected 2 recycled entries, got %d", len(r.Recycle))
	}
}

func TestResizeReusesRecycledIDs(t *testing.T) {
	q := mcqMultiQuestion(6, 2, 2)
	r := NewResponse(q)
	r.SetChoiceIDs(q, "ok-a", "ok-b", "no-a")

	// simulate persistence ids assigned after a save
	r.Entries[0].ID, r.Entries[1].ID, r.Entries[2].ID = "e1", "e2", "e3"

	r.SetChoiceIDs(q, "ok-a")
	r.SetChoiceIDs(q, "ok-a", "ok-b")

	if got := r.Entries[1].ID; got == "" {
		t.Fatalf("regrown entry lost its persistence id")
	}
	if r.Entries[1].ChoiceID != "ok-b" || r.Entries[1].Text != "" || r.Entries[1].AutoScore != nil {
		t.Fatalf("regrown entry content not reset: %+v", r.Entries[1])
	}
}

func TestSetChoiceIDsRejectsForeignChoice(t *testing.T) {
	q := trueFalseQuestion(1)
	r := NewResponse(q)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on a choice id from another question")
		}
	}()
	r.SetChoiceIDs(q, "not-a-choice")
}

func TestEditsClearAutoScore(t *testing.T) {
	q := trueFalseQuestion(5)
	r := NewResponse(q)
	r.SetChoiceIDs(q, "t")
	Score(q, r)
	if r.Entries[0].AutoScore == nil {
		t.Fatalf("expected a score after scoring")
	}

	r.SetChoiceIDs(q, "f")
	if r.Entries[0].AutoScore != nil {
		t.Fatalf("edit did not clear the auto-score")
	}
}

func TestRemoveText(t *testing.T) {
	q := &Question{ID: "q", Type: FileUpload, Points: 0, Parts: []Part{{ID: "p1"}}}
	r := NewResponse(q)
	r.SetTexts(q, "/files/a", "/files/b")

	r.RemoveText(q, "/files/a")
	if len(r.Entries) != 1 || r.Entries[0].Text != "/files/b" {
		t.Fatalf("expected one entry holding /files/b, got %+v", r.Entries)
	}

	r.RemoveText(q, "/files/b")
	if len(r.Entries) != 1 || r.Entries[0].Text != "" {
		t.Fatalf("last entry should be blanked, not removed: %+v", r.Entries)
	}
}
