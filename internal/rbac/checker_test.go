package rbac

import "testing"

func TestCheckerDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	if !c.Has("student", "submission:create") {
		t.Fatalf("student should create submissions")
	}
	if c.Has("student", "submission:grade") {
		t.Fatalf("student must not grade")
	}
	if c.Has("student", "exam:create") {
		t.Fatalf("student must not author exams")
	}
	if !c.Has("grader", "submission:view-all") {
		t.Fatalf("grader should view all submissions")
	}
	if !c.Has("admin", "anything:at-all") {
		t.Fatalf("admin wildcard should grant everything")
	}
	if c.Has("nobody", "exam:view") {
		t.Fatalf("unknown role must have nothing")
	}
}

func TestCheckerPrefixWildcard(t *testing.T) {
	c := NewChecker(map[string][]string{
		"bot": {"exam:*", "submission:view-own"},
	})

	if !c.Has("bot", "exam:create") || !c.Has("bot", "exam:view") {
		t.Fatalf("prefix wildcard should cover exam:*")
	}
	if c.Has("bot", "submission:grade") {
		t.Fatalf("prefix wildcard must not leak across prefixes")
	}
	if !c.Any("bot", "submission:grade", "submission:view-own") {
		t.Fatalf("Any should find the granted permission")
	}
	if c.All("bot", "exam:view", "submission:grade") {
		t.Fatalf("All must fail on a missing permission")
	}
}
