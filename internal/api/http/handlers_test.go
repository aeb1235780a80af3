package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/assessment-engine/internal/auth/middleware"
	"github.com/mind-engage/assessment-engine/internal/exam"
	"github.com/mind-engage/assessment-engine/internal/rbac"
	"github.com/mind-engage/assessment-engine/internal/storage"
)

func seedUploadExam(t *testing.T, store exam.Store) exam.Submission {
	t.Helper()
	ctx := context.Background()
	err := store.PutExam(ctx, exam.Exam{
		ID:    "exam-1",
		Title: "Unit One",
		Questions: []exam.Question{
			{ID: "q1", Type: exam.FileUpload, Points: 5, Parts: []exam.Part{{ID: "p1"}}},
		},
	})
	if err != nil {
		t.Fatalf("put exam: %v", err)
	}
	sub, err := store.NewSubmission(ctx, "exam-1", "alice")
	if err != nil {
		t.Fatalf("new submission: %v", err)
	}
	return sub
}

// do runs one request with the given caller identity in context.
func do(router chi.Router, method, target, subject, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	ctx := authmw.WithSubject(req.Context(), subject)
	ctx = rbac.WithRole(ctx, role)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func TestUploadDownloadOwnership(t *testing.T) {
	store := exam.NewInMemoryStore()
	sub := seedUploadExam(t, store)

	bs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	key := storage.UploadKey(sub.ID, "q1", "essay.pdf")
	if _, err := bs.Put(key, strings.NewReader("pdf bytes")); err != nil {
		t.Fatalf("put blob: %v", err)
	}

	router := chi.NewRouter()
	router.Route("/uploads", func(ur chi.Router) { MountUploads(ur, store, bs) })
	target := "/uploads/" + key

	// other students cannot read it
	if rec := do(router, http.MethodGet, target, "mallory", "student"); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign student download = %d want 403", rec.Code)
	}
	// the owner can
	rec := do(router, http.MethodGet, target, "alice", "student")
	if rec.Code != http.StatusOK {
		t.Fatalf("owner download = %d want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "pdf bytes" {
		t.Fatalf("owner download body = %q", got)
	}
	// so can anyone who may view all submissions
	if rec := do(router, http.MethodGet, target, "gina", "grader"); rec.Code != http.StatusOK {
		t.Fatalf("grader download = %d want 200", rec.Code)
	}
	// keys outside the submissions tree resolve to nothing
	if rec := do(router, http.MethodGet, "/uploads/etc/passwd", "alice", "student"); rec.Code != http.StatusNotFound {
		t.Fatalf("stray key download = %d want 404", rec.Code)
	}
	// unknown submission in the key resolves to nothing
	if rec := do(router, http.MethodGet, "/uploads/submissions/nope/q1/x", "gina", "grader"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown submission download = %d want 404", rec.Code)
	}
}

func TestGradingViewWaitsForSubmit(t *testing.T) {
	store := exam.NewInMemoryStore()
	sub := seedUploadExam(t, store)

	router := chi.NewRouter()
	router.Get("/submissions/{submissionID}/grading", GetGradingHandler(store))
	target := "/submissions/" + sub.ID + "/grading"

	// in-progress work is not gradable yet
	if rec := do(router, http.MethodGet, target, "gina", "grader"); rec.Code != http.StatusConflict {
		t.Fatalf("grading view before submit = %d want 409", rec.Code)
	}

	if _, err := store.Submit(context.Background(), sub.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec := do(router, http.MethodGet, target, "gina", "grader"); rec.Code != http.StatusOK {
		t.Fatalf("grading view after submit = %d want 200", rec.Code)
	}
}
