package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/assessment-engine/internal/audit"
	authmw "github.com/mind-engage/assessment-engine/internal/auth/middleware"
	"github.com/mind-engage/assessment-engine/internal/exam"
	"github.com/mind-engage/assessment-engine/internal/rbac"
)

func storeStatus(err error) int {
	switch {
	case errors.Is(err, exam.ErrBadAnswerShape):
		return http.StatusBadRequest
	case errors.Is(err, exam.ErrExamNotFound), errors.Is(err, exam.ErrSubmissionNotFound):
		return http.StatusNotFound
	case errors.Is(err, exam.ErrAlreadySubmitted), errors.Is(err, exam.ErrQuestionNotInExam):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// POST /submissions  { "exam_id": "..." } — taker comes from the token.
func CreateSubmissionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExamID string `json:"exam_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.ExamID == "" {
			http.Error(w, "exam_id required", http.StatusBadRequest)
			return
		}
		userID := authmw.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "no subject", http.StatusUnauthorized)
			return
		}
		s, err := store.NewSubmission(r.Context(), req.ExamID, userID)
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	}
}

// PUT /submissions/{submissionID}/answers/{questionID}
func SaveAnswerHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subID := chi.URLParam(r, "submissionID")
		questionID := chi.URLParam(r, "questionID")
		var in exam.AnswerInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		cur, err := store.GetSubmission(r.Context(), subID)
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		if !ownsOrViewsAll(r, cur.UserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		s, err := store.SaveAnswer(r.Context(), subID, questionID, in)
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	}
}

// POST /submissions/{submissionID}/submit
func SubmitHandler(store exam.Store, auditLog *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subID := chi.URLParam(r, "submissionID")
		cur, err := store.GetSubmission(r.Context(), subID)
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		if !ownsOrViewsAll(r, cur.UserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		s, err := store.Submit(r.Context(), subID)
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		if err := auditLog.Record(r.Context(), audit.Event{
			Actor:     authmw.SubjectFromContext(r.Context()),
			Action:    "submit",
			SubjectID: subID,
		}); err != nil {
			log.Printf("audit: submit %s: %v", subID, err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	}
}

// GET /submissions/{submissionID}
func GetSubmissionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subID := chi.URLParam(r, "submissionID")
		s, err := store.GetSubmission(r.Context(), subID)
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		if !ownsOrViewsAll(r, s.UserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	}
}

// GET /submissions/{submissionID}/review
func ReviewHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subID := chi.URLParam(r, "submissionID")
		s, err := store.GetSubmission(r.Context(), subID)
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		if !ownsOrViewsAll(r, s.UserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if s.Status != exam.StatusSubmitted {
			http.Error(w, "not submitted", http.StatusConflict)
			return
		}
		items, err := store.Review(r.Context(), subID)
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	}
}

// GET /submissions?exam_id=...&user_id=...&status=...&limit=50&offset=0
// Callers without submission:view-all only see their own.
func ListSubmissionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())
		if role == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if !rbac.Default().Has(role, "submission:view-all") {
			userID = sub
		}
		list, err := store.ListSubmissions(r.Context(), exam.SubmissionListOpts{
			ExamID: strings.TrimSpace(r.URL.Query().Get("exam_id")),
			UserID: userID,
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// ownsOrViewsAll guards per-submission access: the owner, or any role with
// submission:view-all.
func ownsOrViewsAll(r *http.Request, ownerID string) bool {
	if authmw.SubjectFromContext(r.Context()) == ownerID {
		return true
	}
	return rbac.Default().Has(rbac.RoleFromContext(r.Context()), "submission:view-all")
}
