package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/assessment-engine/internal/audit"
	authmw "github.com/mind-engage/assessment-engine/internal/auth/middleware"
	"github.com/mind-engage/assessment-engine/internal/exam"
)

type applyEvalReq struct {
	Items   map[string]exam.EvalInput `json:"items"` // question_id -> adjustment
	Overall *exam.EvalInput           `json:"overall,omitempty"`
}

// GET /submissions/{submissionID}/grading — the grader's per-question view.
func GetGradingHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subID := strings.TrimSpace(chi.URLParam(r, "submissionID"))
		if subID == "" {
			http.Error(w, "submissionID required", http.StatusBadRequest)
			return
		}
		s, err := store.GetSubmission(r.Context(), subID)
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		if s.Status != exam.StatusSubmitted {
			http.Error(w, "submission not submitted", http.StatusConflict)
			return
		}
		items, err := store.Review(r.Context(), subID)
		if err != nil {
			http.Error(w, "grading items: "+err.Error(), storeStatus(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	}
}

// POST /submissions/{submissionID}/grading
func ApplyGradingHandler(store exam.Store, auditLog *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subID := strings.TrimSpace(chi.URLParam(r, "submissionID"))
		if subID == "" {
			http.Error(w, "submissionID required", http.StatusBadRequest)
			return
		}
		var req applyEvalReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		s, err := store.ApplyEvaluation(r.Context(), subID, req.Items, req.Overall)
		if err != nil {
			http.Error(w, "apply grades: "+err.Error(), storeStatus(err))
			return
		}
		detail, _ := json.Marshal(req)
		if err := auditLog.Record(r.Context(), audit.Event{
			Actor:     authmw.SubjectFromContext(r.Context()),
			Action:    "grade",
			SubjectID: subID,
			DataJSON:  string(detail),
		}); err != nil {
			log.Printf("audit: grade %s: %v", subID, err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	}
}
