package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// GradeSyncer pushes a finalized submission's score to an external
// gradebook.
type GradeSyncer interface {
	SyncSubmission(ctx context.Context, submissionID string) error
}

// POST /submissions/{submissionID}/grade-sync
func SyncGradeHandler(syncer GradeSyncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subID := strings.TrimSpace(chi.URLParam(r, "submissionID"))
		if subID == "" {
			http.Error(w, "submissionID required", http.StatusBadRequest)
			return
		}
		if err := syncer.SyncSubmission(r.Context(), subID); err != nil {
			http.Error(w, "grade sync: "+err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "submission_id": subID})
	}
}
