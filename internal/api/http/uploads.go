package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/assessment-engine/internal/exam"
	"github.com/mind-engage/assessment-engine/internal/storage"
)

// MountUploads serves file-upload answers. The student posts the file,
// gets back a blob key, and saves that key as the answer text for the
// file_upload question.
func MountUploads(r chi.Router, store exam.Store, bs storage.BlobStore) {
	// POST /uploads/{submissionID}/{questionID}
	r.Post("/{submissionID}/{questionID}", func(w http.ResponseWriter, r *http.Request) {
		subID := chi.URLParam(r, "submissionID")
		questionID := chi.URLParam(r, "questionID")

		sub, err := store.GetSubmission(r.Context(), subID)
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		if !ownsOrViewsAll(r, sub.UserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		key := storage.UploadKey(subID, questionID, hdr.Filename)
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		// record the key as the answer
		text := key
		if _, err := store.SaveAnswer(r.Context(), subID, questionID, exam.AnswerInput{Text: &text}); err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"key": key})
	})

	// GET /uploads/*  -> returns the blob at whatever follows /uploads/.
	// Keys are submissions/{submissionID}/... so access follows the
	// owning submission.
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		parts := strings.SplitN(key, "/", 3)
		if len(parts) != 3 || parts[0] != "submissions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		sub, err := store.GetSubmission(r.Context(), parts[1])
		if err != nil {
			http.Error(w, err.Error(), storeStatus(err))
			return
		}
		if !ownsOrViewsAll(r, sub.UserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found: "+err.Error(), http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	})
}
