package ingest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the ingestion endpoints on the given router.
func RegisterRoutes(r chi.Router, pipeline *Pipeline) {
	r.Post("/api/ingest", handleIngest(pipeline))
	r.Post("/api/delete", handleDelete(pipeline))
	r.Get("/api/library", handleLibrary(pipeline))
}

func handleIngest(pipeline *Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
			return
		}
		if req.BlobKey == "" && req.BlobURL == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing blobKey or blobUrl"})
			return
		}
		if req.Filename == "" {
			req.Filename = "report.pdf"
		}

		result, err := pipeline.Ingest(r.Context(), req)
		if err != nil {
			if errors.Is(err, ErrNotPDF) {
				writeJSON(w, http.StatusBadRequest, map[string]string{
					"error":   "Not a readable PDF",
					"details": err.Error(),
				})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "INGEST FAILED",
				"details": err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"ok":        true,
			"hash":      result.Hash,
			"duplicate": result.Duplicate,
			"tags":      result.Tags,
		})
	}
}

func handleDelete(pipeline *Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Hash string `json:"hash"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
			return
		}
		hash := strings.TrimSpace(body.Hash)
		if hash == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing hash"})
			return
		}

		if err := pipeline.Delete(r.Context(), hash); err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "DELETE FAILED",
				"details": err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func handleLibrary(pipeline *Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := pipeline.Library(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "LIBRARY FAILED",
				"details": err.Error(),
			})
			return
		}
		if records == nil {
			records = []Record{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": records})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
