package session

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yasminekh/trendgate/internal/retrieval"
)

const defaultTitle = "Trend Reports Session"

// RegisterRoutes mounts session lifecycle endpoints on the given router.
func RegisterRoutes(r chi.Router, codec *Codec, index retrieval.Index) {
	r.Post("/api/session", handleStart(codec, index))
	r.Post("/api/reset", handleReset(codec, index))
}

func handleStart(codec *Codec, index retrieval.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Title string `json:"title"`
		}
		json.NewDecoder(r.Body).Decode(&body) // empty body is fine

		title := body.Title
		if title == "" {
			title = defaultTitle
		}
		if len(title) > 80 {
			title = title[:80]
		}

		vsid, err := index.CreateIndex(r.Context(), title)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Could not create session index",
				"details": err.Error(),
			})
			return
		}

		token, err := codec.Issue(Payload{VSID: vsid, CreatedAt: time.Now().UnixMilli()})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Could not issue session token",
				"details": err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"sessionToken":  token,
			"vectorStoreId": vsid,
			"expiresInMs":   codec.TTL().Milliseconds(),
		})
	}
}

func handleReset(codec *Codec, index retrieval.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := FromRequest(codec, r)
		if sess == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing/invalid session token."})
			return
		}

		if err := index.DeleteIndex(r.Context(), sess.VSID); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Reset failed",
				"details": err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
