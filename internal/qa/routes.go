package qa

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yasminekh/trendgate/internal/llm"
	"github.com/yasminekh/trendgate/internal/retrieval"
	"github.com/yasminekh/trendgate/internal/session"
)

// RegisterRoutes mounts the question-answering endpoints on the given router.
func RegisterRoutes(r chi.Router, engine *Engine, codec *session.Codec, index retrieval.Index) {
	r.Post("/api/ask", handleAsk(engine, codec, index))
	r.Post("/api/future-map", handleFutureMap(engine))
}

func handleAsk(engine *Engine, codec *session.Codec, index retrieval.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromRequest(codec, r)
		if sess == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing/invalid session token."})
			return
		}

		if codec.IsExpired(sess.CreatedAt) {
			// Cleanup is opportunistic; the session is gone either way.
			index.DeleteIndex(r.Context(), sess.VSID)
			writeJSON(w, http.StatusGone, map[string]string{"error": "Session expired. Please start a new session."})
			return
		}

		var body struct {
			Question string        `json:"question"`
			History  []llm.Message `json:"history"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
			return
		}

		question := strings.TrimSpace(body.Question)
		if question == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing question."})
			return
		}

		answer, err := engine.Ask(r.Context(), sess.VSID, question, body.History)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "OpenAI request failed",
				"details": err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"answer":    answer,
			"citations": []string{},
		})
	}
}

func handleFutureMap(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Theme string `json:"theme"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
			return
		}

		theme := strings.TrimSpace(body.Theme)
		if theme == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing theme"})
			return
		}

		fm, err := engine.FutureMap(r.Context(), theme)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "FUTURE MAP FAILED",
				"details": err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, fm)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
