package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/yasminekh/trendgate/internal/blobstore"
	"github.com/yasminekh/trendgate/internal/retrieval"
	"github.com/yasminekh/trendgate/internal/session"
)

const (
	maxFiles    = 5
	maxFileSize = 25 << 20
)

// UploadedFile reports one file delivered into a session's index.
type UploadedFile struct {
	FileID   string `json:"fileId"`
	Filename string `json:"filename"`
}

// RegisterRoutes mounts the upload endpoints on the given router.
func RegisterRoutes(r chi.Router, codec *session.Codec, index retrieval.Index, blobs blobstore.Store) {
	r.Post("/api/upload", handleUpload(codec, index))
	r.Post("/api/blob-upload-url", handleBlobUploadURL(blobs))
}

// handleUpload takes multipart PDF uploads and delivers them into the
// session's own retrieval index. Files proceed independently and are joined
// before responding.
func handleUpload(codec *session.Codec, index retrieval.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromRequest(codec, r)
		if sess == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing/invalid session token."})
			return
		}
		if codec.IsExpired(sess.CreatedAt) {
			index.DeleteIndex(r.Context(), sess.VSID)
			writeJSON(w, http.StatusGone, map[string]string{"error": "Session expired. Please start a new session."})
			return
		}

		if err := r.ParseMultipartForm(maxFileSize); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid multipart body", "details": err.Error()})
			return
		}

		type job struct {
			filename string
			data     []byte
		}
		var jobs []job
	collect:
		for _, headers := range r.MultipartForm.File {
			for _, fh := range headers {
				if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
					continue
				}
				if fh.Size > maxFileSize {
					writeJSON(w, http.StatusBadRequest, map[string]string{
						"error": fmt.Sprintf("%s exceeds the %dMB limit", fh.Filename, maxFileSize>>20),
					})
					return
				}
				f, err := fh.Open()
				if err != nil {
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Upload failed", "details": err.Error()})
					return
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Upload failed", "details": err.Error()})
					return
				}
				if _, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration()); err != nil {
					writeJSON(w, http.StatusBadRequest, map[string]string{
						"error":   fmt.Sprintf("%s is not a readable PDF", fh.Filename),
						"details": err.Error(),
					})
					return
				}
				jobs = append(jobs, job{filename: fh.Filename, data: data})
				if len(jobs) == maxFiles {
					break collect
				}
			}
		}

		var (
			mu       sync.Mutex
			uploaded []UploadedFile
			firstErr error
		)
		var wg sync.WaitGroup
		for _, j := range jobs {
			wg.Add(1)
			go func(j job) {
				defer wg.Done()

				fileID, err := index.UploadFile(r.Context(), j.filename, j.data)
				if err == nil {
					_, err = index.AttachFile(r.Context(), sess.VSID, fileID)
				}

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return
				}
				uploaded = append(uploaded, UploadedFile{FileID: fileID, Filename: j.filename})
			}(j)
		}
		wg.Wait()

		if firstErr != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Upload failed",
				"details": firstErr.Error(),
			})
			return
		}

		if uploaded == nil {
			uploaded = []UploadedFile{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"uploaded": uploaded})
	}
}

// handleBlobUploadURL hands the browser a presigned PUT URL so report bytes
// go straight to blob storage without passing through the gateway.
func handleBlobUploadURL(blobs blobstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Filename    string `json:"filename"`
			ContentType string `json:"contentType"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
			return
		}
		if body.Filename == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing filename"})
			return
		}
		if body.ContentType == "" {
			body.ContentType = "application/pdf"
		}
		if body.ContentType != "application/pdf" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Only PDF uploads are allowed"})
			return
		}

		key := blobstore.ReportKey(body.Filename)
		url, err := blobs.PresignPut(r.Context(), key, body.ContentType)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "BLOB TOKEN FAILED",
				"details": err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"key": key, "url": url})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
