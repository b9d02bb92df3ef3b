package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mediatiff/mediation-server/internal/storage"
)

// maxUploadBytes caps a single proof file.
const maxUploadBytes = 25 << 20

// UploadHandler handles proof file uploads into the archive.
type UploadHandler struct {
	archive *storage.Archive
	logger  *zap.SugaredLogger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(archive *storage.Archive, logger *zap.SugaredLogger) *UploadHandler {
	return &UploadHandler{archive: archive, logger: logger}
}

// uploadedFile is the response record for a stored proof file.
type uploadedFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// failedFile reports one batch entry that did not make it.
type failedFile struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// batchResponse reports the surviving URLs of a batch in input order plus
// the entries that failed. Callers must not assume all-or-nothing.
type batchResponse struct {
	URLs   []string     `json:"urls"`
	Failed []failedFile `json:"failed"`
}

// Single handles POST /api/v1/upload?filename=
// The raw request body is the file content; the frontend streams the
// file directly rather than wrapping it in a form.
func (h *UploadHandler) Single(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		respondError(w, http.StatusBadRequest, "Filename is required", nil)
		return
	}
	if r.Body == nil || r.ContentLength == 0 {
		respondError(w, http.StatusBadRequest, "Request body is required", nil)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	url, err := h.archive.Store(r.Context(), filename, r.Header.Get("Content-Type"), body)
	if err != nil {
		respondServiceError(w, h.logger, "Error storing proof file", err)
		return
	}
	respondSuccess(w, http.StatusCreated, uploadedFile{Name: filename, URL: url})
}

// Batch handles POST /api/v1/upload/batch
// Accepts a multipart form with one or more "files" parts. Entries fail
// independently; the response lists the URLs that succeeded.
func (h *UploadHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		respondError(w, http.StatusBadRequest, "At least one file part is required", nil)
		return
	}

	files := make([]storage.BatchFile, 0, len(parts))
	var openFailures []failedFile
	for _, part := range parts {
		f, err := part.Open()
		if err != nil {
			openFailures = append(openFailures, failedFile{Name: part.Filename, Error: err.Error()})
			continue
		}
		defer f.Close()
		files = append(files, storage.BatchFile{
			Name:        part.Filename,
			ContentType: part.Header.Get("Content-Type"),
			Body:        f,
		})
	}

	results := h.archive.StoreBatch(r.Context(), files)

	resp := batchResponse{URLs: storage.URLs(results), Failed: openFailures}
	for _, res := range results {
		if res.Err != nil {
			resp.Failed = append(resp.Failed, failedFile{Name: res.Name, Error: res.Err.Error()})
		}
	}
	respondSuccess(w, http.StatusOK, resp)
}
