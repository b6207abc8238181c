package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/landscape-hq/underwriter/internal/app/domain/document"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// uploadDocument accepts a multipart form with a "file" part plus optional
// "project_id" and "kind" values.
func (h *handler) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 33<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("multipart field \"file\" is required"))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	kind := document.Kind(r.FormValue("kind"))
	if kind == "" {
		kind = document.KindOther
	}
	d, err := h.app.Documents.Upload(
		r.Context(),
		r.FormValue("project_id"),
		kind,
		header.Filename,
		header.Header.Get("Content-Type"),
		logging.GetUserID(r.Context()),
		data,
	)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.app.Documents.List(r.Context(), q.Get("project_id"), document.Status(q.Get("status")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getDocument(w http.ResponseWriter, r *http.Request) {
	d, err := h.app.Documents.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Documents.Delete(r.Context(), pathID(r)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) documentContent(w http.ResponseWriter, r *http.Request) {
	d, data, err := h.app.Documents.Content(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handler) reclassifyDocument(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Kind string `json:"kind"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d, err := h.app.Documents.Reclassify(r.Context(), pathID(r), document.Kind(payload.Kind))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handler) documentExtraction(w http.ResponseWriter, r *http.Request) {
	ex, err := h.app.Documents.GetExtraction(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (h *handler) promoteDocument(w http.ResponseWriter, r *http.Request) {
	l, err := h.app.Documents.Promote(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.app.Reports.Invalidate(r.Context(), l.ProjectID)
	writeJSON(w, http.StatusCreated, l)
}

// processDocuments runs one extraction batch on demand. The route is gated
// behind the admin role; the background poller covers the steady state.
func (h *handler) processDocuments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	n, err := h.app.Documents.ProcessPending(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"processed": n})
}
