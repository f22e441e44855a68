package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/compiler"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/logger"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/metrics"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/normalize"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/publish"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/schema"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/store"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/submission"
)

const (
	msgInvalidJSON     = "request body is not a JSON object"
	msgInvalidFormID   = "invalid form id"
	msgNotFound        = "not found"
	msgNotPublished    = "form is not published"
	msgStoreDisabled   = "record storage is not configured"
	msgInternal        = "internal error"
	msgContract        = "configuration violates the compiler contract"
	msgInvalidPayload  = "payload does not match the submission schema"
	msgInvalidRevision = "invalid revision"
)

var contentTypes = map[string]string{
	compiler.FileDocument: "text/html; charset=utf-8",
	compiler.FileMarkup:   "text/html; charset=utf-8",
	compiler.FileStyle:    "text/css; charset=utf-8",
	compiler.FileScript:   "text/javascript; charset=utf-8",
}

// PreviewResponse is the JSON form of POST /api/v1/preview?format=json.
type PreviewResponse struct {
	Hash             string             `json:"hash"`
	Cached           bool               `json:"cached"`
	Config           form.Config        `json:"config"`
	Sources          normalize.Report   `json:"sources"`
	SchemaViolations []schema.Violation `json:"schema_violations"`
}

// RecordResponse describes a stored record revision.
type RecordResponse struct {
	FormID   string         `json:"form_id"`
	Revision int            `json:"revision"`
	Data     map[string]any `json:"data,omitempty"`
}

// PublicationResponse describes one publication.
type PublicationResponse struct {
	ID         string `json:"id"`
	Seq        int64  `json:"seq"`
	Revision   int    `json:"revision"`
	Hash       string `json:"hash"`
	Superseded bool   `json:"superseded"`
	Unchanged  bool   `json:"unchanged,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeRecord reads a JSON object body.
func decodeRecord(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var rec map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&rec); err != nil || rec == nil {
		respondError(w, http.StatusBadRequest, msgInvalidJSON)
		return nil, false
	}
	return rec, true
}

// POST /api/v1/preview
// Compiles an unsaved record through the same pipeline as publish.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	res, err := s.pipeline.Build(r.Context(), rec)
	if err != nil {
		s.respondBuildError(w, err)
		return
	}

	w.Header().Set("X-Form-Hash", res.Artifact.Hash)
	if r.URL.Query().Get("format") == "json" {
		violations := res.SchemaViolations
		if violations == nil {
			violations = []schema.Violation{}
		}
		respondJSON(w, http.StatusOK, PreviewResponse{
			Hash:             res.Artifact.Hash,
			Cached:           res.Cached,
			Config:           res.Config,
			Sources:          res.Report,
			SchemaViolations: violations,
		})
		return
	}
	respondHTML(w, res.Artifact.Document)
}

func (s *Server) respondBuildError(w http.ResponseWriter, err error) {
	var ce *compiler.ContractError
	if errors.As(err, &ce) {
		details := make([]string, len(ce.Violations))
		for i, v := range ce.Violations {
			details[i] = v.Error()
		}
		respondError(w, http.StatusUnprocessableEntity, msgContract, details...)
		return
	}
	s.log.WithError(err).Error("build failed", nil)
	respondError(w, http.StatusInternalServerError, msgInternal)
}

// POST /api/v1/submissions
// Accepts webhook payloads from compiled forms and checks them against the
// submission schema.
func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	err = submission.ValidateJSON(body)
	var se *submission.SchemaError
	switch {
	case err == nil:
	case errors.As(err, &se):
		metrics.SubmissionsReceived.WithLabelValues("false").Inc()
		s.log.Warn("submission rejected", logger.Fields{"problems": se.Problems})
		respondError(w, http.StatusUnprocessableEntity, msgInvalidPayload, se.Problems...)
		return
	default:
		metrics.SubmissionsReceived.WithLabelValues("false").Inc()
		respondError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	var p submission.Payload
	if err := json.Unmarshal(body, &p); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	metrics.SubmissionsReceived.WithLabelValues("true").Inc()
	s.log.Info("submission received", logger.Fields{
		"form_title": p.FormTitle,
		"menu_id":    p.State.MenuID,
		"date":       p.State.Date,
		"time":       p.State.Time,
		"total":      p.TotalPrice,
	})
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// formID extracts and checks the {formId} route variable.
func formID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["formId"]
	if !publish.ValidFormID(id) {
		respondError(w, http.StatusBadRequest, msgInvalidFormID)
		return "", false
	}
	return id, true
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, msgStoreDisabled)
		return false
	}
	return true
}

// GET /api/v1/forms
func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	forms, err := s.store.ListForms(r.Context())
	if err != nil {
		s.log.WithError(err).Error("list forms failed", nil)
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	out := make([]RecordResponse, len(forms))
	for i, f := range forms {
		out[i] = RecordResponse{FormID: f.FormID, Revision: f.Revision}
	}
	respondJSON(w, http.StatusOK, out)
}

// PUT /api/v1/forms/{formId}/record
func (s *Server) handleSaveRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, r)
	if !ok || !s.requireStore(w) {
		return
	}
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	saved, err := s.store.SaveRecord(r.Context(), id, rec)
	if err != nil {
		s.log.WithError(err).Error("save record failed", logger.Fields{"form_id": id})
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	respondJSON(w, http.StatusCreated, RecordResponse{FormID: saved.FormID, Revision: saved.Revision})
}

// GET /api/v1/forms/{formId}/record[?revision=N]
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, r)
	if !ok || !s.requireStore(w) {
		return
	}

	var rec store.Record
	var err error
	if rev := r.URL.Query().Get("revision"); rev != "" {
		n, convErr := strconv.Atoi(rev)
		if convErr != nil || n < 1 {
			respondError(w, http.StatusBadRequest, msgInvalidRevision)
			return
		}
		rec, err = s.store.RecordAt(r.Context(), id, n)
	} else {
		rec, err = s.store.LatestRecord(r.Context(), id)
	}
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		s.log.WithError(err).Error("read record failed", logger.Fields{"form_id": id})
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	respondJSON(w, http.StatusOK, RecordResponse{FormID: rec.FormID, Revision: rec.Revision, Data: rec.Data})
}

// POST /api/v1/forms/{formId}/publish
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, r)
	if !ok {
		return
	}
	if s.publisher == nil {
		respondError(w, http.StatusServiceUnavailable, msgStoreDisabled)
		return
	}

	out, err := s.publisher.Publish(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		s.respondBuildError(w, err)
		return
	}
	status := http.StatusCreated
	if out.Unchanged {
		status = http.StatusOK
	}
	respondJSON(w, status, publicationResponse(out.Publication, out.Unchanged))
}

// GET /api/v1/forms/{formId}/publications
func (s *Server) handlePublications(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, r)
	if !ok || !s.requireStore(w) {
		return
	}
	history, err := s.store.Publications(r.Context(), id)
	if err != nil {
		s.log.WithError(err).Error("list publications failed", logger.Fields{"form_id": id})
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	out := make([]PublicationResponse, len(history))
	for i, p := range history {
		out[i] = publicationResponse(p, false)
	}
	respondJSON(w, http.StatusOK, out)
}

func publicationResponse(p store.Publication, unchanged bool) PublicationResponse {
	return PublicationResponse{
		ID:         p.ID,
		Seq:        p.Seq,
		Revision:   p.Revision,
		Hash:       p.Hash,
		Superseded: p.Superseded,
		Unchanged:  unchanged,
	}
}

// GET /forms/{formId}/ and /forms/{formId}/{file}
// Serves the live publication of a form.
func (s *Server) handlePublished(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, r)
	if !ok || !s.requireStore(w) {
		return
	}
	file := mux.Vars(r)["file"]
	if file == "" {
		file = compiler.FileDocument
	}
	contentType, known := contentTypes[file]
	if !known {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}

	live, err := s.store.LatestPublication(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, msgNotPublished)
		return
	}
	if err != nil {
		s.log.WithError(err).Error("read publication failed", logger.Fields{"form_id": id})
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	body, err := os.ReadFile(filepath.Join(live.Dir, file))
	if err != nil {
		s.log.WithError(err).Error("published file missing", logger.Fields{"form_id": id, "dir": live.Dir})
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("ETag", strconv.Quote(live.Hash))
	_, _ = w.Write(body)
}
