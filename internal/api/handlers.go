package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gastownhall/trustscore/internal/scoring"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// lookupBody is the validated form of scoring.LookupRequest.
type lookupBody struct {
	Handle string `json:"handle" validate:"required,max=253"`
	Force  bool   `json:"force"`
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupBody
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req.Handle = strings.TrimPrefix(strings.TrimSpace(req.Handle), "@")
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	job := s.store.Enqueue(req.Handle, req.Force)
	s.log.Info().Str("handle", req.Handle).Str("job_id", job.ID).Str("status", job.Status).Bool("force", req.Force).Msg("lookup")
	writeJSON(w, http.StatusOK, scoring.LookupResponse{DID: job.DID, JobID: job.ID, Status: job.Status})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, ok := s.store.Advance(id)
	if !ok {
		status = StatusUnknown
	}
	writeJSON(w, http.StatusOK, scoring.JobStatusUpdate{JobID: id, Status: status})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, ok := s.store.Report(id)
	if !ok {
		writeJSON(w, http.StatusOK, scoring.ScoreReport{DID: id})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// validationMessage flattens validator errors into "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" is "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}
