package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Lamplight-Studio/idea-print-agent/internal/app/printjob"
)

// Server is the HTTP adapter over the print service.
type Server struct {
	Jobs *printjob.Service
}

func NewServer(jobs *printjob.Service) *Server {
	return &Server{Jobs: jobs}
}

// PrintRequestBody is the wire shape of POST /print.
type PrintRequestBody struct {
	IdeaText  string `json:"idea_text"`
	IdeaID    string `json:"idea_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// PrintResponseBody is the wire shape of a 200 from POST /print.
type PrintResponseBody struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	IdeaID    string `json:"idea_id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// HealthResponseBody is the wire shape of GET /health.
type HealthResponseBody struct {
	Status        string `json:"status"`
	Transport     string `json:"transport"`
	DedupeEnabled bool   `json:"dedupe_enabled"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, HealthResponseBody{
		Status:        "ok",
		Transport:     string(s.Jobs.TransportKind()),
		DedupeEnabled: s.Jobs.DedupeEnabled(),
	})
}

func (s *Server) Print(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "MALFORMED_BODY", "unable to read request body", nil)
		return
	}
	if len(body) > maxBodyBytes {
		writeError(w, r, http.StatusBadRequest, "MALFORMED_BODY", "request body too large", nil)
		return
	}

	var req PrintRequestBody
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "MALFORMED_BODY", "request body must be valid JSON", nil)
		return
	}

	res, err := s.Jobs.Print(r.Context(), printjob.Input{
		IdeaText:  req.IdeaText,
		IdeaID:    req.IdeaID,
		RequestID: req.RequestID,
	})
	if err != nil {
		var ae *printjob.Error
		if errors.As(err, &ae) {
			writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
			return
		}
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}

	writeJSON(w, http.StatusOK, PrintResponseBody{
		Success:   true,
		Message:   res.Message,
		IdeaID:    res.IdeaID,
		Duplicate: res.Duplicate,
	})
}
