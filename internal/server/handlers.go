package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/nao1215/tcmlookup/internal/lookup"
	"github.com/nao1215/tcmlookup/internal/model"
)

// Response messages.
const (
	msgNotJSON       = "request body must be JSON"
	msgMissingKey    = "the 'cpf' field is required"
	msgBusy          = "too many lookups in progress; try again later"
	extractionPrefix = "error processing the data: "
)

// maxBodyBytes bounds the request body.
const maxBodyBytes = 64 << 10

// lookupRequest is the lookup request body. CPF is any so that a
// non-string value is reported as missing rather than as malformed JSON.
type lookupRequest struct {
	CPF any `json:"cpf"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r.Header.Get("Content-Type")) {
		writeError(w, http.StatusUnsupportedMediaType, msgNotJSON)
		return
	}

	key, ok := decodeKey(io.LimitReader(r.Body, maxBodyBytes))
	if !ok {
		writeError(w, http.StatusBadRequest, msgMissingKey)
		return
	}

	result, err := s.lookups.Lookup(r.Context(), key)
	if err != nil {
		status, message := failureResponse(err)
		writeError(w, status, message)
		return
	}

	if !result.Found() {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": result.Outcome.Message()})
		return
	}
	writeJSON(w, http.StatusOK, result.Record)
}

// decodeKey reads the search key from a lookup request body.
func decodeKey(body io.Reader) (model.SearchKey, bool) {
	var req lookupRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return "", false
	}
	s, ok := req.CPF.(string)
	if !ok {
		return "", false
	}
	key := model.SearchKey(s)
	if key.Validate() != nil {
		return "", false
	}
	return key, true
}

// failureResponse maps a lookup failure to a status and message.
func failureResponse(err error) (int, string) {
	switch {
	case errors.Is(err, lookup.ErrNotAdmitted):
		return http.StatusServiceUnavailable, msgBusy
	case errors.Is(err, model.ErrEmptySearchKey):
		return http.StatusBadRequest, msgMissingKey
	}

	switch model.KindOf(err) {
	case model.KindDriverInit:
		return http.StatusServiceUnavailable, err.Error()
	case model.KindExtraction:
		return http.StatusInternalServerError, extractionPrefix + err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// isJSON reports whether a Content-Type header names a JSON body.
func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
