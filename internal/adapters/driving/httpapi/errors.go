package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Messages shown for errors whose wrapped detail is not meant for clients.
const (
	msgNotLoaded       = "Legal documents not loaded yet."
	msgContextNotFound = "Context not found. Please upload the file first."
	msgNoMatch         = "No relevant passages found for this question."
	msgEmptyCompletion = "The model returned an empty answer. Please try again."
	msgBuildFailed     = "The document could not be indexed."
	msgUnavailable     = "The AI service is not available. Check the server settings."
	msgInternal        = "Internal server error."
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a domain error to its HTTP status and client message.
// Input problems are checked before build failures because an extraction
// error during a build is wrapped by both.
func statusFor(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "Upload exceeds the size limit."
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrExtractionFailed),
		errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrNoCorpora):
		return http.StatusNotFound, msgNotLoaded
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, msgContextNotFound
	case errors.Is(err, domain.ErrNoMatchFound):
		return http.StatusNotFound, msgNoMatch
	case errors.Is(err, domain.ErrEmptyCompletion):
		return http.StatusBadGateway, msgEmptyCompletion
	case errors.Is(err, domain.ErrBuildFailed):
		return http.StatusBadGateway, msgBuildFailed
	case errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable, msgUnavailable
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		logger.Debug("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response: %v", err)
	}
}
