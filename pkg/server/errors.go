package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/printframe/pkg/errors"
)

// errorBody is the JSON error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// statusFor maps an error onto an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeEmptyScene:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidTemplate, errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidColor, errors.ErrCodeImageDecode, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeExportInProgress:
		return http.StatusConflict
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError logs err and writes its JSON form. Server errors hide their
// cause from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errors.GetCode(err))
	msg := errors.UserMessage(err)

	switch {
	case status == http.StatusRequestEntityTooLarge:
		code, msg = string(errors.ErrCodeInvalidInput), "request body too large"
	case status == http.StatusGatewayTimeout:
		code, msg = string(errors.ErrCodeInternal), "request timed out"
	case code == "":
		code, msg = string(errors.ErrCodeInternal), "internal error"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	}

	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   msg,
		RequestID: RequestID(r.Context()),
		Retryable: errors.Retryable(err),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
