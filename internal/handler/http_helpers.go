package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "docpipe/pkg/errors"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError renders err with the status of its AppError type. Errors
// outside the taxonomy are reported as internal without their message.
func writeError(w http.ResponseWriter, err error) {
	message := "internal server error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	writeJSON(w, apperrors.GetStatusCode(err), errorResponse{
		Error: message,
		Type:  string(apperrors.GetType(err)),
	})
}
