package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/golang/glog"

	"github.com/example/safecase/internal/core/checklist"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string              `json:"error"`
	Kind  checklist.ErrorKind `json:"kind,omitempty"`
	// Subject names the item or role a completion-gate failure is about.
	Subject string `json:"subject,omitempty"`
}

// statusFor maps a workflow error kind to an HTTP status.
func statusFor(kind checklist.ErrorKind) int {
	switch kind {
	case checklist.KindNotFound:
		return http.StatusNotFound
	case checklist.KindInvalidInput:
		return http.StatusBadRequest
	case checklist.KindAlreadyExists, checklist.KindAlreadySigned,
		checklist.KindAlreadyReviewed, checklist.KindAlreadyCompleted:
		return http.StatusConflict
	case checklist.KindInvalidState, checklist.KindMissingRequiredItem, checklist.KindMissingSignature,
		checklist.KindNoSignatures, checklist.KindNoPendingReview:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeServiceError writes a typed workflow error with its mapped status.
// Untyped errors are logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var typed *checklist.Error
	if !errors.As(err, &typed) {
		glog.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusFor(typed.Kind), errorBody{Error: typed.Message, Kind: typed.Kind, Subject: typed.Subject})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}
