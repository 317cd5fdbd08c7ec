package ui

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "oohdesk/internal/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps application error codes onto HTTP statuses. Unknown
// errors become a 500 with a generic message so internals never leak.
func respondError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		respondJSON(w, http.StatusInternalServerError, errorBody{
			Error: "internal error",
			Code:  apperrors.CodeInternalError,
		})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeSessionExpired:
		status = http.StatusGone
	case apperrors.CodeInvalidInput, apperrors.CodeValidationError:
		status = http.StatusUnprocessableEntity
	case apperrors.CodeParseFailure:
		status = http.StatusBadRequest
	case apperrors.CodeFileTooLarge:
		status = http.StatusRequestEntityTooLarge
	case apperrors.CodeExternalService:
		status = http.StatusBadGateway
	case apperrors.CodeDatabaseError, apperrors.CodeInternalError, apperrors.CodeConfigInvalid:
		status = http.StatusInternalServerError
	}

	respondJSON(w, status, errorBody{Error: appErr.Message, Code: appErr.Code})
}
