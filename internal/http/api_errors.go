// Package httpx provides HTTP handlers and utilities for the taskdog API.
package httpx

import (
	"errors"
	"net/http"

	apperrors "github.com/taskdog/taskdog/internal/errors"
)

// statusClientClosedRequest is nginx's non-standard status for a request
// the client abandoned; net/http has no constant for it.
const statusClientClosedRequest = 499

// errorBody is the JSON shape every API error uses. Field and Details are
// only present when the underlying AppError carries them.
type errorBody struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// RenderAppError maps an application error onto its HTTP status and writes
// the JSON error body. Errors that are not AppErrors render as 500 with a
// generic message so internals never leak to the client.
func RenderAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		WriteJSON(w, http.StatusInternalServerError, errorBody{
			Error:   string(apperrors.ErrCodeInternal),
			Message: "internal server error",
		})
		return
	}

	WriteJSON(w, statusForCode(appErr.Code), errorBody{
		Error:   string(appErr.Code),
		Message: appErr.Message,
		Field:   appErr.Field,
		Details: appErr.Details,
	})
}

func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeValidation, apperrors.ErrCodeDependencyNotMet:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeAlreadyFinished,
		apperrors.ErrCodeNotStarted,
		apperrors.ErrCodeIncompleteChildren,
		apperrors.ErrCodeConflict,
		apperrors.ErrCodeForeignKey:
		return http.StatusConflict
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCanceled:
		return statusClientClosedRequest
	case apperrors.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
