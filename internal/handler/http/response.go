package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/aujren/auth-service/pkg/errors"
	"github.com/aujren/auth-service/pkg/validator"
)

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Status  int               `json:"status"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Cause   string            `json:"cause,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// exposeErrorCause controls whether internal error causes are echoed back in
// responses. Enabled only outside production.
var exposeErrorCause bool

// ExposeErrorCause toggles inclusion of underlying error causes in error
// responses. Call once during router setup.
func ExposeErrorCause(enable bool) {
	exposeErrorCause = enable
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

func writeAppError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp := &errorResponse{Status: appErr.Status, Code: appErr.Code, Message: appErr.Message}
		if appErr.Status >= http.StatusInternalServerError {
			logger.ErrorContext(r.Context(), "request failed",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			if exposeErrorCause && appErr.Err != nil {
				resp.Cause = appErr.Err.Error()
			}
		}
		writeJSON(w, appErr.Status, response{Error: resp})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code = "NOT_FOUND"
		message = "resource not found"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		code = "ALREADY_EXISTS"
		message = "resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput):
		code = "INVALID_INPUT"
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		code = "UNAUTHORIZED"
		message = err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		code = "FORBIDDEN"
		message = err.Error()
	default:
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		if exposeErrorCause {
			message = err.Error()
		}
	}

	writeJSON(w, status, response{
		Error: &errorResponse{Status: status, Code: code, Message: message},
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{
				Status:  http.StatusBadRequest,
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Status: http.StatusBadRequest, Code: "INVALID_INPUT", Message: err.Error()},
	})
}

// writeError is a shorthand for one-off error responses built inline.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, response{
		Error: &errorResponse{Status: status, Code: code, Message: message},
	})
}
