package http

import (
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/backup"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// validationErrors are rejected inputs: the ledger was not touched.
var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrEmptyName,
	core.ErrEmptyCategory,
	core.ErrMissingAccount,
	core.ErrUnknownAccount,
	core.ErrUnknownGoal,
	core.ErrSameAccount,
	core.ErrCurrencyMismatch,
	core.ErrInvalidCurrency,
	core.ErrInvalidTarget,
	core.ErrInvalidPayments,
	core.ErrInvalidDate,
	core.ErrLockedCategory,
	core.ErrCategoryExists,
	backup.ErrNotBackup,
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest), errors.Is(err, backup.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// writeError maps err onto a status and a {"error": ...} body. Server
// errors are logged and their details kept out of the response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldPath, r.URL.Path,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeInternal)
		InternalServerError().Write(w)
		return
	}
	ErrorResponse(status, err.Error()).Write(w)
}

// sanitizeInput drops control characters except tab and newlines and trims.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}
