// Package handlers contains application use case handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

// Stable error codes reported to callers.
const (
	CodeNotFound   = "not_found"
	CodeForbidden  = "forbidden"
	CodeValidation = "validation"
	CodeConflict   = "conflict"
	CodeInternal   = "internal"
)

// ErrorCode maps an error to its stable code and the HTTP status an outer
// boundary should answer with. A nil error maps to 200.
func ErrorCode(err error) (string, int) {
	switch {
	case err == nil:
		return "", http.StatusOK
	case errors.Is(err, entities.ErrNotFound):
		return CodeNotFound, http.StatusNotFound
	case errors.Is(err, entities.ErrValidation):
		return CodeValidation, http.StatusBadRequest
	case errors.Is(err, entities.ErrForbidden):
		return CodeForbidden, http.StatusForbidden
	case errors.Is(err, entities.ErrConflict):
		return CodeConflict, http.StatusConflict
	default:
		return CodeInternal, http.StatusInternalServerError
	}
}
