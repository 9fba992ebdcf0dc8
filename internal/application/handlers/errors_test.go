package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{name: "nil", err: nil, wantCode: "", wantStatus: http.StatusOK},
		{name: "not found", err: fmt.Errorf("entity %q: %w", "x", entities.ErrNotFound), wantCode: CodeNotFound, wantStatus: http.StatusNotFound},
		{name: "validation", err: &entities.ValidationError{Field: "kind", Message: "unknown"}, wantCode: CodeValidation, wantStatus: http.StatusBadRequest},
		{name: "forbidden", err: fmt.Errorf("deleted: %w", entities.ErrForbidden), wantCode: CodeForbidden, wantStatus: http.StatusForbidden},
		{name: "conflict", err: entities.ErrConflict, wantCode: CodeConflict, wantStatus: http.StatusConflict},
		{name: "storage failure", err: errors.New("disk I/O error"), wantCode: CodeInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, status := ErrorCode(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}
