package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagarc03/cardfs"
	cardfshttp "github.com/sagarc03/cardfs/http"
	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"not found", cardfs.ErrNotFound, http.StatusNotFound, "not found"},
		{"invalid input", fmt.Errorf("list: %w", cardfs.ErrInvalidInput), http.StatusBadRequest, "invalid input"},
		{"forbidden", cardfs.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"internal", cardfs.ErrInternal, http.StatusInternalServerError, "internal error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			cardfshttp.HandleError(rec, tt.err)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteText(t *testing.T) {
	rec := httptest.NewRecorder()

	cardfshttp.WriteText(rec, http.StatusOK, "deleted")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deleted", rec.Body.String())
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	err := cardfshttp.WriteJSON(rec, http.StatusOK, []cardfs.TreeNode{})

	assert.NoError(t, err)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[]`, rec.Body.String())
}
