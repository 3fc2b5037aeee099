// AngelaMos | 2026
// response_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestOKEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]int{"amount": 3})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"amount":3}}`, rec.Body.String())
}

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"app error", BadRequestError("nope"), http.StatusBadRequest, "BAD_REQUEST"},
		{"wrapped app error", fmt.Errorf("ctx: %w", NotFoundError("user")), http.StatusNotFound, "NOT_FOUND"},
		{"not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"constraint", fmt.Errorf("insert: %w", ErrConstraint), http.StatusBadRequest, "CONSTRAINT_VIOLATION"},
		{"duplicate", fmt.Errorf("insert: %w", ErrDuplicateKey), http.StatusBadRequest, "CONSTRAINT_VIOLATION"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotContains(t, body.Error.Message, "db exploded")
		})
	}
}

func TestFormatValidationError(t *testing.T) {
	type payload struct {
		Amount int    `validate:"required,min=1,max=10"`
		Tier   string `validate:"oneof=bandana hat vest"`
	}

	err := validator.New().Struct(payload{Amount: 11, Tier: "cap"})
	msg := FormatValidationError(err)

	assert.Contains(t, msg, "amount must be at most 10")
	assert.Contains(t, msg, "tier must be one of: bandana hat vest")
	assert.Equal(t, "invalid request", FormatValidationError(errors.New("x")))
}
