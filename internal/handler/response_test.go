package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-character-api/internal/model"
	"go-character-api/pkg/apierror"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "api error", err: apierror.New("BAD_REQUEST", "Bad Request", "x", http.StatusBadRequest), wantStatus: 400, wantCode: "BAD_REQUEST", wantMsg: "Bad Request"},
		{name: "wrapped conflict", err: fmt.Errorf("register: %w", model.ErrUserAlreadyExists), wantStatus: 409, wantCode: "CONFLICT", wantMsg: "User already exists"},
		{name: "user not found", err: model.ErrUserNotFound, wantStatus: 404, wantCode: "NOT_FOUND", wantMsg: "User not found"},
		{name: "character not found", err: model.ErrCharacterNotFound, wantStatus: 404, wantCode: "NOT_FOUND", wantMsg: "Character not found"},
		{name: "unauthorized", err: model.ErrUnauthorized, wantStatus: 401, wantCode: "UNAUTHORIZED", wantMsg: "Unauthorized"},
		{name: "invalid credentials", err: model.ErrInvalidCredentials, wantStatus: 401, wantCode: "UNAUTHORIZED", wantMsg: "Invalid email or password"},
		{name: "invalid token", err: model.ErrTokenInvalid, wantStatus: 403, wantCode: "INVALID_TOKEN", wantMsg: "Invalid token"},
		{name: "forbidden", err: model.ErrForbidden, wantStatus: 403, wantCode: "FORBIDDEN", wantMsg: "Forbidden"},
		{name: "wrapped forbidden", err: fmt.Errorf("logout: %w", model.ErrForbidden), wantStatus: 403, wantCode: "FORBIDDEN", wantMsg: "Forbidden"},
		{name: "unknown", err: errors.New("pq: connection reset by peer"), wantStatus: 500, wantCode: "INTERNAL_ERROR", wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			body := decodeBody[model.ErrorResponse](t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestWriteErrorHidesInternalText(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("secret internal detail"))

	assert.NotContains(t, rec.Body.String(), "secret internal detail")
}

func TestWriteErrorCarriesIssues(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apierror.New("BAD_REQUEST", "Bad Request", "", http.StatusBadRequest).
		WithIssues([]apierror.Issue{{Field: "email", Message: "email is required"}})

	writeError(rec, err)

	body := decodeBody[model.ErrorResponse](t, rec)
	require.Len(t, body.Issues, 1)
	assert.Equal(t, "email", body.Issues[0].Field)
}

type stubHealth struct{ err error }

func (s stubHealth) Health(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		handler    *HealthHandler
		wantStatus int
		wantBody   string
	}{
		{name: "no database", handler: NewHealthHandler(nil), wantStatus: 200, wantBody: `{"status":"ok"}`},
		{name: "database up", handler: NewHealthHandler(stubHealth{}), wantStatus: 200, wantBody: `{"status":"ok","database":"up"}`},
		{name: "database down", handler: NewHealthHandler(stubHealth{err: errors.New("down")}), wantStatus: 503, wantBody: `{"status":"unavailable","database":"down"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
