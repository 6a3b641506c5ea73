package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, handler gin.HandlerFunc) (int, ErrorResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil)

	handler(c)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return w.Code, body
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category string
	}{
		{name: "pg error", err: &pgconn.PgError{Code: "42P01", Message: "relation missing"}, category: CategoryDatabase},
		{name: "no rows", err: fmt.Errorf("load: %w", pgx.ErrNoRows), category: CategoryNotFound},
		{name: "deadline", err: fmt.Errorf("embed: %w", context.DeadlineExceeded), category: CategoryTimeout},
		{name: "canceled", err: context.Canceled, category: CategoryTimeout},
		{name: "dial", err: errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"), category: CategoryNetwork},
		{name: "embedding", err: errors.New("embedding API error (status 500)"), category: CategoryNetwork},
		{name: "binding", err: errors.New("Key: 'Message' binding failed"), category: CategoryValidation},
		{name: "unknown", err: errors.New("boom"), category: CategoryUnknown},
		{name: "nil", err: nil, category: CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, classifyError(tt.err).category)
		})
	}
}

func TestSanitizeErrorInProduction(t *testing.T) {
	err := errors.New("dial tcp 10.0.0.5:5432: connection refused")

	t.Setenv("ENVIRONMENT", "development")
	assert.Equal(t, err.Error(), sanitizeError(err))

	t.Setenv("ENVIRONMENT", "production")
	assert.Equal(t, "connection error occurred", sanitizeError(err))
	assert.Empty(t, sanitizeError(nil))
}

func TestResponses(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	tests := []struct {
		name    string
		handler gin.HandlerFunc
		status  int
		code    string
		message string
		details string
	}{
		{
			name:    "bad request",
			handler: func(c *gin.Context) { BadRequest(c, "", nil) },
			status:  http.StatusBadRequest,
			code:    CodeBadRequest,
			message: "invalid request",
		},
		{
			name:    "validation",
			handler: func(c *gin.Context) { ValidationError(c, errors.New("binding failed")) },
			status:  http.StatusBadRequest,
			code:    CodeValidationError,
			message: "request validation failed",
			details: "validation failed",
		},
		{
			name:    "internal",
			handler: func(c *gin.Context) { InternalError(c, "failed to answer", errors.New("boom")) },
			status:  http.StatusInternalServerError,
			code:    CodeServerError,
			message: "failed to answer",
			details: "an error occurred",
		},
		{
			name:    "unavailable",
			handler: func(c *gin.Context) { ServiceUnavailable(c, "", context.DeadlineExceeded) },
			status:  http.StatusServiceUnavailable,
			code:    CodeServiceUnavailable,
			message: "service temporarily unavailable",
			details: "request timed out",
		},
		{
			name:    "rate limited",
			handler: func(c *gin.Context) { TooManyRequests(c, "") },
			status:  http.StatusTooManyRequests,
			code:    CodeTooManyRequests,
			message: "too many requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := perform(t, tt.handler)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Error)
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, tt.details, body.Details)
		})
	}
}
