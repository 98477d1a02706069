package httputil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-ai/hearth/pkg/contextkeys"
)

func TestWriteJSONAndErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteSuccess(rec, map[string]string{"ok": "yes"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":"yes"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteNotFound(rec, "no such plugin")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"no such plugin"}`, rec.Body.String())
}

func TestParseJSONOrError(t *testing.T) {
	var dest map[string]any

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a": 1}`))
	rec := httptest.NewRecorder()
	require.True(t, ParseJSONOrError(rec, r, &dest))
	assert.Equal(t, float64(1), dest["a"])

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
	rec = httptest.NewRecorder()
	assert.False(t, ParseJSONOrError(rec, r, &dest))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=5&q=email&bad=x", nil)
	assert.Equal(t, 5, ParseQueryInt(r, "limit", 20))
	assert.Equal(t, 20, ParseQueryInt(r, "missing", 20))
	assert.Equal(t, 20, ParseQueryInt(r, "bad", 20))
	assert.Equal(t, "email", ParseQueryString(r, "q", ""))
	assert.Equal(t, "def", ParseQueryString(r, "missing", "def"))
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = contextkeys.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	// Incoming header is honored
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, "req-42", seen)
}

func TestRecoveryMiddleware(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	handler := RecoveryMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
