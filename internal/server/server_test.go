package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driverpro-notifier/internal/common/logger"
)

type stubSender struct {
	err        error
	recipients []string
}

func (s *stubSender) SendTest(_ context.Context, recipient string) error {
	s.recipients = append(s.recipients, recipient)
	return s.err
}

func newTestServer(t *testing.T, sender *stubSender, testRecipient string) *Server {
	t.Helper()
	return New("driverpro-notifier", sender, testRecipient,
		func() string { return "listening" }, logger.NewTestLogger(t))
}

func TestHandleRoot(t *testing.T) {
	srv := newTestServer(t, &stubSender{}, "ops@driverpro.fr")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "driverpro-notifier", body["service"])
	assert.Equal(t, "listening", body["subscription"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubSender{}, "")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleTestEmail_Success(t *testing.T) {
	sender := &stubSender{}
	srv := newTestServer(t, sender, "ops@driverpro.fr")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test-email", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ops@driverpro.fr"}, sender.recipients)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body["message"], "ops@driverpro.fr")
}

func TestHandleTestEmail_SendFailure(t *testing.T) {
	sender := &stubSender{err: errors.New("provider down")}
	srv := newTestServer(t, sender, "ops@driverpro.fr")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test-email", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["message"], "provider down")
}

func TestHandleTestEmail_NoRecipientConfigured(t *testing.T) {
	sender := &stubSender{}
	srv := newTestServer(t, sender, "")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test-email", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, sender.recipients)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubSender{}, "")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}
