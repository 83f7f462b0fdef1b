// Package server exposes the service's small HTTP surface: liveness, a
// diagnostic email trigger, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"driverpro-notifier/internal/common/logger"
)

// TestSender sends the fixed diagnostic email.
type TestSender interface {
	SendTest(ctx context.Context, recipient string) error
}

// Server holds the dependencies for the HTTP handlers.
type Server struct {
	service       string
	sender        TestSender
	testRecipient string
	subState      func() string
	logger        logger.Logger
	httpServer    *http.Server
}

func New(service string, sender TestSender, testRecipient string, subState func() string, log logger.Logger) *Server {
	return &Server{
		service:       service,
		sender:        sender,
		testRecipient: testRecipient,
		subState:      subState,
		logger:        log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/test-email", s.handleTestEmail)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// ListenAndServe starts the HTTP listener on the given port.
func (s *Server) ListenAndServe(port int) error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Router(),
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":    "ok",
		"service":   s.service,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if s.subState != nil {
		body["subscription"] = s.subState()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleTestEmail(w http.ResponseWriter, r *http.Request) {
	if s.testRecipient == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "no test recipient configured",
		})
		return
	}

	if err := s.sender.SendTest(r.Context(), s.testRecipient); err != nil {
		s.logger.Error("test email failed", map[string]interface{}{
			"to":    s.testRecipient,
			"error": err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": fmt.Sprintf("test email sent to %s", s.testRecipient),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
