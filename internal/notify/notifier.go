// internal/notify/notifier.go
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "driverpro-notifier/internal/common/errors"
	"driverpro-notifier/internal/common/logger"
	"driverpro-notifier/internal/common/metrics"
)

// SendRequest is the structured request accepted by the email capability.
type SendRequest struct {
	To           string
	FromEmail    string
	FromName     string
	Subject      string
	TemplateID   string
	TemplateData map[string]interface{}
}

// Mailer is the transactional email capability.
type Mailer interface {
	SendTemplated(ctx context.Context, req SendRequest) error
}

// ProviderError carries any structured error body the provider returned, so
// it can be logged alongside the dispatch failure.
type ProviderError struct {
	ResponseBody string
	Err          error
}

func (e *ProviderError) Error() string {
	if e.ResponseBody != "" {
		return fmt.Sprintf("provider send failed: %s", e.ResponseBody)
	}
	return fmt.Sprintf("provider send failed: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Notifier builds templated send requests and dispatches them through the
// configured Mailer. It performs no retries of its own: a failed send is
// logged and the event dropped by the caller. This at-most-one-attempt policy
// is deliberate and relied upon by the batch isolation rules.
type Notifier struct {
	mailer    Mailer
	fromEmail string
	fromName  string
	logger    logger.Logger
}

func NewNotifier(mailer Mailer, fromEmail, fromName string, log logger.Logger) *Notifier {
	return &Notifier{
		mailer:    mailer,
		fromEmail: fromEmail,
		fromName:  fromName,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// Send dispatches one notification email for the resolved template and
// payload. Failures are classified as DISPATCH_FAILED with the provider's
// response detail attached when available.
func (n *Notifier) Send(ctx context.Context, recipient string, tmpl TemplateDescriptor, payload Payload) error {
	notificationID := uuid.New().String()
	start := time.Now()

	req := SendRequest{
		To:           recipient,
		FromEmail:    n.fromEmail,
		FromName:     n.fromName,
		Subject:      tmpl.Subject,
		TemplateID:   tmpl.TemplateID,
		TemplateData: payload.TemplateData(),
	}

	if err := n.mailer.SendTemplated(ctx, req); err != nil {
		detail := ""
		var provErr *ProviderError
		if errors.As(err, &provErr) {
			detail = provErr.ResponseBody
		}
		n.logger.Error("notification send failed", map[string]interface{}{
			"notificationId":   notificationID,
			"to":               recipient,
			"template":         tmpl.TemplateID,
			"providerResponse": detail,
			"error":            err.Error(),
		})
		return apperrors.NewDispatchFailedError(detail, err)
	}

	metrics.NotificationsSent.Inc()
	n.logger.Info("notification sent", map[string]interface{}{
		"notificationId": notificationID,
		"to":             recipient,
		"subject":        tmpl.Subject,
		"template":       tmpl.TemplateID,
		"durationMs":     time.Since(start).Milliseconds(),
	})
	return nil
}

// SendTest dispatches a fixed diagnostic email through the full template
// path, used by the HTTP test endpoint.
func (n *Notifier) SendTest(ctx context.Context, recipient string) error {
	tmpl, err := ResolveTemplate("confirmed")
	if err != nil {
		return err
	}

	payload := Payload{
		ReservationID: "test0000",
		ClientName:    defaultClientName,
		DriverName:    "Chauffeur Test",
		DriverPhone:   "+33 6 00 00 00 00",
		Date:          FormatDate(time.Now()),
		Origin:        "Paris",
		Destination:   "Aéroport Charles de Gaulle",
		Price:         FormatPrice(0),
	}

	return n.Send(ctx, recipient, tmpl, payload)
}
