// internal/notify/handler.go
package notify

import (
	"context"
	"errors"
	"strings"

	apperrors "driverpro-notifier/internal/common/errors"
	"driverpro-notifier/internal/common/logger"
	"driverpro-notifier/internal/models"
	"driverpro-notifier/internal/store"
)

// DriverGetter is the point-lookup half of the store capability.
type DriverGetter interface {
	GetDriver(ctx context.Context, id string) (*models.Driver, error)
}

// NotificationSender dispatches one resolved notification.
type NotificationSender interface {
	Send(ctx context.Context, recipient string, tmpl TemplateDescriptor, payload Payload) error
}

// Handler processes one changed reservation: fetch the driver, validate the
// recipient, resolve the template, build the payload, send. Every failure is
// per-record: it is returned to the caller for logging and never affects any
// other reservation being processed.
type Handler struct {
	drivers  DriverGetter
	notifier NotificationSender
	logger   logger.Logger
}

func NewHandler(drivers DriverGetter, notifier NotificationSender, log logger.Logger) *Handler {
	return &Handler{
		drivers:  drivers,
		notifier: notifier,
		logger:   log.WithFields(map[string]interface{}{"component": "change-handler"}),
	}
}

// Handle runs the per-record pipeline. Returned errors are always
// *errors.StandardError with one of the per-record codes.
func (h *Handler) Handle(ctx context.Context, reservationID string, res models.Reservation) error {
	log := h.logger.WithFields(map[string]interface{}{
		"reservationId": reservationID,
		"status":        res.Status,
	})

	drv, err := h.drivers.GetDriver(ctx, res.DriverID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NewDriverNotFoundError(res.DriverID)
		}
		stdErr := apperrors.NewDriverNotFoundError(res.DriverID)
		stdErr.Details = "driver fetch failed: " + err.Error()
		return stdErr
	}

	recipient := strings.TrimSpace(res.ClientEmail)
	if recipient == "" {
		return apperrors.NewMissingRecipientError(reservationID)
	}

	tmpl, err := ResolveTemplate(res.Status)
	if err != nil {
		return err
	}

	payload := BuildPayload(res, *drv)

	log.Debug("dispatching notification", map[string]interface{}{
		"template": tmpl.TemplateID,
		"to":       recipient,
	})

	if err := h.notifier.Send(ctx, recipient, tmpl, payload); err != nil {
		return err
	}

	return nil
}
