// internal/notify/templates.go
package notify

import (
	apperrors "driverpro-notifier/internal/common/errors"
)

// TemplateDescriptor maps a reservation status to an email subject and the
// provider-side template identifier bound to the notification payload.
type TemplateDescriptor struct {
	StatusKey  string
	Subject    string
	TemplateID string
}

// templateTable is fixed at process start and never mutated. Keys are
// composed as "driver_" + status.
var templateTable = map[string]TemplateDescriptor{
	"driver_confirmed": {
		StatusKey:  "driver_confirmed",
		Subject:    "Course confirmée par votre chauffeur",
		TemplateID: "driver-course-confirmed",
	},
	"driver_cancelled": {
		StatusKey:  "driver_cancelled",
		Subject:    "Annulation de votre course",
		TemplateID: "driver-course-cancelled",
	},
}

// ResolveTemplate returns the descriptor registered for the given reservation
// status, or an UNKNOWN_STATUS error when no template is registered for it.
func ResolveTemplate(status string) (TemplateDescriptor, error) {
	tmpl, ok := templateTable["driver_"+status]
	if !ok {
		return TemplateDescriptor{}, apperrors.NewUnknownStatusError(status)
	}
	return tmpl, nil
}
