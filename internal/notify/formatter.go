// internal/notify/formatter.go
package notify

import (
	"fmt"
	"time"

	"driverpro-notifier/internal/models"
)

// NotSpecified is the literal substituted for absent optional trip fields.
const NotSpecified = "Non spécifié"

const defaultClientName = "Client"
const defaultDriverName = "Votre chauffeur"

// reservationIDLength is how many characters of the id appear in the email.
const reservationIDLength = 8

// Go has no locale-aware date rendering, so the fr-FR names live here.
var frenchWeekdays = [...]string{
	"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi",
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// Payload is the template-ready view of one reservation, assembled per event.
type Payload struct {
	ReservationID string
	ClientName    string
	DriverName    string
	DriverPhone   string
	Date          string
	Origin        string
	Destination   string
	Price         string
}

// TemplateData returns the payload as the template's variable set.
func (p Payload) TemplateData() map[string]interface{} {
	return map[string]interface{}{
		"reservationId": p.ReservationID,
		"clientName":    p.ClientName,
		"driverName":    p.DriverName,
		"driverPhone":   p.DriverPhone,
		"date":          p.Date,
		"origin":        p.Origin,
		"destination":   p.Destination,
		"price":         p.Price,
	}
}

// FormatDate renders t the way fr-FR long form does: weekday, day, full month
// name, year, then "à HH:MM". A zero time renders as the placeholder.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return NotSpecified
	}
	return fmt.Sprintf("%s %d %s %d à %02d:%02d",
		frenchWeekdays[t.Weekday()],
		t.Day(),
		frenchMonths[t.Month()-1],
		t.Year(),
		t.Hour(),
		t.Minute(),
	)
}

// FormatPrice renders a price with exactly two decimal digits.
func FormatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}

// BuildPayload maps raw reservation and driver fields into a template-ready
// payload. Pure and total: malformed optional input only triggers defaulting,
// never an error. Required identifiers are validated upstream by the handler.
func BuildPayload(res models.Reservation, drv models.Driver) Payload {
	return Payload{
		ReservationID: truncateID(res.ID),
		ClientName:    orDefault(res.ClientName, defaultClientName),
		DriverName:    orDefault(drv.Name, defaultDriverName),
		DriverPhone:   orDefault(drv.Phone, NotSpecified),
		Date:          FormatDate(res.Date),
		Origin:        orDefault(res.Origin, NotSpecified),
		Destination:   orDefault(res.Destination, NotSpecified),
		Price:         FormatPrice(res.Price),
	}
}

func truncateID(id string) string {
	if len(id) > reservationIDLength {
		return id[:reservationIDLength]
	}
	return id
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
