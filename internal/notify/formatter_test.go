package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"driverpro-notifier/internal/models"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "monday afternoon",
			in:   time.Date(2024, time.January, 15, 14, 30, 0, 0, time.UTC),
			want: "lundi 15 janvier 2024 à 14:30",
		},
		{
			name: "single digit hour and minute are zero padded",
			in:   time.Date(2024, time.August, 3, 9, 5, 0, 0, time.UTC),
			want: "samedi 3 août 2024 à 09:05",
		},
		{
			name: "december sunday",
			in:   time.Date(2023, time.December, 31, 23, 59, 0, 0, time.UTC),
			want: "dimanche 31 décembre 2023 à 23:59",
		},
		{
			name: "zero time falls back to placeholder",
			in:   time.Time{},
			want: NotSpecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.in))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"round number", 45, "45.00"},
		{"two decimals kept", 149.99, "149.99"},
		{"extra precision rounded", 10.005, "10.01"},
		{"absent price defaults to zero", 0, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(tt.in))
		})
	}
}

func TestBuildPayload_Defaults(t *testing.T) {
	payload := BuildPayload(models.Reservation{ID: "r1", Status: models.StatusConfirmed}, models.Driver{ID: "d1"})

	assert.Equal(t, "r1", payload.ReservationID)
	assert.Equal(t, "Client", payload.ClientName)
	assert.Equal(t, "Votre chauffeur", payload.DriverName)
	assert.Equal(t, NotSpecified, payload.DriverPhone)
	assert.Equal(t, NotSpecified, payload.Date)
	assert.Equal(t, NotSpecified, payload.Origin)
	assert.Equal(t, NotSpecified, payload.Destination)
	assert.Equal(t, "0.00", payload.Price)
}

func TestBuildPayload_Populated(t *testing.T) {
	res := models.Reservation{
		ID:          "abcdef123456",
		Status:      models.StatusConfirmed,
		ClientName:  "Marie Dupont",
		ClientEmail: "marie@example.com",
		DriverID:    "d1",
		Origin:      "Gare de Lyon",
		Destination: "Orly",
		Date:        time.Date(2024, time.March, 8, 18, 0, 0, 0, time.UTC),
		Price:       62.5,
	}
	drv := models.Driver{ID: "d1", Name: "Jo", Phone: "555"}

	payload := BuildPayload(res, drv)

	assert.Equal(t, "abcdef12", payload.ReservationID, "id is truncated to 8 chars")
	assert.Equal(t, "Marie Dupont", payload.ClientName)
	assert.Equal(t, "Jo", payload.DriverName)
	assert.Equal(t, "555", payload.DriverPhone)
	assert.Equal(t, "vendredi 8 mars 2024 à 18:00", payload.Date)
	assert.Equal(t, "Gare de Lyon", payload.Origin)
	assert.Equal(t, "Orly", payload.Destination)
	assert.Equal(t, "62.50", payload.Price)
}

func TestPayload_TemplateData(t *testing.T) {
	payload := Payload{
		ReservationID: "abcdef12",
		ClientName:    "Marie",
		DriverName:    "Jo",
		DriverPhone:   "555",
		Date:          "vendredi 8 mars 2024 à 18:00",
		Origin:        "A",
		Destination:   "B",
		Price:         "62.50",
	}

	data := payload.TemplateData()

	assert.Equal(t, "abcdef12", data["reservationId"])
	assert.Equal(t, "Marie", data["clientName"])
	assert.Equal(t, "Jo", data["driverName"])
	assert.Equal(t, "555", data["driverPhone"])
	assert.Equal(t, "62.50", data["price"])
	assert.Len(t, data, 8)
}
