// internal/models/reservation.go
package models

import "time"

// Reservation is a trip booking record tracked by status. It is written by an
// upstream system; this service only reads it through change events.
type Reservation struct {
	ID          string    `bson:"_id" json:"id"`
	Status      string    `bson:"status" json:"status"`
	ClientName  string    `bson:"clientName,omitempty" json:"clientName,omitempty"`
	ClientEmail string    `bson:"clientEmail,omitempty" json:"clientEmail,omitempty"`
	DriverID    string    `bson:"driverId,omitempty" json:"driverId,omitempty"`
	Origin      string    `bson:"origin,omitempty" json:"origin,omitempty"`
	Destination string    `bson:"destination,omitempty" json:"destination,omitempty"`
	Date        time.Time `bson:"date,omitempty" json:"date,omitempty"`
	Price       float64   `bson:"price,omitempty" json:"price,omitempty"`
}

// Reservation statuses. Only the terminal ones carry notification templates;
// earlier-lifecycle statuses are filtered out at the subscription level.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// WatchedStatuses are the statuses the change subscription observes at all.
var WatchedStatuses = []string{StatusConfirmed, StatusCancelled}
