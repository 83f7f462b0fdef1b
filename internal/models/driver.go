// internal/models/driver.go
package models

// Driver is read-only reference data fetched on demand per notification.
// It is never cached across invocations.
type Driver struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}
