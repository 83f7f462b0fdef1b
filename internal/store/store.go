// Package store defines the document-store capability consumed by the
// subscription manager: a query-filtered, cancellable feed of change events
// plus point lookups of reference documents.
package store

import (
	"context"

	"driverpro-notifier/internal/models"
)

// ChangeKind classifies a change event.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

// ChangeEvent is one observed mutation of a reservation document. It exists
// only within one processing cycle.
type ChangeEvent struct {
	Kind        ChangeKind
	DocumentID  string
	Reservation models.Reservation
	// Previous holds the pre-image when the store delivers one.
	Previous *models.Reservation
}

// ChangeBatch is an ordered group of change events delivered together.
type ChangeBatch struct {
	Events []ChangeEvent
	// ResumeToken is the opaque stream position after the last event in the
	// batch; nil when the store does not support resumption.
	ResumeToken []byte
}

// Filter restricts a subscription to documents matching field ∈ values.
type Filter struct {
	Field    string
	Operator string // only "in" is supported
	Values   []string
}

// Subscription is a live, cancellable feed of change batches. Close must be
// called exactly once per subscription to release resources; the channels are
// closed afterwards.
type Subscription interface {
	// Changes delivers batches in store order. The channel is closed when the
	// subscription ends, for any reason.
	Changes() <-chan ChangeBatch
	// Err delivers at most one subscription-level error before the feed ends.
	Err() <-chan error
	// Close releases the subscription. Safe to call once; the manager owns
	// idempotency across handles.
	Close(ctx context.Context) error
}

// Store is the document-store capability.
type Store interface {
	// Subscribe opens a filtered subscription to reservation changes,
	// resuming from the given checkpoint token when non-nil.
	Subscribe(ctx context.Context, filter Filter, resumeToken []byte) (Subscription, error)
	// GetDriver fetches a driver document by id. Returns ErrNotFound when the
	// id does not resolve.
	GetDriver(ctx context.Context, id string) (*models.Driver, error)
}
