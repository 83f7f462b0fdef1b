package store

import "errors"

// ErrNotFound is returned by point lookups when no document matches the id.
var ErrNotFound = errors.New("document not found")
