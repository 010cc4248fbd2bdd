// Package store defines the whole-collection persistence boundary of the
// billing engine. A collection holds every record of one document family
// together with its numbering counter, mirroring the application's
// one-JSON-file-per-family layout.
package store

import (
	"context"
	"encoding/json"
)

// Collection is the unit of persistence for a document family.
type Collection struct {
	Items      []json.RawMessage `json:"items"`
	NextNumber int64             `json:"nextNumber"`
}

// NewCollection returns an empty collection with the counter primed.
func NewCollection() *Collection {
	return &Collection{Items: []json.RawMessage{}, NextNumber: 1}
}

// Store is the injectable persistence provider. Update runs a serialized
// read-modify-write against a single collection; implementations must
// guarantee mutual exclusion per family so counter allocation and balance
// updates cannot race.
type Store interface {
	ReadCollection(ctx context.Context, family string) (*Collection, error)
	WriteCollection(ctx context.Context, family string, col *Collection) error
	Update(ctx context.Context, family string, fn func(col *Collection) error) error
}
