// Package docstore defines the document database contract the dashboard
// cards are built on: server-assigned ids, whole-document writes, and live
// watches that always deliver a complete snapshot.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a write targets a document that does not
// exist, or when reading data from a missing document.
var ErrNotFound = errors.New("document not found")

type Direction int

const (
	Asc Direction = iota
	Desc
)

// Query selects a whole collection ordered by a single field. An empty
// OrderBy leaves ordering to the backend's insertion order.
//
// The SQLite backend orders timestamps by their JSON text. That matches
// time order only for values of a fixed width, such as whole-second UTC
// times; fractional seconds are trimmed of trailing zeros when encoded.
// Date fields are stored at UTC midnight and always qualify.
type Query struct {
	Collection string
	OrderBy    string
	Direction  Direction
}

// Document is one document as observed by a read or watch.
type Document interface {
	ID() string
	Exists() bool
	DataTo(v any) error
}

// Listener is a live watch. Stop is idempotent and must not be called from
// inside the watch's own callbacks.
type Listener interface {
	Stop()
}

// Store is the remote document database.
//
// Watch callbacks for one listener are delivered sequentially, in the order
// the backend observed the changes, on a goroutine owned by the listener.
// onNext always receives the full current snapshot. onErr reports watch
// failures; the listener keeps its last delivered snapshot.
type Store interface {
	Add(ctx context.Context, collection string, data any) (string, error)
	Delete(ctx context.Context, collection, id string) error
	Set(ctx context.Context, collection, id string, data any) error
	Update(ctx context.Context, collection, id, field string, value any) error
	WatchQuery(ctx context.Context, q Query, onNext func([]Document), onErr func(error)) (Listener, error)
	WatchDocument(ctx context.Context, collection, id string, onNext func(Document), onErr func(error)) (Listener, error)
}
