// Package livesync keeps typed local snapshots in step with store watches.
//
// Every delivery replaces the caller's snapshot wholesale: onChange receives
// the complete, ordered list (or the current document), never a diff.
// Watch failures are logged and leave the caller's last snapshot in place.
package livesync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/famdash/internal/docstore"
)

// Subscription owns one store listener.
type Subscription struct {
	listener docstore.Listener
	once     sync.Once
}

// Unsubscribe releases the listener. It is safe to call more than once;
// only the first call has an effect.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.listener != nil {
			s.listener.Stop()
		}
	})
}

type identifiable interface {
	SetID(id string)
}

// Decode reads doc into a T, copying the document id into types that accept
// one.
func Decode[T any](doc docstore.Document) (T, error) {
	var v T
	if err := doc.DataTo(&v); err != nil {
		return v, err
	}
	if idv, ok := any(&v).(identifiable); ok {
		idv.SetID(doc.ID())
	}
	return v, nil
}

// WatchCollection subscribes to q and calls onChange with every snapshot,
// decoded in store order. Documents that fail to decode are logged and
// left out of the snapshot.
func WatchCollection[T any](ctx context.Context, store docstore.Store, q docstore.Query, onChange func([]T), logger *slog.Logger) (*Subscription, error) {
	logger = logger.With("collection", q.Collection)

	onNext := func(docs []docstore.Document) {
		items := make([]T, 0, len(docs))
		for _, doc := range docs {
			v, err := Decode[T](doc)
			if err != nil {
				logger.Warn("skipping undecodable document", "id", doc.ID(), "error", err)
				continue
			}
			items = append(items, v)
		}
		onChange(items)
	}
	onErr := func(err error) {
		logger.Error("collection watch failed", "error", err)
	}

	l, err := store.WatchQuery(ctx, q, onNext, onErr)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", q.Collection, err)
	}
	return &Subscription{listener: l}, nil
}

// WatchDocument subscribes to one document. onChange receives the decoded
// value and whether the document exists; a missing document yields the
// zero T. A document that exists but fails to decode is logged and not
// delivered.
func WatchDocument[T any](ctx context.Context, store docstore.Store, collection, id string, onChange func(T, bool), logger *slog.Logger) (*Subscription, error) {
	logger = logger.With("collection", collection, "document", id)

	onNext := func(doc docstore.Document) {
		if !doc.Exists() {
			var zero T
			onChange(zero, false)
			return
		}
		v, err := Decode[T](doc)
		if err != nil {
			logger.Warn("document decode failed", "error", err)
			return
		}
		onChange(v, true)
	}
	onErr := func(err error) {
		logger.Error("document watch failed", "error", err)
	}

	l, err := store.WatchDocument(ctx, collection, id, onNext, onErr)
	if err != nil {
		return nil, fmt.Errorf("watch %s/%s: %w", collection, id, err)
	}
	return &Subscription{listener: l}, nil
}
