package sqlitestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dukerupert/famdash/internal/docstore"
)

// watcher is one live query or document watch. signal has capacity one, so
// bursts of writes coalesce into a single refetch.
type watcher struct {
	collection string
	docID      string
	signal     chan struct{}
}

type listener struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (l *listener) Stop() {
	l.once.Do(func() {
		l.cancel()
		<-l.done
	})
}

func (s *Store) WatchQuery(ctx context.Context, q docstore.Query, onNext func([]docstore.Document), onErr func(error)) (docstore.Listener, error) {
	if q.Collection == "" {
		return nil, errors.New("watch query: collection is required")
	}
	if q.OrderBy != "" && !fieldRegexp.MatchString(q.OrderBy) {
		return nil, fmt.Errorf("watch query: invalid order field %q", q.OrderBy)
	}

	fetch := func(ctx context.Context) ([]docstore.Document, error) {
		return s.query(ctx, q)
	}
	return s.watch(ctx, q.Collection, "", fetch, onNext, onErr), nil
}

func (s *Store) WatchDocument(ctx context.Context, collection, id string, onNext func(docstore.Document), onErr func(error)) (docstore.Listener, error) {
	if collection == "" || id == "" {
		return nil, errors.New("watch document: collection and id are required")
	}

	fetch := func(ctx context.Context) ([]docstore.Document, error) {
		doc, err := s.get(ctx, collection, id)
		if err != nil {
			return nil, err
		}
		return []docstore.Document{doc}, nil
	}
	deliver := func(docs []docstore.Document) { onNext(docs[0]) }
	return s.watch(ctx, collection, id, fetch, deliver, onErr), nil
}

func (s *Store) watch(ctx context.Context, collection, docID string, fetch func(context.Context) ([]docstore.Document, error), onNext func([]docstore.Document), onErr func(error)) docstore.Listener {
	w := &watcher{collection: collection, docID: docID, signal: make(chan struct{}, 1)}
	s.register(w)

	ctx, cancel := context.WithCancel(ctx)
	l := &listener{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(l.done)
		defer s.unregister(w)
		s.run(ctx, w, fetch, onNext, onErr)
	}()

	return l
}

func (s *Store) run(ctx context.Context, w *watcher, fetch func(context.Context) ([]docstore.Document, error), onNext func([]docstore.Document), onErr func(error)) {
	var tick <-chan time.Time
	if s.pollInterval > 0 {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var last []byte
	delivered := false

	refresh := func(force bool) {
		docs, err := fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// The watch stays registered; the next write or poll refetches.
			if onErr != nil {
				onErr(err)
			} else {
				s.logger.Warn("watch fetch failed", "collection", w.collection, "document", w.docID, "error", err)
			}
			return
		}
		fp := fingerprint(docs)
		if !force && delivered && bytes.Equal(fp, last) {
			return
		}
		last, delivered = fp, true
		if ctx.Err() != nil {
			return
		}
		onNext(docs)
	}

	refresh(true)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.signal:
			refresh(true)
		case <-tick:
			refresh(false)
		}
	}
}

func (s *Store) register(w *watcher) {
	s.mu.Lock()
	s.watchers[w] = struct{}{}
	s.mu.Unlock()
}

func (s *Store) unregister(w *watcher) {
	s.mu.Lock()
	delete(s.watchers, w)
	s.mu.Unlock()
}

// notify wakes every watcher affected by a write to collection/id.
func (s *Store) notify(collection, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for w := range s.watchers {
		if w.collection != collection {
			continue
		}
		if w.docID != "" && w.docID != id {
			continue
		}
		select {
		case w.signal <- struct{}{}:
		default:
			// A refetch is already pending.
		}
	}
}

// WatcherCount returns the number of live watches.
func (s *Store) WatcherCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}
