// Package docstoretest provides an in-memory docstore.Store for tests.
// Watch callbacks run synchronously on the goroutine that caused the
// change, which keeps card tests deterministic.
package docstoretest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dukerupert/famdash/internal/docstore"
)

type Fake struct {
	mu        sync.Mutex
	docs      map[string]map[string][]byte
	order     map[string][]string
	nextID    int
	listeners map[*listener]struct{}
	writeErr  error
	writes    int

	watchFailAt int
	watchErr    error
}

func New() *Fake {
	return &Fake{
		docs:      make(map[string]map[string][]byte),
		order:     make(map[string][]string),
		listeners: make(map[*listener]struct{}),
	}
}

// FailWrites makes every subsequent write return err. Pass nil to heal.
func (f *Fake) FailWrites(err error) {
	f.mu.Lock()
	f.writeErr = err
	f.mu.Unlock()
}

// FailWatch makes the nth watch opened from now on (counting from 1) fail
// to start with err. Later watches start normally.
func (f *Fake) FailWatch(n int, err error) {
	f.mu.Lock()
	f.watchFailAt = n
	f.watchErr = err
	f.mu.Unlock()
}

func (f *Fake) watchFailure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watchFailAt == 0 {
		return nil
	}
	f.watchFailAt--
	if f.watchFailAt > 0 {
		return nil
	}
	return f.watchErr
}

// Writes counts successful writes.
func (f *Fake) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// Listeners counts live watches.
func (f *Fake) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// BreakWatches reports err to every live watch.
func (f *Fake) BreakWatches(err error) {
	f.mu.Lock()
	var ls []*listener
	for l := range f.listeners {
		ls = append(ls, l)
	}
	f.mu.Unlock()

	for _, l := range ls {
		if l.onErr != nil {
			l.onErr(err)
		}
	}
}

// Get decodes the stored document into v and reports whether it exists.
func (f *Fake) Get(collection, id string, v any) (bool, error) {
	f.mu.Lock()
	raw, ok := f.docs[collection][id]
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

// Count returns the number of documents in collection.
func (f *Fake) Count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs[collection])
}

func (f *Fake) Add(ctx context.Context, collection string, data any) (string, error) {
	f.mu.Lock()
	f.nextID++
	id := fmt.Sprintf("doc-%d", f.nextID)
	f.mu.Unlock()

	if err := f.put(collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (f *Fake) Set(ctx context.Context, collection, id string, data any) error {
	return f.put(collection, id, data)
}

func (f *Fake) put(collection, id string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	f.mu.Lock()
	if f.writeErr != nil {
		err := f.writeErr
		f.mu.Unlock()
		return err
	}
	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string][]byte)
	}
	if _, exists := f.docs[collection][id]; !exists {
		f.order[collection] = append(f.order[collection], id)
	}
	f.docs[collection][id] = raw
	f.writes++
	f.mu.Unlock()

	f.notify(collection, id)
	return nil
}

func (f *Fake) Delete(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	if f.writeErr != nil {
		err := f.writeErr
		f.mu.Unlock()
		return err
	}
	delete(f.docs[collection], id)
	ids := f.order[collection]
	for i, existing := range ids {
		if existing == id {
			f.order[collection] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	f.writes++
	f.mu.Unlock()

	f.notify(collection, id)
	return nil
}

func (f *Fake) Update(ctx context.Context, collection, id, field string, value any) error {
	f.mu.Lock()
	if f.writeErr != nil {
		err := f.writeErr
		f.mu.Unlock()
		return err
	}
	raw, ok := f.docs[collection][id]
	if !ok {
		f.mu.Unlock()
		return docstore.ErrNotFound
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		f.mu.Unlock()
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	fields[field] = encoded
	merged, err := json.Marshal(fields)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.docs[collection][id] = merged
	f.writes++
	f.mu.Unlock()

	f.notify(collection, id)
	return nil
}

type document struct {
	id  string
	raw []byte
}

func (d document) ID() string   { return d.id }
func (d document) Exists() bool { return d.raw != nil }

func (d document) DataTo(v any) error {
	if d.raw == nil {
		return docstore.ErrNotFound
	}
	return json.Unmarshal(d.raw, v)
}

type listener struct {
	f          *Fake
	collection string
	docID      string
	query      docstore.Query
	onQuery    func([]docstore.Document)
	onDoc      func(docstore.Document)
	onErr      func(error)
	once       sync.Once
}

func (l *listener) Stop() {
	l.once.Do(func() {
		l.f.mu.Lock()
		delete(l.f.listeners, l)
		l.f.mu.Unlock()
	})
}

func (f *Fake) WatchQuery(ctx context.Context, q docstore.Query, onNext func([]docstore.Document), onErr func(error)) (docstore.Listener, error) {
	if q.Collection == "" {
		return nil, fmt.Errorf("watch query: collection is required")
	}
	if err := f.watchFailure(); err != nil {
		return nil, err
	}
	l := &listener{f: f, collection: q.Collection, query: q, onQuery: onNext, onErr: onErr}
	f.mu.Lock()
	f.listeners[l] = struct{}{}
	f.mu.Unlock()

	l.deliver()
	return l, nil
}

func (f *Fake) WatchDocument(ctx context.Context, collection, id string, onNext func(docstore.Document), onErr func(error)) (docstore.Listener, error) {
	if collection == "" || id == "" {
		return nil, fmt.Errorf("watch document: collection and id are required")
	}
	if err := f.watchFailure(); err != nil {
		return nil, err
	}
	l := &listener{f: f, collection: collection, docID: id, onDoc: onNext, onErr: onErr}
	f.mu.Lock()
	f.listeners[l] = struct{}{}
	f.mu.Unlock()

	l.deliver()
	return l, nil
}

func (f *Fake) notify(collection, id string) {
	f.mu.Lock()
	var ls []*listener
	for l := range f.listeners {
		if l.collection == collection && (l.docID == "" || l.docID == id) {
			ls = append(ls, l)
		}
	}
	f.mu.Unlock()

	for _, l := range ls {
		l.deliver()
	}
}

func (l *listener) deliver() {
	f := l.f
	f.mu.Lock()
	if _, live := f.listeners[l]; !live {
		f.mu.Unlock()
		return
	}
	if l.onDoc != nil {
		doc := document{id: l.docID, raw: f.docs[l.collection][l.docID]}
		f.mu.Unlock()
		l.onDoc(doc)
		return
	}

	docs := make([]docstore.Document, 0, len(f.order[l.collection]))
	for _, id := range f.order[l.collection] {
		docs = append(docs, document{id: id, raw: f.docs[l.collection][id]})
	}
	f.mu.Unlock()

	if l.query.OrderBy != "" {
		sortDocs(docs, l.query.OrderBy, l.query.Direction == docstore.Desc)
	}
	l.onQuery(docs)
}

// sortDocs orders by a top-level field: missing and null first, then
// numbers, then strings (timestamps sort as RFC 3339 text).
func sortDocs(docs []docstore.Document, field string, desc bool) {
	key := func(d docstore.Document) any {
		var m map[string]any
		_ = json.Unmarshal(d.(document).raw, &m)
		return m[field]
	}
	rank := func(v any) int {
		switch v.(type) {
		case nil:
			return 0
		case bool:
			return 1
		case float64:
			return 2
		case string:
			return 3
		default:
			return 4
		}
	}
	less := func(a, b any) bool {
		ra, rb := rank(a), rank(b)
		if ra != rb {
			return ra < rb
		}
		switch av := a.(type) {
		case float64:
			return av < b.(float64)
		case string:
			return strings.Compare(av, b.(string)) < 0
		case bool:
			return !av && b.(bool)
		}
		return false
	}
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := key(docs[i]), key(docs[j])
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
}

var _ docstore.Store = (*Fake)(nil)
