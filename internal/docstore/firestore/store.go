// Package firestore implements docstore.Store on Cloud Firestore. Watches
// run on Firestore snapshot listeners; the client library reconnects
// dropped streams on its own, so a watch error here is terminal.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	fs "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dukerupert/famdash/internal/docstore"
)

// Config selects the Firebase project and service account.
type Config struct {
	ProjectID       string
	CredentialsFile string
}

// Connect initializes a Firebase app and returns its Firestore client.
// Empty fields fall back to application default credentials.
func Connect(ctx context.Context, cfg Config) (*fs.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var conf *firebase.Config
	if cfg.ProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}

type Store struct {
	client *fs.Client
	logger *slog.Logger
}

func New(client *fs.Client, logger *slog.Logger) *Store {
	return &Store{client: client, logger: logger}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Add(ctx context.Context, collection string, data any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}
	return ref.ID, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, collection, id string, data any) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id, field string, value any) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, []fs.Update{
		{Path: field, Value: value},
	})
	if status.Code(err) == codes.NotFound {
		return docstore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

type document struct {
	id   string
	snap *fs.DocumentSnapshot
}

func (d document) ID() string { return d.id }

func (d document) Exists() bool { return d.snap != nil && d.snap.Exists() }

func (d document) DataTo(v any) error {
	if !d.Exists() {
		return docstore.ErrNotFound
	}
	return d.snap.DataTo(v)
}

type listener struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the listener's context, which unblocks the pending Next call;
// the iterator itself is stopped by the watch goroutine.
func (l *listener) Stop() {
	l.once.Do(func() {
		l.cancel()
		<-l.done
	})
}

// finished reports whether err just means the watch was shut down.
func finished(ctx context.Context, err error) bool {
	if errors.Is(err, iterator.Done) || ctx.Err() != nil {
		return true
	}
	return status.Code(err) == codes.Canceled
}

func (s *Store) WatchQuery(ctx context.Context, q docstore.Query, onNext func([]docstore.Document), onErr func(error)) (docstore.Listener, error) {
	if q.Collection == "" {
		return nil, errors.New("watch query: collection is required")
	}

	query := s.client.Collection(q.Collection).Query
	if q.OrderBy != "" {
		dir := fs.Asc
		if q.Direction == docstore.Desc {
			dir = fs.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}

	ctx, cancel := context.WithCancel(ctx)
	l := &listener{cancel: cancel, done: make(chan struct{})}
	it := query.Snapshots(ctx)

	go func() {
		defer close(l.done)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if !finished(ctx, err) {
					s.report(onErr, q.Collection, "", err)
				}
				return
			}

			snaps, err := snap.Documents.GetAll()
			if err != nil {
				if !finished(ctx, err) {
					s.report(onErr, q.Collection, "", err)
				}
				return
			}

			docs := make([]docstore.Document, 0, len(snaps))
			for _, ds := range snaps {
				docs = append(docs, document{id: ds.Ref.ID, snap: ds})
			}
			onNext(docs)
		}
	}()

	return l, nil
}

func (s *Store) WatchDocument(ctx context.Context, collection, id string, onNext func(docstore.Document), onErr func(error)) (docstore.Listener, error) {
	if collection == "" || id == "" {
		return nil, errors.New("watch document: collection and id are required")
	}

	ctx, cancel := context.WithCancel(ctx)
	l := &listener{cancel: cancel, done: make(chan struct{})}
	it := s.client.Collection(collection).Doc(id).Snapshots(ctx)

	go func() {
		defer close(l.done)
		defer it.Stop()

		for {
			// A missing document arrives as a snapshot whose Exists is false.
			snap, err := it.Next()
			if err != nil {
				if !finished(ctx, err) {
					s.report(onErr, collection, id, err)
				}
				return
			}
			onNext(document{id: id, snap: snap})
		}
	}()

	return l, nil
}

func (s *Store) report(onErr func(error), collection, id string, err error) {
	if onErr != nil {
		onErr(err)
		return
	}
	s.logger.Error("firestore watch failed", "collection", collection, "document", id, "error", err)
}

var _ docstore.Store = (*Store)(nil)
