// Package sqlitestore implements docstore.Store on a single SQLite table of
// JSON documents. Writes made through a Store wake that Store's watchers;
// an optional poll interval also picks up writes from other processes that
// share the database file.
package sqlitestore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/famdash/internal/docstore"
)

var fieldRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Store struct {
	db           *sql.DB
	pollInterval time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	watchers map[*watcher]struct{}
}

// New wraps a database opened with database.Open. A zero pollInterval
// disables polling; only writes through this Store are then observed.
func New(db *sql.DB, pollInterval time.Duration, logger *slog.Logger) *Store {
	return &Store{
		db:           db,
		pollInterval: pollInterval,
		logger:       logger,
		watchers:     make(map[*watcher]struct{}),
	}
}

// --- Writes ---

func (s *Store) Add(ctx context.Context, collection string, data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)`,
		collection, id, string(raw),
	)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}

	s.notify(collection, id)
	return id, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	s.notify(collection, id)
	return nil
}

func (s *Store) Set(ctx context.Context, collection, id string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE
		 SET data = excluded.data, updated_at = strftime('%Y-%m-%d %H:%M:%f', 'now')`,
		collection, id, string(raw),
	)
	if err != nil {
		return fmt.Errorf("set document: %w", err)
	}

	s.notify(collection, id)
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id, field string, value any) error {
	if !fieldRegexp.MatchString(field) {
		return fmt.Errorf("update document: invalid field %q", field)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode field: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE documents
		 SET data = json_set(data, ?, json(?)), updated_at = strftime('%Y-%m-%d %H:%M:%f', 'now')
		 WHERE collection = ? AND id = ?`,
		"$."+field, string(raw), collection, id,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return docstore.ErrNotFound
	}

	s.notify(collection, id)
	return nil
}

// --- Reads ---

type document struct {
	id     string
	data   []byte
	exists bool
}

func (d document) ID() string   { return d.id }
func (d document) Exists() bool { return d.exists }

func (d document) DataTo(v any) error {
	if !d.exists {
		return docstore.ErrNotFound
	}
	return json.Unmarshal(d.data, v)
}

func (s *Store) query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	order := "created_at ASC, id ASC"
	args := []any{q.Collection}
	if q.OrderBy != "" {
		if !fieldRegexp.MatchString(q.OrderBy) {
			return nil, fmt.Errorf("query documents: invalid order field %q", q.OrderBy)
		}
		dir := "ASC"
		if q.Direction == docstore.Desc {
			dir = "DESC"
		}
		// Strings compare as text, so timestamps must share a width.
		order = "json_extract(data, ?) " + dir + ", " + order
		args = append(args, "$."+q.OrderBy)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? ORDER BY `+order,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, document{id: id, data: []byte(data), exists: true})
	}
	return docs, rows.Err()
}

func (s *Store) get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return document{id: id}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return document{id: id, data: []byte(data), exists: true}, nil
}

// fingerprint identifies a snapshot's content so polls can skip unchanged
// deliveries.
func fingerprint(docs []docstore.Document) []byte {
	var buf bytes.Buffer
	for _, d := range docs {
		doc := d.(document)
		buf.WriteString(doc.id)
		buf.WriteByte(0)
		if doc.exists {
			buf.Write(doc.data)
		}
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

var _ docstore.Store = (*Store)(nil)
