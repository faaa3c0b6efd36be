package sqlitestore

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/famdash/internal/database"
	"github.com/dukerupert/famdash/internal/docstore"
)

type item struct {
	Name string     `json:"name"`
	Rank *int       `json:"rank"`
	When *time.Time `json:"when"`
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, 0, slog.Default())
}

func intPtr(n int) *int { return &n }

func names(t *testing.T, docs []docstore.Document) []string {
	t.Helper()
	var out []string
	for _, d := range docs {
		var it item
		if err := d.DataTo(&it); err != nil {
			t.Fatalf("decode %s: %v", d.ID(), err)
		}
		out = append(out, it.Name)
	}
	return out
}

func waitSnapshot(t *testing.T, ch <-chan []docstore.Document, want int) []docstore.Document {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case docs := <-ch:
			if len(docs) == want {
				return docs
			}
		case <-deadline:
			t.Fatalf("timeout waiting for snapshot of %d documents", want)
			return nil
		}
	}
}

func TestAddAndQueryOrdered(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, it := range []item{
		{Name: "c", Rank: intPtr(3)},
		{Name: "a", Rank: intPtr(1)},
		{Name: "none"},
		{Name: "b", Rank: intPtr(2)},
	} {
		if _, err := s.Add(ctx, "things", it); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	docs, err := s.query(ctx, docstore.Query{Collection: "things", OrderBy: "rank"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	got := names(t, docs)
	want := []string{"none", "a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %q, want %q", i, got[i], want[i])
		}
	}

	docs, err = s.query(ctx, docstore.Query{Collection: "things", OrderBy: "rank", Direction: docstore.Desc})
	if err != nil {
		t.Fatalf("query desc: %v", err)
	}
	if got := names(t, docs); got[0] != "c" {
		t.Errorf("desc first = %q, want c", got[0])
	}
}

func TestQueryOrdersMidnightDates(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	day := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	for _, it := range []item{
		{Name: "spring", When: day(2025, time.March, 1)},
		{Name: "winter", When: day(2024, time.December, 31)},
		{Name: "summer", When: day(2025, time.July, 4)},
		{Name: "fall", When: day(2024, time.October, 9)},
	} {
		if _, err := s.Add(ctx, "things", it); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	docs, err := s.query(ctx, docstore.Query{Collection: "things", OrderBy: "when"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	got := names(t, docs)
	want := []string{"fall", "winter", "spring", "summer"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id1, err := s.Add(ctx, "things", item{Name: "one"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	id2, err := s.Add(ctx, "things", item{Name: "two"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id1 == "" || id1 == id2 {
		t.Errorf("ids should be unique and non-empty, got %q and %q", id1, id2)
	}
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, "things", item{Name: "gone"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Delete(ctx, "things", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	doc, err := s.get(ctx, "things", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Exists() {
		t.Error("document should not exist after delete")
	}
	var it item
	if err := doc.DataTo(&it); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("DataTo on missing doc = %v, want ErrNotFound", err)
	}
}

func TestUpdateField(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "lists", "main", map[string]any{"title": "Main", "items": []string{"a"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Update(ctx, "lists", "main", "items", []string{"a", "b"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	doc, err := s.get(ctx, "lists", "main")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var got struct {
		Title string   `json:"title"`
		Items []string `json:"items"`
	}
	if err := doc.DataTo(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Title != "Main" {
		t.Errorf("title = %q, want Main (other fields must survive)", got.Title)
	}
	if len(got.Items) != 2 || got.Items[1] != "b" {
		t.Errorf("items = %v, want [a b]", got.Items)
	}
}

func TestUpdateMissingDocument(t *testing.T) {
	s := setupTestStore(t)

	err := s.Update(context.Background(), "lists", "nope", "items", []string{})
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("update missing = %v, want ErrNotFound", err)
	}
}

func TestUpdateRejectsFieldPath(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Update(context.Background(), "lists", "main", "a.b", 1); err == nil {
		t.Error("expected error for dotted field path")
	}
}

func TestWatchQueryDeliversFullSnapshots(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ch := make(chan []docstore.Document, 16)
	l, err := s.WatchQuery(ctx, docstore.Query{Collection: "things", OrderBy: "rank"}, func(docs []docstore.Document) {
		ch <- docs
	}, nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer l.Stop()

	waitSnapshot(t, ch, 0)

	if _, err := s.Add(ctx, "things", item{Name: "b", Rank: intPtr(2)}); err != nil {
		t.Fatalf("add: %v", err)
	}
	waitSnapshot(t, ch, 1)

	id, err := s.Add(ctx, "things", item{Name: "a", Rank: intPtr(1)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	docs := waitSnapshot(t, ch, 2)
	if got := names(t, docs); got[0] != "a" || got[1] != "b" {
		t.Errorf("snapshot order = %v, want [a b]", got)
	}

	if err := s.Delete(ctx, "things", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	docs = waitSnapshot(t, ch, 1)
	if got := names(t, docs); got[0] != "b" {
		t.Errorf("snapshot after delete = %v, want [b]", got)
	}
}

func TestWatchQueryIgnoresOtherCollections(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ch := make(chan []docstore.Document, 16)
	l, err := s.WatchQuery(ctx, docstore.Query{Collection: "things"}, func(docs []docstore.Document) {
		ch <- docs
	}, nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer l.Stop()
	waitSnapshot(t, ch, 0)

	if _, err := s.Add(ctx, "other", item{Name: "x"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	select {
	case docs := <-ch:
		t.Errorf("unexpected delivery of %d docs", len(docs))
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchDocumentMissingThenCreated(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ch := make(chan docstore.Document, 16)
	l, err := s.WatchDocument(ctx, "lists", "main", func(d docstore.Document) {
		ch <- d
	}, nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer l.Stop()

	select {
	case d := <-ch:
		if d.Exists() {
			t.Fatal("document should not exist yet")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for initial delivery")
	}

	if err := s.Set(ctx, "lists", "main", map[string]string{"title": "Main"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	select {
	case d := <-ch:
		if !d.Exists() {
			t.Fatal("document should exist after set")
		}
		if d.ID() != "main" {
			t.Errorf("id = %q, want main", d.ID())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change delivery")
	}
}

func TestListenerStopIsIdempotent(t *testing.T) {
	s := setupTestStore(t)

	l, err := s.WatchQuery(context.Background(), docstore.Query{Collection: "things"}, func([]docstore.Document) {}, nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if got := s.WatcherCount(); got != 1 {
		t.Fatalf("watchers = %d, want 1", got)
	}

	l.Stop()
	l.Stop()

	if got := s.WatcherCount(); got != 0 {
		t.Errorf("watchers after stop = %d, want 0", got)
	}
}

func TestPollPicksUpExternalWrites(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	watching := New(db, 20*time.Millisecond, slog.Default())
	writer := New(db, 0, slog.Default())

	ch := make(chan []docstore.Document, 16)
	l, err := watching.WatchQuery(context.Background(), docstore.Query{Collection: "things"}, func(docs []docstore.Document) {
		ch <- docs
	}, nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer l.Stop()
	waitSnapshot(t, ch, 0)

	if _, err := writer.Add(context.Background(), "things", item{Name: "external"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	waitSnapshot(t, ch, 1)
}

func TestWatchRejectsBadArguments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.WatchQuery(ctx, docstore.Query{}, func([]docstore.Document) {}, nil); err == nil {
		t.Error("expected error for empty collection")
	}
	if _, err := s.WatchQuery(ctx, docstore.Query{Collection: "x", OrderBy: "bad field"}, func([]docstore.Document) {}, nil); err == nil {
		t.Error("expected error for invalid order field")
	}
	if _, err := s.WatchDocument(ctx, "x", "", func(docstore.Document) {}, nil); err == nil {
		t.Error("expected error for empty document id")
	}
}
