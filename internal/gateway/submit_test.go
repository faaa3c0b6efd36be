package gateway

import (
	"context"
	"testing"

	"github.com/dukerupert/famdash/internal/model"
)

func TestModalLifecycle(t *testing.T) {
	m := NewModal(DefaultTaskForm())

	if st := m.State(); st.Open {
		t.Fatal("new modal should be closed")
	}

	prefill := DefaultTaskForm()
	prefill.AssignedTo = "Shea"
	m.Open(prefill)
	st := m.State()
	if !st.Open || st.Fields.AssignedTo != "Shea" {
		t.Errorf("state = %+v, want open prefilled for Shea", st)
	}

	m.Close()
	st = m.State()
	if st.Open {
		t.Error("modal should be closed")
	}
	if st.Fields != DefaultTaskForm() {
		t.Errorf("fields after close = %+v, want defaults", st.Fields)
	}
}

func TestSubmitSuccessClearsForm(t *testing.T) {
	g, store := setupTestGateway(t)
	m := NewModal(EventForm{})
	m.Open(EventForm{Title: "Picnic", Date: "2024-06-10"})

	err := Submit(context.Background(), m, func(ctx context.Context, f EventForm) error {
		_, err := g.CreateEvent(ctx, f)
		return err
	}, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if st := m.State(); st.Open || st.Fields.Title != "" {
		t.Errorf("state after success = %+v, want closed and cleared", st)
	}
	if store.Count(model.EventsCollection) != 1 {
		t.Error("event should be stored")
	}
}

func TestSubmitInvalidKeepsForm(t *testing.T) {
	g, store := setupTestGateway(t)
	m := NewModal(EventForm{})
	m.Open(EventForm{Title: "Picnic"})

	err := Submit(context.Background(), m, func(ctx context.Context, f EventForm) error {
		_, err := g.CreateEvent(ctx, f)
		return err
	}, nil)
	if !IsInvalid(err) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if st := m.State(); !st.Open || st.Fields.Title != "Picnic" {
		t.Errorf("state = %+v, want open with input kept", st)
	}
	if store.Writes() != 0 {
		t.Error("invalid form should not write")
	}
}

func TestSubmitWriteFailureKeepsForm(t *testing.T) {
	g, store := setupTestGateway(t)
	store.FailWrites(errBoom)
	m := NewModal(EventForm{})
	m.Open(EventForm{Title: "Picnic", Date: "2024-06-10"})

	err := Submit(context.Background(), m, func(ctx context.Context, f EventForm) error {
		_, err := g.CreateEvent(ctx, f)
		return err
	}, nil)
	if err == nil {
		t.Fatal("expected write error")
	}
	if st := m.State(); !st.Open || st.Fields.Date != "2024-06-10" {
		t.Errorf("state = %+v, want open and populated", st)
	}
}

func TestSubmitAfterShutdownLeavesForm(t *testing.T) {
	m := NewModal(EventForm{})
	m.Open(EventForm{Title: "Picnic", Date: "2024-06-10"})

	err := Submit(context.Background(), m, func(context.Context, EventForm) error { return nil }, func() bool { return false })
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !m.State().Open {
		t.Error("modal should be untouched after owner shut down")
	}
}
