package model

import "testing"

func TestNewHousehold(t *testing.T) {
	h := NewHousehold(" Mira", "Shea", "", "Mira", "Daddy ")

	got := h.Members()
	want := []string{"Mira", "Shea", "Daddy"}
	if len(got) != len(want) {
		t.Fatalf("members = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("member %d = %q, want %q", i, got[i], want[i])
		}
	}
	if !h.Has("Shea") || h.Has("Mommy") {
		t.Error("Has reports wrong membership")
	}
	if h.Len() != 3 {
		t.Errorf("len = %d, want 3", h.Len())
	}
}

func TestHouseholdMembersIsCopy(t *testing.T) {
	h := NewHousehold(DefaultMembers...)
	m := h.Members()
	m[0] = "Changed"
	if h.Members()[0] != "Mira" {
		t.Error("Members should return a copy")
	}
}

func TestTaskPoints(t *testing.T) {
	if got := (Task{}).Points(); got != 0 {
		t.Errorf("nil difficulty points = %d, want 0", got)
	}
	d := 4
	if got := (Task{Difficulty: &d}).Points(); got != 4 {
		t.Errorf("points = %d, want 4", got)
	}
}

func TestDefaultAwardsSorted(t *testing.T) {
	awards := DefaultAwards()
	if len(awards) != 6 {
		t.Fatalf("len = %d, want 6", len(awards))
	}
	for i := 1; i < len(awards); i++ {
		if awards[i-1].Stars >= awards[i].Stars {
			t.Errorf("awards out of order at %d: %+v", i, awards)
		}
	}
}
