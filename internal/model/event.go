package model

import "time"

// EventsCollection is the store collection holding calendar events.
const EventsCollection = "events"

type Event struct {
	ID          string    `firestore:"-" json:"id,omitempty"`
	Title       string    `firestore:"title" json:"title"`
	Date        time.Time `firestore:"date" json:"date"`
	Time        *string   `firestore:"time" json:"time"`
	Description string    `firestore:"description" json:"description"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
}

func (e *Event) SetID(id string) { e.ID = id }
