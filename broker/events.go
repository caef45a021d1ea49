package broker

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tasknotes/backend/models"

	"github.com/google/uuid"
)

var ErrBrokerClosed = errors.New("broker closed")

type EventType string

const (
	// Event types use the <resource>.<action> format.
	NoteCreated EventType = "note.created"
	NoteUpdated EventType = "note.updated"
	NoteDeleted EventType = "note.deleted"
)

// Event is the envelope published for every note lifecycle change.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	Entity    string          `json:"entity"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NoteSubject is the subject carrying one owner's note events.
func NoteSubject(ownerID uuid.UUID) string {
	return "notes." + ownerID.String()
}

// NewNoteEvent wraps a note in an event. Deletions only carry the note id.
func NewNoteEvent(eventType EventType, note models.Note) (Event, error) {
	var payload []byte
	var err error
	if eventType == NoteDeleted {
		payload, err = json.Marshal(map[string]string{"id": note.ID.String()})
	} else {
		payload, err = note.ToJSON()
	}
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		Entity:    "note",
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}, nil
}

// PublishNoteEvent publishes a note event on the owner's subject.
func PublishNoteEvent(p Publisher, eventType EventType, note models.Note) error {
	event, err := NewNoteEvent(eventType, note)
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.Publish(NoteSubject(note.UserID), data)
}
