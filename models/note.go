package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteType string

const (
	NoteTypeNote NoteType = "note"
	NoteTypeTask NoteType = "task"
)

func (t NoteType) Valid() bool {
	return t == NoteTypeNote || t == NoteTypeTask
}

// Note is either a plain note or a task, depending on Type. Completed and
// Deadline only carry meaning for tasks.
type Note struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	Content   string     `gorm:"not null" json:"content"`
	Type      NoteType   `gorm:"type:varchar(16);not null;default:'note'" json:"type"`
	Completed bool       `gorm:"not null;default:false" json:"completed"`
	Deadline  *time.Time `json:"deadline"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_notes_user_updated,priority:1" json:"userId"`
	CreatedAt time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"not null;index:idx_notes_user_updated,priority:2" json:"updatedAt"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (n *Note) IsTask() bool {
	return n.Type == NoteTypeTask
}

func (n *Note) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
