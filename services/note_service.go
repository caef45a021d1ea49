package services

import (
	"time"

	"tasknotes/backend/broker"
	"tasknotes/backend/database"
	"tasknotes/backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NoteServiceInterface interface {
	ListNotes(db *database.Database, ownerID uuid.UUID, typeFilter string) ([]models.Note, error)
	GetNoteById(db *database.Database, ownerID uuid.UUID, id string) (models.Note, error)
	CreateNote(db *database.Database, ownerID uuid.UUID, input CreateNoteInput) (models.Note, error)
	UpdateNote(db *database.Database, ownerID uuid.UUID, id string, patch NotePatch) (models.Note, error)
	DeleteNote(db *database.Database, ownerID uuid.UUID, id string) error
}

// NoteService owns every read and write of notes. All queries are scoped by
// the owner, so a note of another user behaves exactly like a missing one.
type NoteService struct {
	publisher broker.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewNoteService(publisher broker.Publisher, log *zap.Logger) *NoteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &NoteService{
		publisher: publisher,
		log:       log,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

func (s *NoteService) ListNotes(db *database.Database, ownerID uuid.UUID, typeFilter string) ([]models.Note, error) {
	query := db.DB.Where("user_id = ?", ownerID)
	if t := models.NoteType(typeFilter); t.Valid() {
		query = query.Where("type = ?", t)
	}

	notes := []models.Note{}
	if err := query.Order("updated_at DESC").Find(&notes).Error; err != nil {
		return nil, translateError(err, ErrNoteNotFound, "list notes")
	}
	return notes, nil
}

func (s *NoteService) GetNoteById(db *database.Database, ownerID uuid.UUID, id string) (models.Note, error) {
	noteID, err := uuid.Parse(id)
	if err != nil {
		return models.Note{}, ErrNoteNotFound
	}

	var note models.Note
	if err := db.DB.First(&note, "id = ? AND user_id = ?", noteID, ownerID).Error; err != nil {
		return models.Note{}, translateError(err, ErrNoteNotFound, "get note")
	}
	return note, nil
}

func (s *NoteService) CreateNote(db *database.Database, ownerID uuid.UUID, input CreateNoteInput) (models.Note, error) {
	if err := input.validate(); err != nil {
		return models.Note{}, err
	}

	noteType := models.NoteTypeNote
	if input.Type != "" {
		noteType = models.NoteType(input.Type)
	}

	var deadline *time.Time
	if input.Deadline != nil {
		d, err := parseDeadline(*input.Deadline)
		if err != nil {
			return models.Note{}, err
		}
		deadline = &d
	}

	now := s.now()
	note := models.Note{
		ID:        uuid.New(),
		Title:     input.Title,
		Content:   *input.Content,
		Type:      noteType,
		Completed: false,
		Deadline:  deadline,
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.DB.Create(&note).Error; err != nil {
		return models.Note{}, translateError(err, ErrNoteNotFound, "create note")
	}

	s.publish(broker.NoteCreated, note)
	return note, nil
}

// UpdateNote applies the fields present in patch. updated_at always moves
// forward, even when the patch is empty.
func (s *NoteService) UpdateNote(db *database.Database, ownerID uuid.UUID, id string, patch NotePatch) (models.Note, error) {
	if err := patch.validate(); err != nil {
		return models.Note{}, err
	}

	noteID, err := uuid.Parse(id)
	if err != nil {
		return models.Note{}, ErrNoteNotFound
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Note{}, translateError(tx.Error, ErrNoteNotFound, "begin update")
	}

	var note models.Note
	if err := tx.First(&note, "id = ? AND user_id = ?", noteID, ownerID).Error; err != nil {
		tx.Rollback()
		return models.Note{}, translateError(err, ErrNoteNotFound, "get note")
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		note.Title = *patch.Title
		updates["title"] = note.Title
	}
	if patch.Content != nil {
		note.Content = *patch.Content
		updates["content"] = note.Content
	}
	if patch.Completed != nil {
		note.Completed = *patch.Completed
		updates["completed"] = note.Completed
	}
	if patch.Deadline.Set {
		if patch.Deadline.Valid {
			deadline := patch.Deadline.Value
			note.Deadline = &deadline
			updates["deadline"] = deadline
		} else {
			note.Deadline = nil
			updates["deadline"] = nil
		}
	}
	note.UpdatedAt = s.nextUpdatedAt(note.UpdatedAt)
	updates["updated_at"] = note.UpdatedAt

	result := tx.Model(&models.Note{}).
		Where("id = ? AND user_id = ?", noteID, ownerID).
		Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		return models.Note{}, translateError(result.Error, ErrNoteNotFound, "update note")
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return models.Note{}, ErrNoteNotFound
	}

	if err := tx.Commit().Error; err != nil {
		return models.Note{}, translateError(err, ErrNoteNotFound, "commit update")
	}

	s.publish(broker.NoteUpdated, note)
	return note, nil
}

func (s *NoteService) DeleteNote(db *database.Database, ownerID uuid.UUID, id string) error {
	noteID, err := uuid.Parse(id)
	if err != nil {
		return ErrNoteNotFound
	}

	result := db.DB.Where("id = ? AND user_id = ?", noteID, ownerID).Delete(&models.Note{})
	if result.Error != nil {
		return translateError(result.Error, ErrNoteNotFound, "delete note")
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}

	s.publish(broker.NoteDeleted, models.Note{ID: noteID, UserID: ownerID})
	return nil
}

func (s *NoteService) nextUpdatedAt(prev time.Time) time.Time {
	now := s.now()
	if floor := prev.Add(time.Microsecond); now.Before(floor) {
		return floor.UTC()
	}
	return now
}

func (s *NoteService) publish(eventType broker.EventType, note models.Note) {
	if s.publisher == nil {
		return
	}
	if err := broker.PublishNoteEvent(s.publisher, eventType, note); err != nil {
		s.log.Warn("failed to publish note event",
			zap.String("event", string(eventType)),
			zap.String("note_id", note.ID.String()),
			zap.Error(err),
		)
	}
}
