package services

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"tasknotes/backend/broker"
	"tasknotes/backend/database"
	"tasknotes/backend/models"
	"tasknotes/backend/testutils"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func createTestUser(t *testing.T, db *database.Database) uuid.UUID {
	t.Helper()
	user := models.User{Email: uuid.NewString() + "@example.com", PasswordHash: "hash"}
	require.NoError(t, db.DB.Create(&user).Error)
	return user.ID
}

// fixedClock makes the service clock return the given instant on every call.
func fixedClock(s *NoteService, at time.Time) {
	s.now = func() time.Time { return at }
}

func TestCreateNote_Defaults(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewNoteService(nil, zap.NewNop())
	owner := createTestUser(t, db)

	note, err := svc.CreateNote(db, owner, CreateNoteInput{Title: "Groceries", Content: strPtr("")})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, note.ID)
	assert.Equal(t, owner, note.UserID)
	assert.Equal(t, models.NoteTypeNote, note.Type)
	assert.False(t, note.Completed)
	assert.Nil(t, note.Deadline)
	assert.Equal(t, "", note.Content)
	assert.True(t, note.CreatedAt.Equal(note.UpdatedAt))

	stored, err := svc.GetNoteById(db, owner, note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Groceries", stored.Title)
	assert.True(t, note.CreatedAt.Equal(stored.CreatedAt))
}

func TestCreateNote_TaskWithDeadline(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewNoteService(nil, zap.NewNop())
	owner := createTestUser(t, db)

	note, err := svc.CreateNote(db, owner, CreateNoteInput{
		Title:    "Ship release",
		Content:  strPtr("tag and publish"),
		Type:     "task",
		Deadline: strPtr("2099-01-01T10:00:00.5Z"),
	})
	require.NoError(t, err)

	assert.True(t, note.IsTask())
	require.NotNil(t, note.Deadline)
	assert.True(t, time.Date(2099, 1, 1, 10, 0, 0, 500000000, time.UTC).Equal(*note.Deadline))

	stored, err := svc.GetNoteById(db, owner, note.ID.String())
	require.NoError(t, err)
	require.NotNil(t, stored.Deadline)
	assert.True(t, note.Deadline.Equal(*stored.Deadline))
}

func TestCreateNote_Validation(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewNoteService(nil, zap.NewNop())
	owner := createTestUser(t, db)

	tests := []struct {
		name  string
		input CreateNoteInput
		field string
	}{
		{"missing title", CreateNoteInput{Content: strPtr("x")}, "title"},
		{"missing content", CreateNoteInput{Title: "t"}, "content"},
		{"unknown type", CreateNoteInput{Title: "t", Content: strPtr("x"), Type: "event"}, "type"},
		{"bad deadline", CreateNoteInput{Title: "t", Content: strPtr("x"), Deadline: strPtr("tomorrow")}, "deadline"},
		{"empty deadline", CreateNoteInput{Title: "t", Content: strPtr("x"), Deadline: strPtr("")}, "deadline"},
		{"offset deadline", CreateNoteInput{Title: "t", Content: strPtr("x"), Deadline: strPtr("2099-01-01T12:00:00+02:00")}, "deadline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateNote(db, owner, tt.input)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	notes, err := svc.ListNotes(db, owner, "")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestGetNoteById_NotFound(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewNoteService(nil, zap.NewNop())
	ownerA := createTestUser(t, db)
	ownerB := createTestUser(t, db)

	note, err := svc.CreateNote(db, ownerA, CreateNoteInput{Title: "private", Content: strPtr("")})
	require.NoError(t, err)

	_, err = svc.GetNoteById(db, ownerB, note.ID.String())
	assert.ErrorIs(t, err, ErrNoteNotFound)

	_, err = svc.GetNoteById(db, ownerA, uuid.NewString())
	assert.ErrorIs(t, err, ErrNoteNotFound)

	_, err = svc.GetNoteById(db, ownerA, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListNotes_ScopedFilteredAndOrdered(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewNoteService(nil, zap.NewNop())
	ownerA := createTestUser(t, db)
	ownerB := createTestUser(t, db)

	base := time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC)
	create := func(owner uuid.UUID, title, typ string, offset time.Duration) models.Note {
		fixedClock(svc, base.Add(offset))
		n, err := svc.CreateNote(db, owner, CreateNoteInput{Title: title, Content: strPtr(""), Type: typ})
		require.NoError(t, err)
		return n
	}

	first := create(ownerA, "first", "note", 0)
	second := create(ownerA, "second", "task", time.Minute)
	third := create(ownerA, "third", "", 2*time.Minute)
	create(ownerB, "someone else", "note", 3*time.Minute)

	all, err := svc.ListNotes(db, ownerA, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{third.ID, second.ID, first.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	tasks, err := svc.ListNotes(db, ownerA, "task")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, second.ID, tasks[0].ID)

	notes, err := svc.ListNotes(db, ownerA, "note")
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	unknown, err := svc.ListNotes(db, ownerA, "event")
	require.NoError(t, err)
	assert.Len(t, unknown, 3)

	// Touching the oldest note moves it to the front.
	fixedClock(svc, base.Add(time.Hour))
	_, err = svc.UpdateNote(db, ownerA, first.ID.String(), NotePatch{})
	require.NoError(t, err)

	all, err = svc.ListNotes(db, ownerA, "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, all[0].ID)

	empty, err := svc.ListNotes(db, uuid.New(), "")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdateNote_PartialPatch(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewNoteService(nil, zap.NewNop())
	owner := createTestUser(t, db)

	created, err := svc.CreateNote(db, owner, CreateNoteInput{
		Title:    "Draft",
		Content:  strPtr("body"),
		Type:     "task",
		Deadline: strPtr("2099-01-01T00:00:00Z"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateNote(db, owner, created.ID.String(), NotePatch{Completed: boolPtr(true)})
	require.NoError(t, err)

	assert.True(t, updated.Completed)
	assert.Equal(t, "Draft", updated.Title)
	assert.Equal(t, "body", updated.Content)
	assert.Equal(t, models.NoteTypeTask, updated.Type)
	require.NotNil(t, updated.Deadline)
	assert.True(t, created.Deadline.Equal(*updated.Deadline))
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	stored, err := svc.GetNoteById(db, owner, created.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.Equal(t, "Draft", stored.Title)
	assert.True(t, updated.UpdatedAt.Equal(stored.UpdatedAt))
}

func TestUpdateNote_UpdatedAtStrictlyIncreases(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewNoteService(nil, zap.NewNop())
	owner := createTestUser(t, db)

	frozen := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	fixedClock(svc, frozen)

	created, err := svc.CreateNote(db, owner, CreateNoteInput{Title: "t", Content: strPtr("")})
	require.NoError(t, err)

	prev := created.UpdatedAt
	for i := 0; i < 3; i++ {
		updated, err := svc.UpdateNote(db, owner, created.ID.String(), NotePatch{})
		require.NoError(t, err)
		assert.True(t, updated.UpdatedAt.After(prev), "update %d did not advance updatedAt", i)
		prev = updated.UpdatedAt
	}

	stored, err := svc.GetNoteById(db, owner, created.ID.String())
	require.NoError(t, err)
	assert.True(t, prev.Equal(stored.UpdatedAt))
	assert.True(t, frozen.Equal(stored.CreatedAt))
}

func TestUpdateNote_Deadline(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewNoteService(nil, zap.NewNop())
	owner := createTestUser(t, db)

	created, err := svc.CreateNote(db, owner, CreateNoteInput{Title: "t", Content: strPtr(""), Type: "task"})
	require.NoError(t, err)

	var patch NotePatch
	require.NoError(t, json.Unmarshal([]byte(`{"deadline":"2031-03-04T05:06:07Z"}`), &patch))
	updated, err := svc.UpdateNote(db, owner, created.ID.String(), patch)
	require.NoError(t, err)
	require.NotNil(t, updated.Deadline)
	assert.True(t, time.Date(2031, 3, 4, 5, 6, 7, 0, time.UTC).Equal(*updated.Deadline))

	patch = NotePatch{}
	require.NoError(t, json.Unmarshal([]byte(`{"deadline":null}`), &patch))
	cleared, err := svc.UpdateNote(db, owner, created.ID.String(), patch)
	require.NoError(t, err)
	assert.Nil(t, cleared.Deadline)

	stored, err := svc.GetNoteById(db, owner, created.ID.String())
	require.NoError(t, err)
	assert.Nil(t, stored.Deadline)
}

func TestUpdateNote_Errors(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewNoteService(nil, zap.NewNop())
	ownerA := createTestUser(t, db)
	ownerB := createTestUser(t, db)

	created, err := svc.CreateNote(db, ownerA, CreateNoteInput{Title: "mine", Content: strPtr("")})
	require.NoError(t, err)

	_, err = svc.UpdateNote(db, ownerB, created.ID.String(), NotePatch{Title: strPtr("stolen")})
	assert.ErrorIs(t, err, ErrNoteNotFound)

	_, err = svc.UpdateNote(db, ownerA, uuid.NewString(), NotePatch{})
	assert.ErrorIs(t, err, ErrNoteNotFound)

	_, err = svc.UpdateNote(db, ownerA, "42", NotePatch{})
	assert.ErrorIs(t, err, ErrNoteNotFound)

	_, err = svc.UpdateNote(db, ownerA, created.ID.String(), NotePatch{Title: strPtr("")})
	assert.ErrorIs(t, err, ErrValidation)

	stored, err := svc.GetNoteById(db, ownerA, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "mine", stored.Title)
	assert.True(t, created.UpdatedAt.Equal(stored.UpdatedAt))
}

func TestDeleteNote_Scoped(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewNoteService(nil, zap.NewNop())
	ownerA := createTestUser(t, db)
	ownerB := createTestUser(t, db)

	created, err := svc.CreateNote(db, ownerA, CreateNoteInput{Title: "keep", Content: strPtr("")})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteNote(db, ownerB, created.ID.String()), ErrNoteNotFound)
	_, err = svc.GetNoteById(db, ownerA, created.ID.String())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote(db, ownerA, created.ID.String()))

	_, err = svc.GetNoteById(db, ownerA, created.ID.String())
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.ErrorIs(t, svc.DeleteNote(db, ownerA, created.ID.String()), ErrNoteNotFound)
	assert.ErrorIs(t, svc.DeleteNote(db, ownerA, "nope"), ErrNoteNotFound)
}

func TestDeleteNote_ScopesByOwnerInSQL(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	noteID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "notes" WHERE id = $1 AND user_id = $2`)).
		WithArgs(noteID.String(), ownerID.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	svc := NewNoteService(nil, zap.NewNop())
	err := svc.DeleteNote(db, ownerID, noteID.String())

	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListNotes_StorageFailure(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	ownerID := uuid.New()
	storageErr := errors.New("connection reset by peer")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "notes" WHERE user_id = $1 ORDER BY updated_at DESC`)).
		WithArgs(ownerID.String()).
		WillReturnError(storageErr)

	svc := NewNoteService(nil, zap.NewNop())
	_, err := svc.ListNotes(db, ownerID, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, storageErr)
	assert.Equal(t, KindUnexpected, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteService_PublishesLifecycleEvents(t *testing.T) {
	db := testutils.SetupTestDB(t)
	b := broker.NewMemoryBroker(zap.NewNop())
	defer b.Close()

	svc := NewNoteService(b, zap.NewNop())
	owner := createTestUser(t, db)

	sub, err := b.Subscribe(broker.NoteSubject(owner))
	require.NoError(t, err)

	created, err := svc.CreateNote(db, owner, CreateNoteInput{Title: "t", Content: strPtr("")})
	require.NoError(t, err)
	_, err = svc.UpdateNote(db, owner, created.ID.String(), NotePatch{Completed: boolPtr(true)})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteNote(db, owner, created.ID.String()))

	var got []broker.EventType
	for i := 0; i < 3; i++ {
		select {
		case msg := <-sub.Messages():
			var event broker.Event
			require.NoError(t, json.Unmarshal(msg.Data, &event))
			got = append(got, event.Type)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	assert.Equal(t, []broker.EventType{broker.NoteCreated, broker.NoteUpdated, broker.NoteDeleted}, got)
}

func TestNoteService_PublishFailureIsNotReturned(t *testing.T) {
	db := testutils.SetupTestDB(t)
	b := broker.NewMemoryBroker(zap.NewNop())
	require.NoError(t, b.Close())

	svc := NewNoteService(b, zap.NewNop())
	owner := createTestUser(t, db)

	_, err := svc.CreateNote(db, owner, CreateNoteInput{Title: "t", Content: strPtr("")})
	assert.NoError(t, err)
}
