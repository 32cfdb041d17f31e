package agency

import (
	"context"
	"errors"

	"github.com/eleven-am/spycat/internal/models"
	"github.com/eleven-am/spycat/internal/orm"
	"github.com/eleven-am/spycat/internal/repository"
	"github.com/google/uuid"
)

func noteContent(content string) (string, error) {
	var v validator
	content = v.text("content", content, 1, MaxNoteLength)
	return content, v.err()
}

// CreateNote records a note by cat against a target of its mission.
func (s *Service) CreateNote(ctx context.Context, cat *models.Cat, targetID uuid.UUID, content string) (*models.Note, error) {
	content, err := noteContent(content)
	if err != nil {
		return nil, err
	}

	var note *models.Note
	err = s.tx(ctx, func(store *repository.Store) error {
		target, err := findTarget(ctx, store, targetID)
		if err != nil {
			return err
		}
		if err := requireMission(ctx, store, target.MissionUUID, cat.UUID, "Cat is not assigned to the mission of this target"); err != nil {
			return err
		}

		note, err = store.Notes.Create(ctx, repository.NewNote{
			Content:    content,
			CatUUID:    cat.UUID,
			TargetUUID: target.UUID,
		})
		return err
	})
	return note, err
}

// ListNotes returns the notes cat has written.
func (s *Service) ListNotes(ctx context.Context, cat *models.Cat) ([]models.Note, error) {
	return s.store().Notes.ListByAuthor(ctx, cat.UUID)
}

// UpdateNote replaces the content of the cat's own note while its target is
// still open.
func (s *Service) UpdateNote(ctx context.Context, cat *models.Cat, noteID uuid.UUID, content string) (*models.Note, error) {
	content, err := noteContent(content)
	if err != nil {
		return nil, err
	}

	var note *models.Note
	err = s.tx(ctx, func(store *repository.Store) error {
		var err error
		note, err = store.Notes.FindByUUID(ctx, noteID)
		if err != nil {
			return err
		}
		if note == nil {
			return NotFound("Note not found")
		}

		target, err := findTarget(ctx, store, note.TargetUUID)
		if err != nil {
			return err
		}
		if target.IsCompleted() {
			return Conflict("Cannot update note for a completed target")
		}
		if !note.IsAuthor(cat.UUID) {
			return Forbidden("Cat is not the author of this note")
		}

		note, err = store.Notes.UpdateContent(ctx, note.UUID, content)
		if errors.Is(err, orm.ErrNotFound) {
			return NotFound("Note not found")
		}
		return err
	})
	return note, err
}
