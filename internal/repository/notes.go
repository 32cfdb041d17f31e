package repository

import (
	"context"
	"fmt"

	"github.com/eleven-am/spycat/internal/models"
	"github.com/eleven-am/spycat/internal/orm"
	"github.com/google/uuid"
)

type NewNote struct {
	Content    string
	CatUUID    uuid.UUID
	TargetUUID uuid.UUID
}

type Notes struct {
	repo *orm.Repository[models.Note]
}

func (r *Notes) Create(ctx context.Context, note NewNote) (*models.Note, error) {
	created, err := r.repo.Insert(ctx, map[string]interface{}{
		"uuid":        uuid.New(),
		"content":     note.Content,
		"cat_uuid":    note.CatUUID,
		"target_uuid": note.TargetUUID,
	})
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return created, nil
}

func (r *Notes) FindByUUID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	return r.repo.Query(ctx).Where(notes.UUID.Eq(id)).FirstOrNil()
}

func (r *Notes) ListByAuthor(ctx context.Context, catID uuid.UUID) ([]models.Note, error) {
	return r.repo.Query(ctx).
		Where(notes.CatUUID.Eq(catID)).
		OrderBy(notes.CreatedAt.Asc()).
		Find()
}

func (r *Notes) ListByTarget(ctx context.Context, targetID uuid.UUID) ([]models.Note, error) {
	return r.repo.Query(ctx).
		Where(notes.TargetUUID.Eq(targetID)).
		OrderBy(notes.CreatedAt.Asc()).
		Find()
}

func (r *Notes) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Note, error) {
	return r.repo.UpdateByID(ctx, id, map[string]interface{}{
		"content":    content,
		"updated_at": now,
	})
}
