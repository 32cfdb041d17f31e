package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/eleven-am/spycat/internal/models"
	"github.com/eleven-am/spycat/internal/orm"
	"github.com/google/uuid"
)

type NewTarget struct {
	Name    string
	Country string
}

type Targets struct {
	repo       *orm.Repository[models.Target]
	targetCats *orm.Repository[models.TargetCat]
}

// CreateMany inserts the targets of one mission in the given order.
func (r *Targets) CreateMany(ctx context.Context, missionID uuid.UUID, specs []NewTarget) ([]models.Target, error) {
	created := make([]models.Target, 0, len(specs))
	for _, spec := range specs {
		target, err := r.repo.Insert(ctx, map[string]interface{}{
			"uuid":         uuid.New(),
			"name":         spec.Name,
			"country":      spec.Country,
			"status":       models.TargetStatusPending,
			"mission_uuid": missionID,
		})
		if err != nil {
			return nil, fmt.Errorf("create target %q: %w", spec.Name, err)
		}
		created = append(created, *target)
	}
	return created, nil
}

func (r *Targets) FindByUUID(ctx context.Context, id uuid.UUID) (*models.Target, error) {
	return r.repo.Query(ctx).Where(targets.UUID.Eq(id)).FirstOrNil()
}

func (r *Targets) ListByMission(ctx context.Context, missionID uuid.UUID) ([]models.Target, error) {
	return r.repo.Query(ctx).
		Where(targets.MissionUUID.Eq(missionID)).
		OrderBy(targets.CreatedAt.Asc(), targets.Name.Asc()).
		Find()
}

// ListForCat returns the targets the cat has assigned itself to.
func (r *Targets) ListForCat(ctx context.Context, catID uuid.UUID) ([]models.Target, error) {
	return r.repo.Query(ctx).
		InnerJoin(targetCatMetadata.Table, "target_cats.target_uuid = targets.uuid").
		Where(targetCats.CatUUID.Eq(catID)).
		OrderBy(targets.CreatedAt.Asc(), targets.Name.Asc()).
		Find()
}

// UpdateStatus persists the target's status and completion time.
func (r *Targets) UpdateStatus(ctx context.Context, target *models.Target) (*models.Target, error) {
	return r.repo.UpdateByID(ctx, target.UUID, map[string]interface{}{
		"status":       target.Status,
		"completed_at": target.CompletedAt,
		"updated_at":   now,
	})
}

func (r *Targets) UpdateDetails(ctx context.Context, target *models.Target) (*models.Target, error) {
	return r.repo.UpdateByID(ctx, target.UUID, map[string]interface{}{
		"name":       target.Name,
		"country":    target.Country,
		"updated_at": now,
	})
}

// AssignCat records the cat on the target. Repeating it is a no-op.
func (r *Targets) AssignCat(ctx context.Context, targetID, catID uuid.UUID) error {
	insert := squirrel.Insert(targetCatMetadata.Table).
		Columns("target_uuid", "cat_uuid").
		Values(targetID, catID).
		Suffix("ON CONFLICT DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	if _, err := r.targetCats.Exec(ctx, insert); err != nil {
		return fmt.Errorf("assign cat to target: %w", err)
	}
	return nil
}

func (r *Targets) IsAssigned(ctx context.Context, targetID, catID uuid.UUID) (bool, error) {
	return r.targetCats.Query(ctx).
		Where(targetCats.TargetUUID.Eq(targetID)).
		Where(targetCats.CatUUID.Eq(catID)).
		Exists()
}
