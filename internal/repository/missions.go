package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/eleven-am/spycat/internal/models"
	"github.com/eleven-am/spycat/internal/orm"
	"github.com/google/uuid"
)

type NewMission struct {
	Name        string
	Description *string
	Status      models.MissionStatus
}

type Missions struct {
	repo        *orm.Repository[models.Mission]
	missionCats *orm.Repository[models.MissionCat]
}

func (r *Missions) Create(ctx context.Context, mission NewMission) (*models.Mission, error) {
	created, err := r.repo.Insert(ctx, map[string]interface{}{
		"uuid":        uuid.New(),
		"name":        mission.Name,
		"description": mission.Description,
		"status":      mission.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("create mission: %w", err)
	}
	return created, nil
}

func (r *Missions) FindByUUID(ctx context.Context, id uuid.UUID) (*models.Mission, error) {
	return r.repo.Query(ctx).Where(missions.UUID.Eq(id)).FirstOrNil()
}

// Lock loads the mission and holds a row lock until the transaction ends.
func (r *Missions) Lock(ctx context.Context, id uuid.UUID) (*models.Mission, error) {
	return r.repo.Query(ctx).Where(missions.UUID.Eq(id)).ForUpdate().FirstOrNil()
}

func (r *Missions) FindByName(ctx context.Context, name string) (*models.Mission, error) {
	return r.repo.Query(ctx).Where(missions.Name.Eq(name)).FirstOrNil()
}

func (r *Missions) List(ctx context.Context) ([]models.Mission, error) {
	return r.repo.Query(ctx).OrderBy(missions.CreatedAt.Asc()).Find()
}

// UpdateStatus persists the mission's status and completion time.
func (r *Missions) UpdateStatus(ctx context.Context, mission *models.Mission) (*models.Mission, error) {
	return r.repo.UpdateByID(ctx, mission.UUID, map[string]interface{}{
		"status":       mission.Status,
		"completed_at": mission.CompletedAt,
		"updated_at":   now,
	})
}

func (r *Missions) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.DeleteByID(ctx, id)
}

// CatUUIDs lists the cats linked to the mission in link order.
func (r *Missions) CatUUIDs(ctx context.Context, missionID uuid.UUID) ([]uuid.UUID, error) {
	links, err := r.missionCats.Query(ctx).
		Where(missionCats.MissionUUID.Eq(missionID)).
		OrderBy(missionCats.CreatedAt.Asc(), missionCats.CatUUID.Asc()).
		Find()
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(links))
	for i, link := range links {
		ids[i] = link.CatUUID
	}
	return ids, nil
}

// MissionOfCat returns the mission the cat is linked to, or nil.
func (r *Missions) MissionOfCat(ctx context.Context, catID uuid.UUID) (*models.Mission, error) {
	return r.repo.Query(ctx).
		InnerJoin(missionCatMetadata.Table, "mission_cats.mission_uuid = missions.uuid").
		Where(missionCats.CatUUID.Eq(catID)).
		FirstOrNil()
}

// LinkedCats returns those of catIDs already linked to some mission, in the
// order given.
func (r *Missions) LinkedCats(ctx context.Context, catIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(catIDs) == 0 {
		return []uuid.UUID{}, nil
	}

	links, err := r.missionCats.Query(ctx).Where(missionCats.CatUUID.In(catIDs...)).Find()
	if err != nil {
		return nil, err
	}

	linked := make(map[uuid.UUID]bool, len(links))
	for _, link := range links {
		linked[link.CatUUID] = true
	}

	result := []uuid.UUID{}
	for _, id := range catIDs {
		if linked[id] {
			result = append(result, id)
		}
	}
	return result, nil
}

// LinkCats attaches cats to the mission. A cat already on a mission violates
// mission_cats_cat_uuid_key and surfaces as orm.ErrDuplicateKey.
func (r *Missions) LinkCats(ctx context.Context, missionID uuid.UUID, catIDs []uuid.UUID) error {
	if len(catIDs) == 0 {
		return nil
	}

	insert := squirrel.Insert(missionCatMetadata.Table).
		Columns("mission_uuid", "cat_uuid").
		PlaceholderFormat(squirrel.Dollar)
	for _, id := range catIDs {
		insert = insert.Values(missionID, id)
	}

	if _, err := r.missionCats.Exec(ctx, insert); err != nil {
		return fmt.Errorf("link cats to mission: %w", err)
	}
	return nil
}

func (r *Missions) HasCat(ctx context.Context, missionID, catID uuid.UUID) (bool, error) {
	return r.missionCats.Query(ctx).
		Where(missionCats.MissionUUID.Eq(missionID)).
		Where(missionCats.CatUUID.Eq(catID)).
		Exists()
}

// HasAnyCat reports whether at least one cat is linked to the mission.
func (r *Missions) HasAnyCat(ctx context.Context, missionID uuid.UUID) (bool, error) {
	return r.missionCats.Query(ctx).Where(missionCats.MissionUUID.Eq(missionID)).Exists()
}
