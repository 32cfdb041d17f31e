package repository

import (
	"context"
	"fmt"

	"github.com/eleven-am/spycat/internal/models"
	"github.com/eleven-am/spycat/internal/orm"
	"github.com/google/uuid"
)

// NewCat holds the fields a signup persists. Password is already hashed.
type NewCat struct {
	Name              string
	Password          string
	YearsOfExperience int
	Breed             string
	Salary            int
}

type Cats struct {
	repo        *orm.Repository[models.Cat]
	missionCats *orm.Repository[models.MissionCat]
}

func (r *Cats) Create(ctx context.Context, cat NewCat) (*models.Cat, error) {
	created, err := r.repo.Insert(ctx, map[string]interface{}{
		"uuid":                uuid.New(),
		"name":                cat.Name,
		"password":            cat.Password,
		"years_of_experience": cat.YearsOfExperience,
		"breed":               cat.Breed,
		"salary":              cat.Salary,
	})
	if err != nil {
		return nil, fmt.Errorf("create cat: %w", err)
	}
	return created, nil
}

// FindByUUID returns nil, nil when no cat has the id.
func (r *Cats) FindByUUID(ctx context.Context, id uuid.UUID) (*models.Cat, error) {
	return r.repo.Query(ctx).Where(cats.UUID.Eq(id)).FirstOrNil()
}

// FindByName matches the name case-insensitively.
func (r *Cats) FindByName(ctx context.Context, name string) (*models.Cat, error) {
	return r.repo.Query(ctx).Where(cats.Name.EqualFold(name)).FirstOrNil()
}

// FindByUUIDs returns the cats that exist among ids.
func (r *Cats) FindByUUIDs(ctx context.Context, ids []uuid.UUID) ([]models.Cat, error) {
	if len(ids) == 0 {
		return []models.Cat{}, nil
	}
	return r.repo.Query(ctx).
		Where(cats.UUID.In(ids...)).
		OrderBy(cats.CreatedAt.Asc()).
		Find()
}

// SearchByName is a case-insensitive substring match on name.
func (r *Cats) SearchByName(ctx context.Context, query string) ([]models.Cat, error) {
	return r.repo.Query(ctx).
		Where(cats.Name.Contains(query)).
		OrderBy(cats.Name.Asc()).
		Find()
}

func (r *Cats) List(ctx context.Context) ([]models.Cat, error) {
	return r.repo.Query(ctx).OrderBy(cats.CreatedAt.Asc()).Find()
}

func (r *Cats) UpdateSalary(ctx context.Context, id uuid.UUID, salary int) (*models.Cat, error) {
	return r.repo.UpdateByID(ctx, id, map[string]interface{}{
		"salary":     salary,
		"updated_at": now,
	})
}

// UpdateRefreshToken stores token; nil clears it.
func (r *Cats) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	_, err := r.repo.UpdateByID(ctx, id, map[string]interface{}{
		"refresh_token": token,
		"updated_at":    now,
	})
	return err
}

// UpdateResetToken stores token; nil clears it.
func (r *Cats) UpdateResetToken(ctx context.Context, id uuid.UUID, token *string) error {
	_, err := r.repo.UpdateByID(ctx, id, map[string]interface{}{
		"reset_token": token,
		"updated_at":  now,
	})
	return err
}

func (r *Cats) FindByResetToken(ctx context.Context, token string) (*models.Cat, error) {
	return r.repo.Query(ctx).Where(cats.ResetToken.Eq(token)).FirstOrNil()
}

// UpdatePassword stores a new hash and revokes outstanding reset and refresh
// tokens.
func (r *Cats) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	_, err := r.repo.UpdateByID(ctx, id, map[string]interface{}{
		"password":      hash,
		"reset_token":   nil,
		"refresh_token": nil,
		"updated_at":    now,
	})
	return err
}

func (r *Cats) Promote(ctx context.Context, id uuid.UUID) (*models.Cat, error) {
	return r.repo.UpdateByID(ctx, id, map[string]interface{}{
		"is_staff":   true,
		"updated_at": now,
	})
}

func (r *Cats) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.DeleteByID(ctx, id)
}

// IsOnMission reports whether the cat is linked to any mission.
func (r *Cats) IsOnMission(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.missionCats.Query(ctx).Where(missionCats.CatUUID.Eq(id)).Exists()
}
