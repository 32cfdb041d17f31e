package agency

import (
	"context"
	"errors"
	"strings"

	"github.com/eleven-am/spycat/internal/models"
	"github.com/eleven-am/spycat/internal/orm"
	"github.com/eleven-am/spycat/internal/repository"
	"github.com/google/uuid"
)

func (s *Service) ListCats(ctx context.Context) ([]models.Cat, error) {
	return s.store().Cats.List(ctx)
}

// SearchCats matches query as a case-insensitive substring of the name.
func (s *Service) SearchCats(ctx context.Context, query string) ([]models.Cat, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		var v validator
		v.add("search_query", "must not be empty")
		return nil, v.err()
	}

	found, err := s.store().Cats.SearchByName(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, NotFound("Cat not found")
	}
	return found, nil
}

func (s *Service) GetCat(ctx context.Context, id uuid.UUID) (*models.Cat, error) {
	cat, err := s.store().Cats.FindByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, NotFound("Cat not found")
	}
	return cat, nil
}

func (s *Service) UpdateSalary(ctx context.Context, id uuid.UUID, salary int) (*models.Cat, error) {
	var v validator
	v.nonNegative("salary", salary)
	if err := v.err(); err != nil {
		return nil, err
	}

	var cat *models.Cat
	err := s.tx(ctx, func(store *repository.Store) error {
		var err error
		cat, err = store.Cats.UpdateSalary(ctx, id, salary)
		return catNotFound(err)
	})
	return cat, err
}

// PromoteCat grants staff rights.
func (s *Service) PromoteCat(ctx context.Context, id uuid.UUID) (*models.Cat, error) {
	var cat *models.Cat
	err := s.tx(ctx, func(store *repository.Store) error {
		var err error
		cat, err = store.Cats.Promote(ctx, id)
		return catNotFound(err)
	})
	if err == nil {
		s.log.Info("cat promoted to staff", "cat", cat.UUID, "name", cat.Name)
	}
	return cat, err
}

// PromoteByName is PromoteCat addressed by name, for bootstrapping the first
// admin from the command line.
func (s *Service) PromoteByName(ctx context.Context, name string) (*models.Cat, error) {
	cat, err := s.store().Cats.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, NotFound("Cat not found")
	}
	return s.PromoteCat(ctx, cat.UUID)
}

// DeleteCat removes a cat that is not on any mission.
func (s *Service) DeleteCat(ctx context.Context, id uuid.UUID) error {
	return s.tx(ctx, func(store *repository.Store) error {
		cat, err := store.Cats.FindByUUID(ctx, id)
		if err != nil {
			return err
		}
		if cat == nil {
			return NotFound("Cat not found")
		}

		onMission, err := store.Cats.IsOnMission(ctx, id)
		if err != nil {
			return err
		}
		if onMission {
			return Conflict("Cannot delete cat assigned to a mission")
		}

		return catNotFound(store.Cats.Delete(ctx, id))
	})
}

// CatMission returns the mission the cat is currently linked to.
func (s *Service) CatMission(ctx context.Context, cat *models.Cat) (*models.MissionDetails, error) {
	store := s.store()
	mission, err := store.Missions.MissionOfCat(ctx, cat.UUID)
	if err != nil {
		return nil, err
	}
	if mission == nil {
		return nil, NotFound("Mission not found")
	}
	return loadDetails(ctx, store, mission)
}

func catNotFound(err error) error {
	if errors.Is(err, orm.ErrNotFound) {
		return NotFound("Cat not found")
	}
	return err
}
