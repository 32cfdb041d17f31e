package agency

import (
	"context"

	"github.com/eleven-am/spycat/internal/models"
	"github.com/eleven-am/spycat/internal/repository"
	"github.com/google/uuid"
)

// TargetUpdate is an admin edit of an open target.
type TargetUpdate struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

func findTarget(ctx context.Context, store *repository.Store, id uuid.UUID) (*models.Target, error) {
	target, err := store.Targets.FindByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, NotFound("Target not found")
	}
	return target, nil
}

// requireMission fails with message unless the cat is linked to the mission.
func requireMission(ctx context.Context, store *repository.Store, missionID, catID uuid.UUID, message string) error {
	ok, err := store.Missions.HasCat(ctx, missionID, catID)
	if err != nil {
		return err
	}
	if !ok {
		return Forbidden("%s", message)
	}
	return nil
}

// AssignTarget lets a cat take on a target of its own mission. The target
// becomes active.
func (s *Service) AssignTarget(ctx context.Context, cat *models.Cat, targetID uuid.UUID) (*models.Target, error) {
	var target *models.Target
	err := s.tx(ctx, func(store *repository.Store) error {
		var err error
		if target, err = findTarget(ctx, store, targetID); err != nil {
			return err
		}
		if err := requireMission(ctx, store, target.MissionUUID, cat.UUID, "Cat is not assigned to the mission of this target"); err != nil {
			return err
		}
		if err := target.Activate(s.clock()); err != nil {
			return Conflict("%s", err.Error())
		}

		if err := store.Targets.AssignCat(ctx, target.UUID, cat.UUID); err != nil {
			return err
		}
		target, err = store.Targets.UpdateStatus(ctx, target)
		return err
	})
	return target, err
}

// GetTarget returns a target the cat has assigned itself to.
func (s *Service) GetTarget(ctx context.Context, cat *models.Cat, targetID uuid.UUID) (*models.Target, error) {
	store := s.store()
	target, err := findTarget(ctx, store, targetID)
	if err != nil {
		return nil, err
	}

	assigned, err := store.Targets.IsAssigned(ctx, target.UUID, cat.UUID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, Forbidden("Target does not belong to this cat")
	}
	return target, nil
}

func (s *Service) ListTargets(ctx context.Context, cat *models.Cat) ([]models.Target, error) {
	return s.store().Targets.ListForCat(ctx, cat.UUID)
}

// CompleteTarget marks the target completed. When it was the last open target
// the mission completes too, in the same transaction.
func (s *Service) CompleteTarget(ctx context.Context, cat *models.Cat, targetID uuid.UUID) (*models.Target, error) {
	var (
		target          *models.Target
		missionFinished bool
	)
	err := s.tx(ctx, func(store *repository.Store) error {
		var err error
		if target, err = findTarget(ctx, store, targetID); err != nil {
			return err
		}
		if err := requireMission(ctx, store, target.MissionUUID, cat.UUID, "You do not have permission to complete this target"); err != nil {
			return err
		}

		// Concurrent completions of sibling targets serialize on the mission
		// row, so the last one always sees every other target completed.
		mission, err := store.Missions.Lock(ctx, target.MissionUUID)
		if err != nil {
			return err
		}

		now := s.clock()
		target.Complete(now)
		if target, err = store.Targets.UpdateStatus(ctx, target); err != nil {
			return err
		}

		siblings, err := store.Targets.ListByMission(ctx, target.MissionUUID)
		if err != nil {
			return err
		}
		if !models.AllCompleted(siblings) {
			return nil
		}
		if mission == nil || mission.Status == models.MissionStatusCompleted {
			return nil
		}
		if err := mission.Complete(now); err != nil {
			return Conflict("%s", err.Error())
		}
		if _, err := store.Missions.UpdateStatus(ctx, mission); err != nil {
			return err
		}
		missionFinished = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if missionFinished {
		s.log.Info("mission completed", "mission", target.MissionUUID, "last_target", target.UUID)
	}
	return target, nil
}

// UpdateTarget renames or relocates a target that is not completed.
func (s *Service) UpdateTarget(ctx context.Context, targetID uuid.UUID, in TargetUpdate) (*models.Target, error) {
	var v validator
	in.Name = v.text("name", in.Name, 1, MaxTargetNameLength)
	in.Country = v.text("country", in.Country, 1, MaxCountryLength)
	if err := v.err(); err != nil {
		return nil, err
	}

	var target *models.Target
	err := s.tx(ctx, func(store *repository.Store) error {
		var err error
		if target, err = findTarget(ctx, store, targetID); err != nil {
			return err
		}
		if err := target.Edit(in.Name, in.Country, s.clock()); err != nil {
			return Conflict("%s", err.Error())
		}
		target, err = store.Targets.UpdateDetails(ctx, target)
		return err
	})
	return target, err
}

// TargetNotes lists every note written against the target.
func (s *Service) TargetNotes(ctx context.Context, targetID uuid.UUID) ([]models.Note, error) {
	store := s.store()
	if _, err := findTarget(ctx, store, targetID); err != nil {
		return nil, err
	}
	return store.Notes.ListByTarget(ctx, targetID)
}
