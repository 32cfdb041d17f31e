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

// TargetInput names one target of a new mission.
type TargetInput struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// CreateMissionInput describes a mission with its targets and, optionally,
// the cats that staff it from the start.
type CreateMissionInput struct {
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Targets     []TargetInput `json:"targets"`
	CatUUIDs    []uuid.UUID   `json:"cat_uuids"`
}

func (in *CreateMissionInput) normalize() error {
	var v validator
	in.Name = v.text("name", in.Name, 1, MaxMissionNameLength)
	if in.Description != nil {
		description := v.text("description", *in.Description, 0, MaxDescriptionLength)
		in.Description = &description
	}
	if n := len(in.Targets); n < MinTargets || n > MaxTargets {
		v.add("targets", "Mission must have between %d and %d targets", MinTargets, MaxTargets)
	}
	for i := range in.Targets {
		in.Targets[i].Name = v.text("targets.name", in.Targets[i].Name, 1, MaxTargetNameLength)
		in.Targets[i].Country = v.text("targets.country", in.Targets[i].Country, 1, MaxCountryLength)
	}
	in.CatUUIDs = uniqueUUIDs(in.CatUUIDs)
	return v.err()
}

// CreateMission persists the mission, its targets and its cat links together.
func (s *Service) CreateMission(ctx context.Context, in CreateMissionInput) (*models.MissionDetails, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var details *models.MissionDetails
	err := s.tx(ctx, func(store *repository.Store) error {
		existing, err := store.Missions.FindByName(ctx, in.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return missionNameTaken(in.Name)
		}

		if err := checkAssignable(ctx, store, in.CatUUIDs); err != nil {
			return err
		}

		mission, err := store.Missions.Create(ctx, repository.NewMission{
			Name:        in.Name,
			Description: in.Description,
			Status:      models.InitialMissionStatus(len(in.CatUUIDs)),
		})
		if errors.Is(err, orm.ErrDuplicateKey) {
			return missionNameTaken(in.Name)
		}
		if err != nil {
			return err
		}

		specs := make([]repository.NewTarget, len(in.Targets))
		for i, t := range in.Targets {
			specs[i] = repository.NewTarget{Name: t.Name, Country: t.Country}
		}
		targets, err := store.Targets.CreateMany(ctx, mission.UUID, specs)
		if err != nil {
			return err
		}

		if err := linkCats(ctx, store, mission.UUID, in.CatUUIDs); err != nil {
			return err
		}

		details = &models.MissionDetails{Mission: *mission, Targets: targets, CatUUIDs: in.CatUUIDs}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("mission created", "mission", details.UUID, "status", details.Status, "cats", len(details.CatUUIDs))
	return details, nil
}

// ListMissions returns every mission with its targets and cats.
func (s *Service) ListMissions(ctx context.Context) ([]models.MissionDetails, error) {
	store := s.store()
	missions, err := store.Missions.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.MissionDetails, 0, len(missions))
	for i := range missions {
		details, err := loadDetails(ctx, store, &missions[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *details)
	}
	return result, nil
}

func (s *Service) GetMission(ctx context.Context, id uuid.UUID) (*models.MissionDetails, error) {
	store := s.store()
	mission, err := store.Missions.FindByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mission == nil {
		return nil, NotFound("Mission not found")
	}
	return loadDetails(ctx, store, mission)
}

// AssignCats links cats to an open mission and moves it to in_progress. The
// mission row stays locked until the links are written.
func (s *Service) AssignCats(ctx context.Context, id uuid.UUID, catIDs []uuid.UUID) (*models.MissionDetails, error) {
	catIDs = uniqueUUIDs(catIDs)
	if len(catIDs) == 0 {
		var v validator
		v.add("cat_uuids", "must contain at least one cat")
		return nil, v.err()
	}

	var details *models.MissionDetails
	err := s.tx(ctx, func(store *repository.Store) error {
		mission, err := store.Missions.Lock(ctx, id)
		if err != nil {
			return err
		}
		if mission == nil {
			return NotFound("Mission not found")
		}
		if err := mission.Start(s.clock()); err != nil {
			return Conflict("%s", err.Error())
		}

		if err := checkAssignable(ctx, store, catIDs); err != nil {
			return err
		}
		if err := linkCats(ctx, store, mission.UUID, catIDs); err != nil {
			return err
		}

		if mission, err = store.Missions.UpdateStatus(ctx, mission); err != nil {
			return err
		}
		details, err = loadDetails(ctx, store, mission)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cats assigned to mission", "mission", id, "cats", len(catIDs))
	return details, nil
}

// CompleteMission closes a mission directly. Pending and cancelled missions
// are refused.
func (s *Service) CompleteMission(ctx context.Context, id uuid.UUID) (*models.MissionDetails, error) {
	var details *models.MissionDetails
	err := s.tx(ctx, func(store *repository.Store) error {
		mission, err := store.Missions.Lock(ctx, id)
		if err != nil {
			return err
		}
		if mission == nil {
			return NotFound("Mission not found")
		}
		if err := mission.Complete(s.clock()); err != nil {
			return Conflict("%s", err.Error())
		}

		if mission, err = store.Missions.UpdateStatus(ctx, mission); err != nil {
			return err
		}
		details, err = loadDetails(ctx, store, mission)
		return err
	})
	return details, err
}

// DeleteMission removes a mission no cat is linked to. Its targets, their
// notes and target links go with it.
func (s *Service) DeleteMission(ctx context.Context, id uuid.UUID) error {
	return s.tx(ctx, func(store *repository.Store) error {
		mission, err := store.Missions.Lock(ctx, id)
		if err != nil {
			return err
		}
		if mission == nil {
			return NotFound("Mission not found")
		}

		staffed, err := store.Missions.HasAnyCat(ctx, id)
		if err != nil {
			return err
		}
		if staffed {
			return Conflict("Cannot delete mission assigned to cats")
		}

		err = store.Missions.Delete(ctx, id)
		if errors.Is(err, orm.ErrNotFound) {
			return NotFound("Mission not found")
		}
		return err
	})
}

// checkAssignable verifies every cat exists and none is on a mission yet.
func checkAssignable(ctx context.Context, store *repository.Store, catIDs []uuid.UUID) error {
	if len(catIDs) == 0 {
		return nil
	}

	found, err := store.Cats.FindByUUIDs(ctx, catIDs)
	if err != nil {
		return err
	}
	if len(found) != len(catIDs) {
		known := make(map[uuid.UUID]bool, len(found))
		for _, c := range found {
			known[c.UUID] = true
		}
		var missing []string
		for _, id := range catIDs {
			if !known[id] {
				missing = append(missing, id.String())
			}
		}
		return NotFound("Cats not found: %s", strings.Join(missing, ", "))
	}

	linked, err := store.Missions.LinkedCats(ctx, catIDs)
	if err != nil {
		return err
	}
	if len(linked) > 0 {
		return catAlreadyAssigned(linked[0])
	}
	return nil
}

// linkCats writes the links. A unique violation means another request linked
// one of the cats after checkAssignable ran.
func linkCats(ctx context.Context, store *repository.Store, missionID uuid.UUID, catIDs []uuid.UUID) error {
	err := store.Missions.LinkCats(ctx, missionID, catIDs)
	if errors.Is(err, orm.ErrDuplicateKey) {
		return Conflict("Cat is already assigned to a mission. Each cat can only have one mission.")
	}
	return err
}

func loadDetails(ctx context.Context, store *repository.Store, mission *models.Mission) (*models.MissionDetails, error) {
	targets, err := store.Targets.ListByMission(ctx, mission.UUID)
	if err != nil {
		return nil, err
	}
	catIDs, err := store.Missions.CatUUIDs(ctx, mission.UUID)
	if err != nil {
		return nil, err
	}
	return &models.MissionDetails{Mission: *mission, Targets: targets, CatUUIDs: catIDs}, nil
}

func missionNameTaken(name string) *Error {
	return Conflict("Mission with this name %s already exists.", name)
}

func catAlreadyAssigned(id uuid.UUID) *Error {
	return Conflict("Cats with UUID %s are already assigned to missions. Each cat can only have one mission.", id)
}

func uniqueUUIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
