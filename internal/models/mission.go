package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MissionStatus represents the lifecycle state of a mission
type MissionStatus string

const (
	MissionStatusPending    MissionStatus = "pending"
	MissionStatusInProgress MissionStatus = "in_progress"
	MissionStatusCompleted  MissionStatus = "completed"
	// MissionStatusCancelled is reserved. No operation moves a mission into it.
	MissionStatusCancelled MissionStatus = "cancelled"
)

func (s MissionStatus) Valid() bool {
	switch s {
	case MissionStatusPending, MissionStatusInProgress, MissionStatusCompleted, MissionStatusCancelled:
		return true
	}
	return false
}

// Mission is a unit of work with 1 to 3 targets
type Mission struct {
	UUID        uuid.UUID     `db:"uuid" json:"uuid"`
	Name        string        `db:"name" json:"name"`
	Description *string       `db:"description" json:"description"`
	Status      MissionStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
	CompletedAt *time.Time    `db:"completed_at" json:"completed_at"`
}

// MissionCat links a cat to a mission. cat_uuid is unique across the table.
type MissionCat struct {
	MissionUUID uuid.UUID `db:"mission_uuid" json:"mission_uuid"`
	CatUUID     uuid.UUID `db:"cat_uuid" json:"cat_uuid"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MissionDetails is a mission with its targets and assigned cats.
type MissionDetails struct {
	Mission
	Targets  []Target    `json:"targets"`
	CatUUIDs []uuid.UUID `json:"cat_uuids"`
}

// TransitionError reports a status change the current state does not allow.
type TransitionError struct {
	Entity string
	Action string
	From   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Cannot %s a %s %s", e.Action, e.From, e.Entity)
}

// CanAssign reports whether cats may still join the mission.
func (m *Mission) CanAssign() bool {
	return m.Status == MissionStatusPending || m.Status == MissionStatusInProgress
}

// Start moves the mission to in_progress once cats are attached.
func (m *Mission) Start(now time.Time) error {
	if !m.CanAssign() {
		return &TransitionError{Entity: "mission", Action: "assign cats to", From: string(m.Status)}
	}
	m.Status = MissionStatusInProgress
	m.UpdatedAt = now
	return nil
}

// Complete closes the mission. Pending and cancelled missions cannot be
// completed directly.
func (m *Mission) Complete(now time.Time) error {
	if m.Status == MissionStatusPending || m.Status == MissionStatusCancelled {
		return &TransitionError{Entity: "mission", Action: "complete", From: string(m.Status)}
	}
	m.Status = MissionStatusCompleted
	m.CompletedAt = &now
	m.UpdatedAt = now
	return nil
}

// InitialMissionStatus is in_progress when the mission is staffed at creation.
func InitialMissionStatus(catCount int) MissionStatus {
	if catCount > 0 {
		return MissionStatusInProgress
	}
	return MissionStatusPending
}
