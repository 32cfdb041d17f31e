package models

import (
	"time"

	"github.com/google/uuid"
)

// TargetStatus represents the status of a target
type TargetStatus string

const (
	TargetStatusPending   TargetStatus = "pending"
	TargetStatusActive    TargetStatus = "active"
	TargetStatusCompleted TargetStatus = "completed"
)

// Target is a sub-task of exactly one mission
type Target struct {
	UUID        uuid.UUID    `db:"uuid" json:"uuid"`
	Name        string       `db:"name" json:"name"`
	Country     string       `db:"country" json:"country"`
	Status      TargetStatus `db:"status" json:"status"`
	MissionUUID uuid.UUID    `db:"mission_uuid" json:"mission_uuid"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
	CompletedAt *time.Time   `db:"completed_at" json:"completed_at"`
}

// TargetCat records that a cat took on a target.
type TargetCat struct {
	TargetUUID uuid.UUID `db:"target_uuid" json:"target_uuid"`
	CatUUID    uuid.UUID `db:"cat_uuid" json:"cat_uuid"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (t *Target) IsCompleted() bool {
	return t.Status == TargetStatusCompleted
}

// Activate marks the target as being worked on.
func (t *Target) Activate(now time.Time) error {
	if t.IsCompleted() {
		return &TransitionError{Entity: "target", Action: "assign", From: string(t.Status)}
	}
	t.Status = TargetStatusActive
	t.UpdatedAt = now
	return nil
}

// Complete marks the target done. Completing twice is a no-op on the status
// but keeps the original completion time.
func (t *Target) Complete(now time.Time) {
	if t.IsCompleted() {
		return
	}
	t.Status = TargetStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
}

// Edit changes the target's name and country while it is still open.
func (t *Target) Edit(name, country string, now time.Time) error {
	if t.IsCompleted() {
		return &TransitionError{Entity: "target", Action: "update", From: string(t.Status)}
	}
	t.Name = name
	t.Country = country
	t.UpdatedAt = now
	return nil
}

// AllCompleted reports whether every target is completed. An empty list is
// never complete.
func AllCompleted(targets []Target) bool {
	if len(targets) == 0 {
		return false
	}
	for i := range targets {
		if !targets[i].IsCompleted() {
			return false
		}
	}
	return true
}
