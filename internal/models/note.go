package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is free text a cat writes against a target
type Note struct {
	UUID       uuid.UUID `db:"uuid" json:"uuid"`
	Content    string    `db:"content" json:"content"`
	CatUUID    uuid.UUID `db:"cat_uuid" json:"cat_uuid"`
	TargetUUID uuid.UUID `db:"target_uuid" json:"target_uuid"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (n *Note) IsAuthor(catUUID uuid.UUID) bool {
	return n.CatUUID == catUUID
}
