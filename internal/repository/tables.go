package repository

import (
	"time"

	"github.com/eleven-am/spycat/internal/orm"
	"github.com/google/uuid"
)

var catMetadata = orm.Metadata{
	Table:      "cats",
	PrimaryKey: "uuid",
	Columns: []string{
		"uuid", "name", "password", "refresh_token", "reset_token",
		"years_of_experience", "breed", "salary", "is_staff",
		"created_at", "updated_at",
	},
}

var missionMetadata = orm.Metadata{
	Table:      "missions",
	PrimaryKey: "uuid",
	Columns: []string{
		"uuid", "name", "description", "status",
		"created_at", "updated_at", "completed_at",
	},
}

var targetMetadata = orm.Metadata{
	Table:      "targets",
	PrimaryKey: "uuid",
	Columns: []string{
		"uuid", "name", "country", "status", "mission_uuid",
		"created_at", "updated_at", "completed_at",
	},
}

var noteMetadata = orm.Metadata{
	Table:      "notes",
	PrimaryKey: "uuid",
	Columns: []string{
		"uuid", "content", "cat_uuid", "target_uuid",
		"created_at", "updated_at",
	},
}

// cat_uuid is unique in mission_cats, so it identifies a row.
var missionCatMetadata = orm.Metadata{
	Table:      "mission_cats",
	PrimaryKey: "cat_uuid",
	Columns:    []string{"mission_uuid", "cat_uuid", "created_at"},
}

var targetCatMetadata = orm.Metadata{
	Table:      "target_cats",
	PrimaryKey: "target_uuid",
	Columns:    []string{"target_uuid", "cat_uuid", "created_at"},
}

// Column references

var cats = struct {
	UUID       orm.Column[uuid.UUID]
	Name       orm.StringColumn
	ResetToken orm.StringColumn
	CreatedAt  orm.TimeColumn
}{
	UUID:       orm.Column[uuid.UUID]{Name: "uuid", Table: "cats"},
	Name:       orm.StringColumn{Column: orm.Column[string]{Name: "name", Table: "cats"}},
	ResetToken: orm.StringColumn{Column: orm.Column[string]{Name: "reset_token", Table: "cats"}},
	CreatedAt:  orm.TimeColumn{Column: orm.Column[time.Time]{Name: "created_at", Table: "cats"}},
}

var missions = struct {
	UUID      orm.Column[uuid.UUID]
	Name      orm.StringColumn
	CreatedAt orm.TimeColumn
}{
	UUID:      orm.Column[uuid.UUID]{Name: "uuid", Table: "missions"},
	Name:      orm.StringColumn{Column: orm.Column[string]{Name: "name", Table: "missions"}},
	CreatedAt: orm.TimeColumn{Column: orm.Column[time.Time]{Name: "created_at", Table: "missions"}},
}

var targets = struct {
	UUID        orm.Column[uuid.UUID]
	Name        orm.StringColumn
	MissionUUID orm.Column[uuid.UUID]
	CreatedAt   orm.TimeColumn
}{
	UUID:        orm.Column[uuid.UUID]{Name: "uuid", Table: "targets"},
	Name:        orm.StringColumn{Column: orm.Column[string]{Name: "name", Table: "targets"}},
	MissionUUID: orm.Column[uuid.UUID]{Name: "mission_uuid", Table: "targets"},
	CreatedAt:   orm.TimeColumn{Column: orm.Column[time.Time]{Name: "created_at", Table: "targets"}},
}

var notes = struct {
	UUID       orm.Column[uuid.UUID]
	CatUUID    orm.Column[uuid.UUID]
	TargetUUID orm.Column[uuid.UUID]
	CreatedAt  orm.TimeColumn
}{
	UUID:       orm.Column[uuid.UUID]{Name: "uuid", Table: "notes"},
	CatUUID:    orm.Column[uuid.UUID]{Name: "cat_uuid", Table: "notes"},
	TargetUUID: orm.Column[uuid.UUID]{Name: "target_uuid", Table: "notes"},
	CreatedAt:  orm.TimeColumn{Column: orm.Column[time.Time]{Name: "created_at", Table: "notes"}},
}

var missionCats = struct {
	MissionUUID orm.Column[uuid.UUID]
	CatUUID     orm.Column[uuid.UUID]
	CreatedAt   orm.TimeColumn
}{
	MissionUUID: orm.Column[uuid.UUID]{Name: "mission_uuid", Table: "mission_cats"},
	CatUUID:     orm.Column[uuid.UUID]{Name: "cat_uuid", Table: "mission_cats"},
	CreatedAt:   orm.TimeColumn{Column: orm.Column[time.Time]{Name: "created_at", Table: "mission_cats"}},
}

var targetCats = struct {
	TargetUUID orm.Column[uuid.UUID]
	CatUUID    orm.Column[uuid.UUID]
}{
	TargetUUID: orm.Column[uuid.UUID]{Name: "target_uuid", Table: "target_cats"},
	CatUUID:    orm.Column[uuid.UUID]{Name: "cat_uuid", Table: "target_cats"},
}
