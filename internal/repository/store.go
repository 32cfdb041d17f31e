package repository

import (
	"github.com/Masterminds/squirrel"
	"github.com/eleven-am/spycat/internal/models"
	"github.com/eleven-am/spycat/internal/orm"
)

// Store groups the repositories bound to one executor, either the pool or a
// transaction.
type Store struct {
	Cats     *Cats
	Missions *Missions
	Targets  *Targets
	Notes    *Notes
}

func New(db orm.DBExecutor, middleware ...orm.QueryMiddleware) *Store {
	missionCatRepo := orm.MustRepository[models.MissionCat](db, missionCatMetadata, middleware...)
	targetCatRepo := orm.MustRepository[models.TargetCat](db, targetCatMetadata, middleware...)

	return &Store{
		Cats: &Cats{
			repo:        orm.MustRepository[models.Cat](db, catMetadata, middleware...),
			missionCats: missionCatRepo,
		},
		Missions: &Missions{
			repo:        orm.MustRepository[models.Mission](db, missionMetadata, middleware...),
			missionCats: missionCatRepo,
		},
		Targets: &Targets{
			repo:       orm.MustRepository[models.Target](db, targetMetadata, middleware...),
			targetCats: targetCatRepo,
		},
		Notes: &Notes{
			repo: orm.MustRepository[models.Note](db, noteMetadata, middleware...),
		},
	}
}

// FromSession builds a Store on the session's executor and middleware.
func FromSession(session *orm.Session) *Store {
	return New(session.Executor(), session.Middleware()...)
}

// now is the database clock, so every timestamp in a transaction agrees.
var now = squirrel.Expr("now()")
