package agency

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/eleven-am/spycat/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteTarget(t *testing.T) {
	cat := &models.Cat{UUID: uuid.New(), Name: "Tom"}
	missionID, targetID, otherID := uuid.New(), uuid.New(), uuid.New()
	completedAt := fixedTime

	open := models.Target{UUID: targetID, Name: "Mouse", Country: "UA", Status: models.TargetStatusActive, MissionUUID: missionID}
	done := open
	done.Status, done.CompletedAt = models.TargetStatusCompleted, &completedAt

	t.Run("unknown target", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM targets WHERE \(targets.uuid = \$1\)`).WithArgs(targetID).WillReturnRows(targetRows())
		f.mock.ExpectRollback()

		_, err := f.svc.CompleteTarget(context.Background(), cat, targetID)
		assertKind(t, err, KindNotFound, "Target not found")
		f.done(t)
	})

	t.Run("cat outside the mission", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM targets WHERE`).WillReturnRows(targetRows(open))
		f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM mission_cats WHERE \(mission_cats.mission_uuid = \$1 AND mission_cats.cat_uuid = \$2\)`).
			WithArgs(missionID, cat.UUID).
			WillReturnRows(countRows(0))
		f.mock.ExpectRollback()

		_, err := f.svc.CompleteTarget(context.Background(), cat, targetID)
		assertKind(t, err, KindForbidden, "You do not have permission to complete this target")
		f.done(t)
	})

	t.Run("other targets still open", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM targets WHERE`).WillReturnRows(targetRows(open))
		f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM mission_cats`).WillReturnRows(countRows(1))
		f.mock.ExpectQuery(`FROM missions WHERE .* FOR UPDATE`).
			WithArgs(missionID).
			WillReturnRows(missionRows(models.Mission{UUID: missionID, Name: "Op", Status: models.MissionStatusInProgress}))
		f.mock.ExpectQuery(`UPDATE targets SET completed_at = \$1, status = \$2, updated_at = now\(\) WHERE uuid = \$3`).
			WithArgs(fixedTime, "completed", targetID).
			WillReturnRows(targetRows(done))
		f.mock.ExpectQuery(`FROM targets WHERE \(targets.mission_uuid = \$1\)`).
			WithArgs(missionID).
			WillReturnRows(targetRows(done, models.Target{UUID: otherID, Status: models.TargetStatusPending, MissionUUID: missionID}))
		f.mock.ExpectCommit()

		target, err := f.svc.CompleteTarget(context.Background(), cat, targetID)
		require.NoError(t, err)
		assert.True(t, target.IsCompleted())
		f.done(t)
	})

	t.Run("last target completes the mission", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM targets WHERE`).WillReturnRows(targetRows(open))
		f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM mission_cats`).WillReturnRows(countRows(1))
		f.mock.ExpectQuery(`FROM missions WHERE .* FOR UPDATE`).
			WithArgs(missionID).
			WillReturnRows(missionRows(models.Mission{UUID: missionID, Name: "Op", Status: models.MissionStatusInProgress}))
		f.mock.ExpectQuery(`UPDATE targets SET`).WillReturnRows(targetRows(done))
		f.mock.ExpectQuery(`FROM targets WHERE \(targets.mission_uuid = \$1\)`).WillReturnRows(targetRows(done))
		f.mock.ExpectQuery(`UPDATE missions SET completed_at = \$1, status = \$2`).
			WithArgs(fixedTime, "completed", missionID).
			WillReturnRows(missionRows(models.Mission{UUID: missionID, Name: "Op", Status: models.MissionStatusCompleted, CompletedAt: &completedAt}))
		f.mock.ExpectCommit()

		target, err := f.svc.CompleteTarget(context.Background(), cat, targetID)
		require.NoError(t, err)
		assert.Equal(t, models.TargetStatusCompleted, target.Status)
		f.done(t)
	})

	t.Run("mission locked before the target is updated", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM targets WHERE`).WillReturnRows(targetRows(open))
		f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM mission_cats`).WillReturnRows(countRows(1))
		f.mock.ExpectQuery(`FROM missions WHERE .* FOR UPDATE`).
			WithArgs(missionID).
			WillReturnError(context.DeadlineExceeded)
		f.mock.ExpectRollback()

		_, err := f.svc.CompleteTarget(context.Background(), cat, targetID)
		require.Error(t, err)
		f.done(t)
	})

	t.Run("mission already completed is left alone", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM targets WHERE`).WillReturnRows(targetRows(open))
		f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM mission_cats`).WillReturnRows(countRows(1))
		f.mock.ExpectQuery(`FROM missions WHERE .* FOR UPDATE`).
			WillReturnRows(missionRows(models.Mission{UUID: missionID, Name: "Op", Status: models.MissionStatusCompleted, CompletedAt: &completedAt}))
		f.mock.ExpectQuery(`UPDATE targets SET`).WillReturnRows(targetRows(done))
		f.mock.ExpectQuery(`FROM targets WHERE \(targets.mission_uuid = \$1\)`).WillReturnRows(targetRows(done))
		f.mock.ExpectCommit()

		_, err := f.svc.CompleteTarget(context.Background(), cat, targetID)
		require.NoError(t, err)
		f.done(t)
	})
}

func TestAssignTarget(t *testing.T) {
	cat := &models.Cat{UUID: uuid.New(), Name: "Tom"}
	missionID, targetID := uuid.New(), uuid.New()
	pending := models.Target{UUID: targetID, Name: "Mouse", Country: "UA", Status: models.TargetStatusPending, MissionUUID: missionID}

	t.Run("completed target", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		completed := pending
		completed.Status = models.TargetStatusCompleted

		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM targets WHERE`).WillReturnRows(targetRows(completed))
		f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM mission_cats`).WillReturnRows(countRows(1))
		f.mock.ExpectRollback()

		_, err := f.svc.AssignTarget(context.Background(), cat, targetID)
		assertKind(t, err, KindConflict, "Cannot assign a completed target")
		f.done(t)
	})

	t.Run("activates the target", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		active := pending
		active.Status = models.TargetStatusActive

		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM targets WHERE`).WillReturnRows(targetRows(pending))
		f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM mission_cats`).WillReturnRows(countRows(1))
		f.mock.ExpectExec(`INSERT INTO target_cats \(target_uuid,cat_uuid\) VALUES \(\$1,\$2\) ON CONFLICT DO NOTHING`).
			WithArgs(targetID, cat.UUID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectQuery(`UPDATE targets SET completed_at = \$1, status = \$2`).
			WithArgs(nil, "active", targetID).
			WillReturnRows(targetRows(active))
		f.mock.ExpectCommit()

		target, err := f.svc.AssignTarget(context.Background(), cat, targetID)
		require.NoError(t, err)
		assert.Equal(t, models.TargetStatusActive, target.Status)
		f.done(t)
	})
}

func TestGetTarget(t *testing.T) {
	f := newFixture(t, fakeBreeds{})
	cat := &models.Cat{UUID: uuid.New()}
	target := models.Target{UUID: uuid.New(), Status: models.TargetStatusActive, MissionUUID: uuid.New()}

	f.mock.ExpectQuery(`FROM targets WHERE`).WillReturnRows(targetRows(target))
	f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM target_cats`).
		WithArgs(target.UUID, cat.UUID).
		WillReturnRows(countRows(0))

	_, err := f.svc.GetTarget(context.Background(), cat, target.UUID)
	assertKind(t, err, KindForbidden, "Target does not belong to this cat")
	f.done(t)
}

func TestUpdateTarget(t *testing.T) {
	targetID := uuid.New()

	t.Run("completed target", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM targets WHERE`).
			WillReturnRows(targetRows(models.Target{UUID: targetID, Status: models.TargetStatusCompleted, MissionUUID: uuid.New()}))
		f.mock.ExpectRollback()

		_, err := f.svc.UpdateTarget(context.Background(), targetID, TargetUpdate{Name: "Rat", Country: "PL"})
		assertKind(t, err, KindConflict, "Cannot update a completed target")
		f.done(t)
	})

	t.Run("renames an open target", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		renamed := models.Target{UUID: targetID, Name: "Rat", Country: "PL", Status: models.TargetStatusPending, MissionUUID: uuid.New()}

		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM targets WHERE`).
			WillReturnRows(targetRows(models.Target{UUID: targetID, Name: "Mouse", Country: "UA", Status: models.TargetStatusPending, MissionUUID: renamed.MissionUUID}))
		f.mock.ExpectQuery(`UPDATE targets SET country = \$1, name = \$2, updated_at = now\(\) WHERE uuid = \$3`).
			WithArgs("PL", "Rat", targetID).
			WillReturnRows(targetRows(renamed))
		f.mock.ExpectCommit()

		target, err := f.svc.UpdateTarget(context.Background(), targetID, TargetUpdate{Name: " Rat ", Country: "PL"})
		require.NoError(t, err)
		assert.Equal(t, "Rat", target.Name)
		f.done(t)
	})
}

func TestCreateNote(t *testing.T) {
	cat := &models.Cat{UUID: uuid.New()}
	target := models.Target{UUID: uuid.New(), Status: models.TargetStatusActive, MissionUUID: uuid.New()}

	t.Run("empty content", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		_, err := f.svc.CreateNote(context.Background(), cat, target.UUID, "   ")
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("cat outside the mission", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM targets WHERE`).WillReturnRows(targetRows(target))
		f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM mission_cats`).WillReturnRows(countRows(0))
		f.mock.ExpectRollback()

		_, err := f.svc.CreateNote(context.Background(), cat, target.UUID, "spotted")
		assertKind(t, err, KindForbidden, "Cat is not assigned to the mission of this target")
		f.done(t)
	})

	t.Run("writes the note", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		note := models.Note{UUID: uuid.New(), Content: "spotted", CatUUID: cat.UUID, TargetUUID: target.UUID}

		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM targets WHERE`).WillReturnRows(targetRows(target))
		f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM mission_cats`).WillReturnRows(countRows(1))
		f.mock.ExpectQuery(`INSERT INTO notes`).
			WithArgs(cat.UUID, "spotted", target.UUID, sqlmock.AnyArg()).
			WillReturnRows(noteRows(note))
		f.mock.ExpectCommit()

		created, err := f.svc.CreateNote(context.Background(), cat, target.UUID, " spotted ")
		require.NoError(t, err)
		assert.Equal(t, note.UUID, created.UUID)
		f.done(t)
	})
}

func TestUpdateNote(t *testing.T) {
	author := &models.Cat{UUID: uuid.New()}
	stranger := &models.Cat{UUID: uuid.New()}
	targetID := uuid.New()
	note := models.Note{UUID: uuid.New(), Content: "old", CatUUID: author.UUID, TargetUUID: targetID}

	t.Run("target completed", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM notes WHERE`).WillReturnRows(noteRows(note))
		f.mock.ExpectQuery(`FROM targets WHERE`).
			WillReturnRows(targetRows(models.Target{UUID: targetID, Status: models.TargetStatusCompleted, MissionUUID: uuid.New()}))
		f.mock.ExpectRollback()

		_, err := f.svc.UpdateNote(context.Background(), author, note.UUID, "new")
		assertKind(t, err, KindConflict, "Cannot update note for a completed target")
		f.done(t)
	})

	t.Run("completed target wins over authorship", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM notes WHERE`).WillReturnRows(noteRows(note))
		f.mock.ExpectQuery(`FROM targets WHERE`).
			WillReturnRows(targetRows(models.Target{UUID: targetID, Status: models.TargetStatusCompleted, MissionUUID: uuid.New()}))
		f.mock.ExpectRollback()

		_, err := f.svc.UpdateNote(context.Background(), stranger, note.UUID, "new")
		assertKind(t, err, KindConflict, "Cannot update note for a completed target")
		f.done(t)
	})

	t.Run("not the author", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM notes WHERE`).WillReturnRows(noteRows(note))
		f.mock.ExpectQuery(`FROM targets WHERE`).
			WillReturnRows(targetRows(models.Target{UUID: targetID, Status: models.TargetStatusActive, MissionUUID: uuid.New()}))
		f.mock.ExpectRollback()

		_, err := f.svc.UpdateNote(context.Background(), stranger, note.UUID, "new")
		assertKind(t, err, KindForbidden, "Cat is not the author of this note")
		f.done(t)
	})

	t.Run("missing note", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM notes WHERE`).WillReturnRows(noteRows())
		f.mock.ExpectRollback()

		_, err := f.svc.UpdateNote(context.Background(), author, note.UUID, "new")
		assertKind(t, err, KindNotFound, "Note not found")
		f.done(t)
	})

	t.Run("author edits an open target's note", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		updated := note
		updated.Content = "new"

		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM notes WHERE`).WillReturnRows(noteRows(note))
		f.mock.ExpectQuery(`FROM targets WHERE`).
			WillReturnRows(targetRows(models.Target{UUID: targetID, Status: models.TargetStatusActive, MissionUUID: uuid.New()}))
		f.mock.ExpectQuery(`UPDATE notes SET content = \$1, updated_at = now\(\) WHERE uuid = \$2`).
			WithArgs("new", note.UUID).
			WillReturnRows(noteRows(updated))
		f.mock.ExpectCommit()

		got, err := f.svc.UpdateNote(context.Background(), author, note.UUID, "new")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Content)
		f.done(t)
	})
}
