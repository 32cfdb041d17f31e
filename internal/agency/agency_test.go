package agency

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/eleven-am/spycat/internal/auth"
	"github.com/eleven-am/spycat/internal/breeds"
	"github.com/eleven-am/spycat/internal/models"
	"github.com/eleven-am/spycat/internal/orm"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

var (
	catColumns     = []string{"uuid", "name", "password", "refresh_token", "reset_token", "years_of_experience", "breed", "salary", "is_staff", "created_at", "updated_at"}
	missionColumns = []string{"uuid", "name", "description", "status", "created_at", "updated_at", "completed_at"}
	targetColumns  = []string{"uuid", "name", "country", "status", "mission_uuid", "created_at", "updated_at", "completed_at"}
	noteColumns    = []string{"uuid", "content", "cat_uuid", "target_uuid", "created_at", "updated_at"}
	linkColumns    = []string{"mission_uuid", "cat_uuid", "created_at"}
)

type fakeBreeds struct {
	err error
}

func (f fakeBreeds) Validate(context.Context, string) error {
	return f.err
}

type fixture struct {
	svc  *Service
	auth *auth.Service
	mock sqlmock.Sqlmock
}

func newFixture(t *testing.T, validator breeds.Validator) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	authSvc, err := auth.NewService(auth.Config{SecretKey: "test-secret", BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	session := orm.NewSession(sqlx.NewDb(db, "postgres"))
	svc := NewService(session, authSvc, validator, WithClock(func() time.Time { return fixedTime }))
	return &fixture{svc: svc, auth: authSvc, mock: mock}
}

func (f *fixture) done(t *testing.T) {
	t.Helper()
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func nullable[T any](p *T) driver.Value {
	if p == nil {
		return nil
	}
	return *p
}

func catRows(cs ...models.Cat) *sqlmock.Rows {
	rows := sqlmock.NewRows(catColumns)
	for _, c := range cs {
		rows.AddRow(c.UUID.String(), c.Name, c.Password, nullable(c.RefreshToken), nullable(c.ResetToken),
			c.YearsOfExperience, c.Breed, c.Salary, c.IsStaff, fixedTime, fixedTime)
	}
	return rows
}

func missionRows(ms ...models.Mission) *sqlmock.Rows {
	rows := sqlmock.NewRows(missionColumns)
	for _, m := range ms {
		rows.AddRow(m.UUID.String(), m.Name, nullable(m.Description), string(m.Status), fixedTime, fixedTime, nullable(m.CompletedAt))
	}
	return rows
}

func targetRows(ts ...models.Target) *sqlmock.Rows {
	rows := sqlmock.NewRows(targetColumns)
	for _, tg := range ts {
		rows.AddRow(tg.UUID.String(), tg.Name, tg.Country, string(tg.Status), tg.MissionUUID.String(), fixedTime, fixedTime, nullable(tg.CompletedAt))
	}
	return rows
}

func noteRows(ns ...models.Note) *sqlmock.Rows {
	rows := sqlmock.NewRows(noteColumns)
	for _, n := range ns {
		rows.AddRow(n.UUID.String(), n.Content, n.CatUUID.String(), n.TargetUUID.String(), fixedTime, fixedTime)
	}
	return rows
}

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func assertKind(t *testing.T, err error, kind Kind, message string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), "kind of %v", err)
	if message != "" {
		assert.Equal(t, message, MessageOf(err))
	}
}

func TestSignup(t *testing.T) {
	valid := SignupInput{Name: "  Tom ", YearsOfExperience: 3, Breed: "Siamese", Password: "whiskers1", Salary: 100}

	t.Run("rejects invalid fields", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		_, err := f.svc.Signup(context.Background(), SignupInput{Name: "", Breed: "S", Password: "short", Salary: -1})

		var verrs orm.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Len(t, verrs, 4)
		assert.Equal(t, KindValidation, KindOf(err))
		f.done(t)
	})

	t.Run("password past the bcrypt limit", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		in := valid
		in.Password = strings.Repeat("a", 80)
		_, err := f.svc.Signup(context.Background(), in)

		var verrs orm.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		require.Len(t, verrs, 1)
		assert.Equal(t, "password", verrs[0].Field)
		assert.Equal(t, "must be at most 72 bytes", verrs[0].Message)
		assert.Equal(t, KindValidation, KindOf(err))
		f.done(t)
	})

	t.Run("unknown breed", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{err: breeds.ErrUnknownBreed})
		_, err := f.svc.Signup(context.Background(), valid)
		assertKind(t, err, KindValidation, "Invalid breed: Siamese")
	})

	t.Run("registry unavailable", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{err: breeds.ErrUnavailable})
		_, err := f.svc.Signup(context.Background(), valid)
		assertKind(t, err, KindUnavailable, "Breed registry is unavailable")
		assert.ErrorIs(t, err, breeds.ErrUnavailable)
	})

	t.Run("name taken", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM cats WHERE \(LOWER\(cats.name\) = LOWER\(\$1\)\)`).
			WithArgs("Tom").
			WillReturnRows(catRows(models.Cat{UUID: uuid.New(), Name: "tom"}))
		f.mock.ExpectRollback()

		_, err := f.svc.Signup(context.Background(), valid)
		assertKind(t, err, KindConflict, "Account already exists")
		f.done(t)
	})

	t.Run("concurrent signup loses on the unique index", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM cats WHERE`).WillReturnRows(catRows())
		f.mock.ExpectQuery(`INSERT INTO cats`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "cats_name_lower_key"})
		f.mock.ExpectRollback()

		_, err := f.svc.Signup(context.Background(), valid)
		assertKind(t, err, KindConflict, "Account already exists")
		f.done(t)
	})

	t.Run("creates the cat with a hashed password", func(t *testing.T) {
		f := newFixture(t, fakeBreeds{})
		id := uuid.New()
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM cats WHERE`).WithArgs("Tom").WillReturnRows(catRows())
		f.mock.ExpectQuery(`INSERT INTO cats \(breed,name,password,salary,uuid,years_of_experience\)`).
			WithArgs("Siamese", "Tom", sqlmock.AnyArg(), 100, sqlmock.AnyArg(), 3).
			WillReturnRows(catRows(models.Cat{UUID: id, Name: "Tom", Breed: "Siamese", Salary: 100, YearsOfExperience: 3}))
		f.mock.ExpectCommit()

		cat, err := f.svc.Signup(context.Background(), valid)
		require.NoError(t, err)
		assert.Equal(t, id, cat.UUID)
		assert.False(t, cat.IsStaff)
		f.done(t)
	})
}

func TestLogin(t *testing.T) {
	f := newFixture(t, fakeBreeds{})
	hash, err := f.auth.HashPassword("whiskers1")
	require.NoError(t, err)
	cat := models.Cat{UUID: uuid.New(), Name: "Tom", Password: hash}

	t.Run("unknown name", func(t *testing.T) {
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM cats WHERE`).WithArgs("Nobody").WillReturnRows(catRows())
		f.mock.ExpectRollback()

		_, err := f.svc.Login(context.Background(), "Nobody", "whiskers1")
		assertKind(t, err, KindUnauthorized, "Invalid name or password")
	})

	t.Run("wrong password", func(t *testing.T) {
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM cats WHERE`).WithArgs("Tom").WillReturnRows(catRows(cat))
		f.mock.ExpectRollback()

		_, err := f.svc.Login(context.Background(), "Tom", "wrong-password")
		assertKind(t, err, KindUnauthorized, "Invalid password")
	})

	t.Run("issues and stores tokens", func(t *testing.T) {
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM cats WHERE`).WithArgs("Tom").WillReturnRows(catRows(cat))
		f.mock.ExpectQuery(`UPDATE cats SET refresh_token = \$1, updated_at = now\(\) WHERE uuid = \$2`).
			WithArgs(sqlmock.AnyArg(), cat.UUID).
			WillReturnRows(catRows(cat))
		f.mock.ExpectCommit()

		pair, err := f.svc.Login(context.Background(), "Tom", "whiskers1")
		require.NoError(t, err)
		assert.Equal(t, "bearer", pair.TokenType)

		name, err := f.auth.DecodeAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "Tom", name)

		name, err = f.auth.DecodeRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "Tom", name)
	})

	f.done(t)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t, fakeBreeds{})
	token, err := f.auth.CreateRefreshToken("Tom")
	require.NoError(t, err)

	t.Run("access token is rejected", func(t *testing.T) {
		access, err := f.auth.CreateAccessToken("Tom")
		require.NoError(t, err)

		_, err = f.svc.Refresh(context.Background(), access)
		assertKind(t, err, KindUnauthorized, "Could not validate credentials")
	})

	t.Run("stale token revokes the stored one", func(t *testing.T) {
		stored := "some-other-token"
		cat := models.Cat{UUID: uuid.New(), Name: "Tom", RefreshToken: &stored}

		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM cats WHERE`).WithArgs("Tom").WillReturnRows(catRows(cat))
		f.mock.ExpectQuery(`UPDATE cats SET refresh_token = \$1`).
			WithArgs(nil, cat.UUID).
			WillReturnRows(catRows(cat))
		f.mock.ExpectCommit()

		_, err := f.svc.Refresh(context.Background(), token)
		assertKind(t, err, KindUnauthorized, "Invalid refresh token")
	})

	t.Run("rotates a matching token", func(t *testing.T) {
		cat := models.Cat{UUID: uuid.New(), Name: "Tom", RefreshToken: &token}

		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM cats WHERE`).WithArgs("Tom").WillReturnRows(catRows(cat))
		f.mock.ExpectQuery(`UPDATE cats SET refresh_token = \$1`).
			WithArgs(sqlmock.AnyArg(), cat.UUID).
			WillReturnRows(catRows(cat))
		f.mock.ExpectCommit()

		pair, err := f.svc.Refresh(context.Background(), token)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
	})

	f.done(t)
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t, fakeBreeds{})
	token, err := f.auth.CreateResetToken("Tom")
	require.NoError(t, err)

	t.Run("short password", func(t *testing.T) {
		err := f.svc.ResetPassword(context.Background(), token, "short")
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("token of another scope", func(t *testing.T) {
		access, err := f.auth.CreateAccessToken("Tom")
		require.NoError(t, err)

		err = f.svc.ResetPassword(context.Background(), access, "new-password")
		assertKind(t, err, KindValidation, "Invalid token for verification")
	})

	t.Run("long password", func(t *testing.T) {
		err := f.svc.ResetPassword(context.Background(), token, strings.Repeat("a", 80))
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Contains(t, err.Error(), "must be at most 72 bytes")
	})

	t.Run("token not stored", func(t *testing.T) {
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM cats WHERE \(cats.reset_token = \$1\)`).WithArgs(token).
			WillReturnRows(catRows())
		f.mock.ExpectRollback()

		err := f.svc.ResetPassword(context.Background(), token, "new-password")
		assertKind(t, err, KindValidation, "Invalid or expired token")
	})

	t.Run("stores the new hash", func(t *testing.T) {
		cat := models.Cat{UUID: uuid.New(), Name: "Tom", ResetToken: &token}

		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FROM cats WHERE \(cats.reset_token = \$1\)`).WithArgs(token).WillReturnRows(catRows(cat))
		f.mock.ExpectQuery(`UPDATE cats SET password = \$1, refresh_token = \$2, reset_token = \$3`).
			WithArgs(sqlmock.AnyArg(), nil, nil, cat.UUID).
			WillReturnRows(catRows(cat))
		f.mock.ExpectCommit()

		require.NoError(t, f.svc.ResetPassword(context.Background(), token, "new-password"))
	})

	f.done(t)
}

func TestForgotPassword(t *testing.T) {
	f := newFixture(t, fakeBreeds{})
	cat := models.Cat{UUID: uuid.New(), Name: "Tom"}

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM cats WHERE`).WithArgs("Tom").WillReturnRows(catRows(cat))
	f.mock.ExpectQuery(`UPDATE cats SET reset_token = \$1`).
		WithArgs(sqlmock.AnyArg(), cat.UUID).
		WillReturnRows(catRows(cat))
	f.mock.ExpectCommit()

	token, err := f.svc.ForgotPassword(context.Background(), " Tom ")
	require.NoError(t, err)

	name, err := f.auth.NameFromResetToken(token)
	require.NoError(t, err)
	assert.Equal(t, "Tom", name)
	f.done(t)
}

func TestCurrentCat(t *testing.T) {
	f := newFixture(t, fakeBreeds{})

	_, err := f.svc.CurrentCat(context.Background(), "garbage")
	assertKind(t, err, KindUnauthorized, "Could not validate credentials")

	token, err := f.auth.CreateAccessToken("Ghost")
	require.NoError(t, err)
	f.mock.ExpectQuery(`FROM cats WHERE`).WithArgs("Ghost").WillReturnRows(catRows())

	_, err = f.svc.CurrentCat(context.Background(), token)
	assertKind(t, err, KindUnauthorized, "Could not validate credentials")
	f.done(t)
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(&models.Cat{IsStaff: true}))
	assertKind(t, RequireAdmin(&models.Cat{}), KindForbidden, "The user doesn't have enough privileges")
	assertKind(t, RequireAdmin(nil), KindForbidden, "")
}
