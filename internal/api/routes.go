// Package api exposes the agency over JSON HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/eleven-am/spycat/internal/agency"
	"github.com/eleven-am/spycat/internal/models"
	"github.com/google/uuid"
)

// Agency is the service surface the handlers call.
type Agency interface {
	Signup(ctx context.Context, in agency.SignupInput) (*models.Cat, error)
	Login(ctx context.Context, name, password string) (*agency.TokenPair, error)
	Refresh(ctx context.Context, token string) (*agency.TokenPair, error)
	Logout(ctx context.Context, cat *models.Cat) error
	ForgotPassword(ctx context.Context, name string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	CurrentCat(ctx context.Context, token string) (*models.Cat, error)

	ListCats(ctx context.Context) ([]models.Cat, error)
	SearchCats(ctx context.Context, query string) ([]models.Cat, error)
	GetCat(ctx context.Context, id uuid.UUID) (*models.Cat, error)
	UpdateSalary(ctx context.Context, id uuid.UUID, salary int) (*models.Cat, error)
	PromoteCat(ctx context.Context, id uuid.UUID) (*models.Cat, error)
	DeleteCat(ctx context.Context, id uuid.UUID) error
	CatMission(ctx context.Context, cat *models.Cat) (*models.MissionDetails, error)

	CreateMission(ctx context.Context, in agency.CreateMissionInput) (*models.MissionDetails, error)
	ListMissions(ctx context.Context) ([]models.MissionDetails, error)
	GetMission(ctx context.Context, id uuid.UUID) (*models.MissionDetails, error)
	AssignCats(ctx context.Context, id uuid.UUID, catIDs []uuid.UUID) (*models.MissionDetails, error)
	CompleteMission(ctx context.Context, id uuid.UUID) (*models.MissionDetails, error)
	DeleteMission(ctx context.Context, id uuid.UUID) error

	AssignTarget(ctx context.Context, cat *models.Cat, targetID uuid.UUID) (*models.Target, error)
	GetTarget(ctx context.Context, cat *models.Cat, targetID uuid.UUID) (*models.Target, error)
	ListTargets(ctx context.Context, cat *models.Cat) ([]models.Target, error)
	CompleteTarget(ctx context.Context, cat *models.Cat, targetID uuid.UUID) (*models.Target, error)
	UpdateTarget(ctx context.Context, targetID uuid.UUID, in agency.TargetUpdate) (*models.Target, error)
	TargetNotes(ctx context.Context, targetID uuid.UUID) ([]models.Note, error)

	CreateNote(ctx context.Context, cat *models.Cat, targetID uuid.UUID, content string) (*models.Note, error)
	ListNotes(ctx context.Context, cat *models.Cat) ([]models.Note, error)
	UpdateNote(ctx context.Context, cat *models.Cat, noteID uuid.UUID, content string) (*models.Note, error)

	Ping(ctx context.Context) error
}

var _ Agency = (*agency.Service)(nil)

type handler struct {
	agency Agency
}

// NewHandler builds the routed, middleware-wrapped API handler.
func NewHandler(svc Agency) http.Handler {
	h := &handler{agency: svc}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthchecker", h.health)

	// Auth
	mux.HandleFunc("POST /api/auth/signup", h.signup)
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("GET /api/auth/refresh_token", h.refresh)
	mux.HandleFunc("POST /api/auth/logout", h.authenticated(h.logout))
	mux.HandleFunc("POST /api/auth/forgot_password", h.forgotPassword)
	mux.HandleFunc("POST /api/auth/reset_password/{token}", h.resetPassword)

	// Cats
	mux.HandleFunc("GET /api/cats/me", h.authenticated(h.me))
	mux.HandleFunc("GET /api/cats/mission", h.authenticated(h.myMission))
	mux.HandleFunc("GET /api/cats/targets", h.authenticated(h.myTargets))
	mux.HandleFunc("GET /api/cats/target/{target_id}", h.authenticated(h.myTarget))
	mux.HandleFunc("PUT /api/cats/target/{first}/{second}", h.authenticated(h.targetAction))
	mux.HandleFunc("POST /api/cats/target-note/{target_id}", h.authenticated(h.createNote))
	mux.HandleFunc("GET /api/cats/notes", h.authenticated(h.myNotes))
	mux.HandleFunc("PUT /api/cats/note/{note_id}", h.authenticated(h.updateNote))

	// Admin
	mux.HandleFunc("GET /api/admin/cats", h.admin(h.listCats))
	mux.HandleFunc("GET /api/admin/cats/name", h.admin(h.searchCats))
	mux.HandleFunc("GET /api/admin/cats/{cat_id}", h.admin(h.getCat))
	mux.HandleFunc("PUT /api/admin/cats/{cat_id}/salary", h.admin(h.updateSalary))
	mux.HandleFunc("PUT /api/admin/cats/{cat_id}/promote", h.admin(h.promoteCat))
	mux.HandleFunc("DELETE /api/admin/cats/{cat_id}", h.admin(h.deleteCat))
	mux.HandleFunc("POST /api/admin/mission", h.admin(h.createMission))
	mux.HandleFunc("GET /api/admin/missions", h.admin(h.listMissions))
	mux.HandleFunc("GET /api/admin/mission/{mission_id}", h.admin(h.getMission))
	mux.HandleFunc("PUT /api/admin/mission/{mission_id}/assign", h.admin(h.assignCats))
	mux.HandleFunc("PUT /api/admin/mission/{mission_id}/complete", h.admin(h.completeMission))
	mux.HandleFunc("DELETE /api/admin/mission/{mission_id}", h.admin(h.deleteMission))
	mux.HandleFunc("PUT /api/admin/target/{target_id}", h.admin(h.updateTarget))
	mux.HandleFunc("GET /api/admin/target/{target_id}/notes", h.admin(h.targetNotes))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})

	return requestLogger(recoverer(cors(mux)))
}
