package api

import (
	"net/http"

	"github.com/eleven-am/spycat/internal/agency"
	"github.com/google/uuid"
)

func (h *handler) listCats(w http.ResponseWriter, r *http.Request) {
	cats, err := h.agency.ListCats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *handler) searchCats(w http.ResponseWriter, r *http.Request) {
	cats, err := h.agency.SearchCats(r.Context(), r.URL.Query().Get("search_query"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *handler) getCat(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "cat_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	cat, err := h.agency.GetCat(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *handler) updateSalary(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "cat_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		Salary *int `json:"salary"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Salary == nil {
		writeError(w, r, agency.Invalid("salary is required"))
		return
	}

	cat, err := h.agency.UpdateSalary(r.Context(), id, *body.Salary)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *handler) promoteCat(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "cat_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	cat, err := h.agency.PromoteCat(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *handler) deleteCat(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "cat_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.agency.DeleteCat(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) createMission(w http.ResponseWriter, r *http.Request) {
	var in agency.CreateMissionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	mission, err := h.agency.CreateMission(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mission)
}

func (h *handler) listMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := h.agency.ListMissions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, missions)
}

func (h *handler) getMission(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "mission_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	mission, err := h.agency.GetMission(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mission)
}

func (h *handler) assignCats(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "mission_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		CatUUIDs []uuid.UUID `json:"cat_uuids"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	mission, err := h.agency.AssignCats(r.Context(), id, body.CatUUIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mission)
}

func (h *handler) completeMission(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "mission_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	mission, err := h.agency.CompleteMission(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mission)
}

func (h *handler) deleteMission(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "mission_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.agency.DeleteMission(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) updateTarget(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "target_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in agency.TargetUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	target, err := h.agency.UpdateTarget(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (h *handler) targetNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "target_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	notes, err := h.agency.TargetNotes(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}
