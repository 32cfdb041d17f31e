package api

import (
	"net/http"
)

type noteBody struct {
	Content string `json:"content"`
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentCat(r).Profile())
}

func (h *handler) myMission(w http.ResponseWriter, r *http.Request) {
	mission, err := h.agency.CatMission(r.Context(), currentCat(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mission)
}

func (h *handler) myTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := h.agency.ListTargets(r.Context(), currentCat(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

func (h *handler) myTarget(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "target_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	target, err := h.agency.GetTarget(r.Context(), currentCat(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

// targetAction serves PUT /api/cats/target/{id}/assign and
// PUT /api/cats/target/complete/{id}, which share one mux pattern.
func (h *handler) targetAction(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	switch {
	case first == "complete":
		h.completeTarget(w, r, second)
	case second == "assign":
		h.assignTarget(w, r, first)
	default:
		writeDetail(w, http.StatusNotFound, "Not Found")
	}
}

func (h *handler) assignTarget(w http.ResponseWriter, r *http.Request, raw string) {
	id, err := parseUUID("target_id", raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	target, err := h.agency.AssignTarget(r.Context(), currentCat(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (h *handler) completeTarget(w http.ResponseWriter, r *http.Request, raw string) {
	id, err := parseUUID("target_id", raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	target, err := h.agency.CompleteTarget(r.Context(), currentCat(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (h *handler) createNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "target_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body noteBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	note, err := h.agency.CreateNote(r.Context(), currentCat(r), id, body.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *handler) myNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.agency.ListNotes(r.Context(), currentCat(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *handler) updateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "note_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body noteBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	note, err := h.agency.UpdateNote(r.Context(), currentCat(r), id, body.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}
