package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/mapty/internal/domain/types"
)

// WorkoutsHandler serves the workout list, the form submission and
// select-to-focus.
type WorkoutsHandler struct {
	deps Dependencies
}

// NewWorkoutsHandler creates a new workouts handler.
func NewWorkoutsHandler(deps Dependencies) *WorkoutsHandler {
	return &WorkoutsHandler{deps: deps}
}

// HandleList handles GET /workouts requests.
func (h *WorkoutsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.FromRecords(h.deps.Workouts(r.Context())))
}

// HandleCreate handles POST /workouts requests.
func (h *WorkoutsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req workoutRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rec, err := h.deps.Submit(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.FromRecord(rec))
}

// HandleSelect handles POST /workouts/{id}/select requests.
func (h *WorkoutsHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.Select(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromRecord(rec))
}
