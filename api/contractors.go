package api

import (
	"net/http"
	"strconv"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/assignments"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/directory"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/ratings"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
)

type ContractorsHandler struct {
	dir         *directory.Directory
	ratings     *ratings.Aggregator
	assignments *assignments.Lifecycle
}

func NewContractorsHandler(dir *directory.Directory, agg *ratings.Aggregator, lc *assignments.Lifecycle) *ContractorsHandler {
	return &ContractorsHandler{dir: dir, ratings: agg, assignments: lc}
}

type availabilityRequest struct {
	Disponible *bool `json:"disponible"`
}

type contactRequest struct {
	Tipo  string `json:"tipo"`
	Notas string `json:"notas"`
}

type recomputeResponse struct {
	ID             int64   `json:"id"`
	RatingPromedio float64 `json:"rating_promedio"`
	Updated        bool    `json:"updated"`
}

// List handles GET /v1/contractors?search=&skill=&distrito=&disponible=.
func (h *ContractorsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	available, err := queryBool(r, "disponible")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.dir.List(r.Context(), models.ContractorFilter{
		Search:    q.Get("search"),
		Skill:     q.Get("skill"),
		District:  q.Get("distrito"),
		Available: available,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, out, http.StatusOK)
}

func (h *ContractorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.dir.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, c, http.StatusOK)
}

func (h *ContractorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in directory.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.dir.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, idResponse{ID: id}, http.StatusCreated)
}

func (h *ContractorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in directory.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.dir.Update(r.Context(), id, in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.dir.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, c, http.StatusOK)
}

func (h *ContractorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.dir.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContractorsHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req availabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Disponible == nil {
		writeError(w, r, apperr.FieldErrors{"disponible": "is required"})
		return
	}
	if err := h.dir.SetAvailability(r.Context(), id, *req.Disponible); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.dir.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, c, http.StatusOK)
}

func (h *ContractorsHandler) LogContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entryID, err := h.dir.LogContact(r.Context(), id, req.Tipo, req.Notas)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, idResponse{ID: entryID}, http.StatusCreated)
}

// Contacts handles GET /v1/contractors/{id}/contacts?limit=.
func (h *ContractorsHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, r, apperr.FieldErrors{"limit": "must be a non-negative integer"})
			return
		}
	}
	out, err := h.dir.ContactHistory(r.Context(), id, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, out, http.StatusOK)
}

func (h *ContractorsHandler) Ratings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.dir.Ratings(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, out, http.StatusOK)
}

func (h *ContractorsHandler) Projects(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.assignments.ContractorProjects(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, out, http.StatusOK)
}

func (h *ContractorsHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	avg, updated, err := h.ratings.Recompute(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, recomputeResponse{ID: id, RatingPromedio: avg, Updated: updated}, http.StatusOK)
}

func (h *ContractorsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.dir.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, st, http.StatusOK)
}

func (h *ContractorsHandler) Districts(w http.ResponseWriter, r *http.Request) {
	out, err := h.dir.Districts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, out, http.StatusOK)
}
