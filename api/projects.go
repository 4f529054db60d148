package api

import (
	"io"
	"net/http"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/assignments"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/portal"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/projects"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/ratings"
)

// maxPortalBody caps self-registration payloads.
const maxPortalBody = 64 << 10

type ProjectsHandler struct {
	registry    *projects.Registry
	assignments *assignments.Lifecycle
	ratings     *ratings.Aggregator
}

func NewProjectsHandler(reg *projects.Registry, lc *assignments.Lifecycle, agg *ratings.Aggregator) *ProjectsHandler {
	return &ProjectsHandler{registry: reg, assignments: lc, ratings: agg}
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.registry.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, out, http.StatusOK)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.registry.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in projects.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.registry.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, idResponse{ID: id}, http.StatusCreated)
}

func (h *ProjectsHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.assignments.ProjectAssignments(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, out, http.StatusOK)
}

// Assign handles POST /v1/projects/{id}/assignments. The path id wins over
// any project_id in the body.
func (h *ProjectsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in assignments.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.ProjectID = id
	assignmentID, err := h.assignments.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, idResponse{ID: assignmentID}, http.StatusCreated)
}

// Rate handles POST /v1/assignments/{id}/ratings.
func (h *ProjectsHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var sub ratings.Submission
	if err := decodeJSON(r, &sub); err != nil {
		writeError(w, r, err)
		return
	}
	ratingID, err := h.ratings.Submit(r.Context(), id, sub)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, struct {
		ID            int64   `json:"id"`
		RatingGeneral float64 `json:"rating_general"`
	}{ratingID, ratings.Composite(sub.Dimensions)}, http.StatusCreated)
}

type PortalHandler struct {
	portal *portal.Portal
}

func NewPortalHandler(p *portal.Portal) *PortalHandler {
	return &PortalHandler{portal: p}
}

// Register handles POST /portal/register. The raw body is checked against
// the registration schema before it is decoded.
func (h *PortalHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPortalBody+1))
	if err != nil {
		writeError(w, r, apperr.Validation("read body: %v", err))
		return
	}
	if len(body) > maxPortalBody {
		writeError(w, r, apperr.Validation("payload larger than %d bytes", maxPortalBody))
		return
	}
	id, err := h.portal.Register(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, idResponse{ID: id}, http.StatusCreated)
}

// Opportunities handles GET /portal/opportunities?distrito=.
func (h *PortalHandler) Opportunities(w http.ResponseWriter, r *http.Request) {
	out, err := h.portal.Opportunities(r.Context(), r.URL.Query().Get("distrito"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, out, http.StatusOK)
}
