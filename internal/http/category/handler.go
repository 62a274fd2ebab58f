package category

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/http/respond"
)

type Handler struct {
	svc *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Patch("/{id}", h.rename)
	r.Delete("/{id}", h.delete)
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type listResponse struct {
	Categories []categoryResponse `json:"categories"`
	// Allowed is what product forms accept: the stored names, or the
	// configured defaults while none are stored.
	Allowed []string `json:"allowed"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	stored, err := h.svc.ListCategories(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	allowed, err := h.svc.Categories(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := listResponse{Categories: make([]categoryResponse, len(stored)), Allowed: allowed}
	for i, c := range stored {
		resp.Categories[i] = toResponse(c)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	c, err := h.svc.CreateCategory(r.Context(), req.Name)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	var req nameRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	if err := h.svc.RenameCategory(r.Context(), id, req.Name); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toResponse(c *catalog.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}
