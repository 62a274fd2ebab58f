package product

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/http/dto"
	"github.com/MrJamesThe3rd/ilara/internal/http/respond"
	"github.com/MrJamesThe3rd/ilara/internal/pos"
	"github.com/MrJamesThe3rd/ilara/internal/summary"
)

type Handler struct {
	catalog   *catalog.Service
	pos       *pos.Service
	threshold int
}

// NewHandler builds the product routes. threshold is the default for the
// low-stock listing.
func NewHandler(catalogSvc *catalog.Service, posSvc *pos.Service, threshold int) *Handler {
	return &Handler{catalog: catalogSvc, pos: posSvc, threshold: threshold}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.upsert)
	r.Get("/low-stock", h.lowStock)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.edit)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/adjustments", h.adjust)
}

type upsertRequest struct {
	Name     string           `json:"name"`
	Brand    string           `json:"brand"`
	Category string           `json:"category"`
	Quantity int              `json:"quantity"`
	Cost     *decimal.Decimal `json:"cost"`
	Price    *decimal.Decimal `json:"price"`
}

type upsertResponse struct {
	Product       dto.Product `json:"product"`
	Created       bool        `json:"created"`
	PreviousStock int         `json:"previous_stock"`
	NewStock      int         `json:"new_stock"`
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	res, err := h.catalog.Upsert(r.Context(), catalog.UpsertParams{
		Name:     req.Name,
		Brand:    req.Brand,
		Category: req.Category,
		Quantity: req.Quantity,
		Cost:     req.Cost,
		Price:    req.Price,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}

	respond.JSON(w, status, upsertResponse{
		Product:       dto.FromProduct(res.Product),
		Created:       res.Created,
		PreviousStock: res.PreviousStock,
		NewStock:      res.NewStock,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.FromProducts(products))
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold := h.threshold

	if s := r.URL.Query().Get("threshold"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respond.BadRequest(w, "threshold must be a non-negative integer")
			return
		}

		threshold = n
	}

	products, err := h.catalog.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.FromProducts(summary.LowStock(products, threshold)))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.FromProduct(p))
}

type editRequest struct {
	Name     string           `json:"name"`
	Brand    string           `json:"brand"`
	Category string           `json:"category"`
	Cost     *decimal.Decimal `json:"cost"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *int             `json:"stock,omitempty"`
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req editRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	p, err := h.catalog.Edit(r.Context(), catalog.EditParams{
		ID:       id,
		Name:     req.Name,
		Brand:    req.Brand,
		Category: req.Category,
		Cost:     req.Cost,
		Price:    req.Price,
		Stock:    req.Stock,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.FromProduct(p))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type adjustRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req adjustRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	res, err := h.pos.Adjust(r.Context(), pos.AdjustParams{
		ProductID: id,
		Delta:     req.Delta,
		Reason:    req.Reason,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, dto.StockChange{
		Entry:         dto.FromEntry(res.Entry),
		Product:       dto.FromProduct(res.Product),
		PreviousStock: res.PreviousStock,
		NewStock:      res.NewStock,
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}
