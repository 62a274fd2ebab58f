package ledger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ilara/internal/http/dto"
	"github.com/MrJamesThe3rd/ilara/internal/http/respond"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/pos"
	"github.com/MrJamesThe3rd/ilara/internal/summary"
)

type Handler struct {
	ledger *ledger.Service
	pos    *pos.Service
	loc    *time.Location
}

// NewHandler builds the ledger routes. loc decides which month an entry
// falls in.
func NewHandler(ledgerSvc *ledger.Service, posSvc *pos.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}

	return &Handler{ledger: ledgerSvc, pos: posSvc, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/expenses", h.recordExpense)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.reverse)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if err := summary.ParseMonth(month); err != nil {
		respond.BadRequest(w, "month must look like 2006-01")
		return
	}

	entries, err := h.ledger.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.FromEntries(summary.FilterMonth(entries, month, h.loc)))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	e, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.FromEntry(e))
}

type expenseRequest struct {
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
}

func (h *Handler) recordExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	e, err := h.ledger.RecordExpense(r.Context(), ledger.ExpenseParams{
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, dto.FromEntry(e))
}

type restitutionResponse struct {
	Path      pos.RestitutionPath `json:"path"`
	ProductID *uuid.UUID          `json:"product_id,omitempty"`
	Quantity  int                 `json:"quantity,omitempty"`
	NewStock  *int                `json:"new_stock,omitempty"`
	Warning   string              `json:"warning,omitempty"`
}

type reversalResponse struct {
	Entry       dto.Entry           `json:"entry"`
	Restitution restitutionResponse `json:"restitution"`
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	res, err := h.pos.Reverse(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, reversalResponse{
		Entry:       dto.FromEntry(res.Entry),
		Restitution: toRestitution(res.Restitution),
	})
}

func toRestitution(r pos.Restitution) restitutionResponse {
	resp := restitutionResponse{Path: r.Path, Quantity: r.Quantity}

	if r.ProductID != uuid.Nil {
		resp.ProductID = new(r.ProductID)
	}

	switch r.Path {
	case pos.RestitutionStructured, pos.RestitutionLegacy:
		resp.NewStock = new(r.NewStock)
	case pos.RestitutionSkipped:
		if r.Warning != nil {
			resp.Warning = r.Warning.Error()
		}
	}

	return resp
}
