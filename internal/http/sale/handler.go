package sale

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ilara/internal/http/dto"
	"github.com/MrJamesThe3rd/ilara/internal/http/respond"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/pos"
)

type Handler struct {
	svc *pos.Service
}

func NewHandler(svc *pos.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.sell)
}

type sellRequest struct {
	ProductID     uuid.UUID        `json:"product_id"`
	Quantity      int              `json:"quantity"`
	Charged       *decimal.Decimal `json:"charged,omitempty"`
	PaymentMethod string           `json:"payment_method"`
	Note          string           `json:"note"`
}

func (h *Handler) sell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	res, err := h.svc.Sell(r.Context(), pos.SaleParams{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		Charged:       req.Charged,
		PaymentMethod: ledger.PaymentMethod(req.PaymentMethod),
		Note:          req.Note,
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
