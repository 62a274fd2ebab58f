package summary

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ilara/internal/http/dto"
	"github.com/MrJamesThe3rd/ilara/internal/http/respond"
	"github.com/MrJamesThe3rd/ilara/internal/summary"
)

type Handler struct {
	svc *summary.Service
}

func NewHandler(svc *summary.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.dashboard)
}

type totalsResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type dashboardResponse struct {
	Month     string         `json:"month,omitempty"`
	Totals    totalsResponse `json:"totals"`
	Entries   []dto.Entry    `json:"entries"`
	LowStock  []dto.Product  `json:"low_stock"`
	Threshold int            `json:"low_stock_threshold"`
	Months    []string       `json:"months"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	months := d.Months
	if months == nil {
		months = []string{}
	}

	respond.JSON(w, http.StatusOK, dashboardResponse{
		Month: d.Month,
		Totals: totalsResponse{
			Income:  d.Totals.Income,
			Expense: d.Totals.Expense,
			Net:     d.Totals.Net,
		},
		Entries:   dto.FromEntries(d.Entries),
		LowStock:  dto.FromProducts(d.LowStock),
		Threshold: h.svc.Threshold(),
		Months:    months,
	})
}
