// Package dto holds the JSON shapes shared by several handlers.
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
)

type Product struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Brand      string          `json:"brand"`
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	Category   string          `json:"category"`
	Stock      int             `json:"stock"`
	Cost       decimal.Decimal `json:"cost"`
	Price      decimal.Decimal `json:"price"`
	Margin     decimal.Decimal `json:"margin"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func FromProduct(p *catalog.Product) Product {
	return Product{
		ID:         p.ID,
		Name:       p.Name,
		Brand:      p.Brand,
		CategoryID: p.CategoryID,
		Category:   p.Category,
		Stock:      p.Stock,
		Cost:       p.Cost,
		Price:      p.Price,
		Margin:     p.Margin(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func FromProducts(ps []*catalog.Product) []Product {
	resp := make([]Product, len(ps))
	for i, p := range ps {
		resp[i] = FromProduct(p)
	}

	return resp
}

type SaleLink struct {
	ProductID     uuid.UUID            `json:"product_id"`
	Quantity      int                  `json:"quantity"`
	PaymentMethod ledger.PaymentMethod `json:"payment_method"`
	Note          string               `json:"note,omitempty"`
}

type Entry struct {
	ID          uuid.UUID       `json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	Kind        ledger.Kind     `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Sale        *SaleLink       `json:"sale,omitempty"`
}

func FromEntry(e *ledger.Entry) Entry {
	resp := Entry{
		ID:          e.ID,
		CreatedAt:   e.CreatedAt,
		Kind:        e.Kind,
		Description: e.Description,
		Amount:      e.Amount,
	}

	if e.Sale != nil {
		resp.Sale = &SaleLink{
			ProductID:     e.Sale.ProductID,
			Quantity:      e.Sale.Quantity,
			PaymentMethod: e.Sale.PaymentMethod,
			Note:          e.Sale.Note,
		}
	}

	return resp
}

func FromEntries(es []*ledger.Entry) []Entry {
	resp := make([]Entry, len(es))
	for i, e := range es {
		resp[i] = FromEntry(e)
	}

	return resp
}

// StockChange is returned by every operation that moves stock.
type StockChange struct {
	Entry         Entry   `json:"entry"`
	Product       Product `json:"product"`
	PreviousStock int     `json:"previous_stock"`
	NewStock      int     `json:"new_stock"`
}
