package pos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/validation"
)

type SaleParams struct {
	ProductID uuid.UUID `validate:"required" field:"product_id"`
	Quantity  int       `validate:"gte=1,max=2147483647"`
	// Charged is the total taken from the customer. Nil means
	// DefaultCharge; any other non-negative amount is kept as is.
	Charged       *decimal.Decimal     `validate:"omitempty,gte=0"`
	PaymentMethod ledger.PaymentMethod `field:"payment_method"`
	Note          string
}

type SaleResult struct {
	Entry         *ledger.Entry
	Product       *catalog.Product
	PreviousStock int
	NewStock      int
}

// DefaultCharge is quantity times the product's unit price.
func DefaultCharge(p *catalog.Product, quantity int) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Sell takes quantity out of stock and records the income entry. Stock is
// read fresh from the store, never from a cached list.
func (s *Service) Sell(ctx context.Context, params SaleParams) (*SaleResult, error) {
	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	method, err := ledger.ParsePaymentMethod(string(params.PaymentMethod))
	if err != nil {
		return nil, validation.Errorf("payment_method", "%v", err)
	}

	p, err := s.inventory.GetProduct(ctx, params.ProductID)
	if err != nil {
		return nil, err
	}

	if p.Stock < params.Quantity {
		return nil, fmt.Errorf("%w: %d requested, %d available", catalog.ErrInsufficientStock, params.Quantity, p.Stock)
	}

	charged := DefaultCharge(p, params.Quantity)
	if params.Charged != nil {
		charged = *params.Charged
	}

	previous := p.Stock

	// A concurrent sale may have taken the stock since the read above; the
	// conditional update reports that as ErrInsufficientStock.
	newStock, err := s.inventory.AdjustStock(ctx, p.ID, -params.Quantity)
	if err != nil {
		return nil, err
	}

	note := strings.TrimSpace(params.Note)

	entry := &ledger.Entry{
		Kind: ledger.KindIncome,
		Description: ledger.FormatSaleDescription(ledger.SaleDescription{
			Quantity:      params.Quantity,
			Name:          p.Name,
			Brand:         p.Brand,
			PaymentMethod: method,
			Note:          note,
		}),
		Amount: charged,
		Sale: &ledger.SaleLink{
			ProductID:     p.ID,
			Quantity:      params.Quantity,
			PaymentMethod: method,
			Note:          note,
		},
	}

	if err := s.journal.CreateEntry(ctx, entry); err != nil {
		err = s.compensate(ctx, "sale", p.ID, params.Quantity, fmt.Errorf("recording sale: %w", err))
		s.invalidate(ctx)

		return nil, err
	}

	s.invalidate(ctx)
	s.metrics.SaleRecorded(string(method))

	p.Stock = newStock

	return &SaleResult{
		Entry:         entry,
		Product:       p,
		PreviousStock: previous,
		NewStock:      newStock,
	}, nil
}
