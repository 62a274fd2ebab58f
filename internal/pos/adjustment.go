package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/validation"
)

// Stock is stored as a 32-bit integer, so Delta is bounded to that range.
type AdjustParams struct {
	ProductID uuid.UUID `validate:"required" field:"product_id"`
	Delta     int       `validate:"ne=0,min=-2147483647,max=2147483647"`
	Reason    string    `validate:"required"`
}

type AdjustResult struct {
	Entry         *ledger.Entry
	Product       *catalog.Product
	PreviousStock int
	NewStock      int
}

// Adjust corrects stock by delta outside a sale and records why in a
// zero-amount Adjustment entry.
func (s *Service) Adjust(ctx context.Context, params AdjustParams) (*AdjustResult, error) {
	params.Reason = strings.TrimSpace(params.Reason)

	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	p, err := s.inventory.GetProduct(ctx, params.ProductID)
	if err != nil {
		return nil, err
	}

	if p.Stock+params.Delta < 0 {
		return nil, fmt.Errorf("%w: %d in stock, adjusting by %d", catalog.ErrNegativeStock, p.Stock, params.Delta)
	}

	previous := p.Stock

	newStock, err := s.inventory.AdjustStock(ctx, p.ID, params.Delta)
	if err != nil {
		if errors.Is(err, catalog.ErrInsufficientStock) {
			return nil, catalog.ErrNegativeStock
		}

		return nil, err
	}

	entry := &ledger.Entry{
		Kind:        ledger.KindAdjustment,
		Description: ledger.FormatAdjustmentDescription(params.Delta, p.Name, p.Brand, params.Reason),
		Amount:      decimal.Zero,
	}

	if err := s.journal.CreateEntry(ctx, entry); err != nil {
		err = s.compensate(ctx, "adjustment", p.ID, -params.Delta, fmt.Errorf("recording adjustment: %w", err))
		s.invalidate(ctx)

		return nil, err
	}

	s.invalidate(ctx)
	s.metrics.StockAdjusted(params.Delta)

	p.Stock = newStock

	return &AdjustResult{
		Entry:         entry,
		Product:       p,
		PreviousStock: previous,
		NewStock:      newStock,
	}, nil
}
