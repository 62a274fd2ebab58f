// Package pos keeps catalog stock and ledger entries consistent across
// sales, manual adjustments and reversals.
//
// Stock is changed with a single conditional update, so it can never go
// negative. The ledger write that follows is a separate statement; when it
// fails the stock change is undone. A failed undo is reported as a
// *CompensationError.
package pos

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/observability"
)

const compensationTimeout = 5 * time.Second

//go:generate mockgen -source=service.go -destination=service_mock.go -package=pos
type Inventory interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	FindByIdentity(ctx context.Context, key string) (*catalog.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

type Journal interface {
	CreateEntry(ctx context.Context, e *ledger.Entry) error
	GetEntry(ctx context.Context, id uuid.UUID) (*ledger.Entry, error)
	ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	UpdateSaleLink(ctx context.Context, id uuid.UUID, link *ledger.SaleLink) error
}

// Invalidator drops a cached read. catalog.Service and ledger.Service
// satisfy it.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Service struct {
	inventory Inventory
	journal   Journal
	metrics   *observability.Metrics
	caches    []Invalidator
}

// NewService wires the protocols to the stores. Every cache in caches is
// invalidated after a mutation. metrics may be nil.
func NewService(inventory Inventory, journal Journal, metrics *observability.Metrics, caches ...Invalidator) *Service {
	return &Service{inventory: inventory, journal: journal, metrics: metrics, caches: caches}
}

func (s *Service) invalidate(ctx context.Context) {
	for _, c := range s.caches {
		if err := c.Invalidate(ctx); err != nil {
			slog.Warn("failed to invalidate cache", "error", err)
		}
	}
}

// compensate applies delta to undo a stock change whose ledger write failed.
// It returns cause unchanged on success.
func (s *Service) compensate(ctx context.Context, operation string, productID uuid.UUID, delta int, cause error) error {
	// The caller's context may be the reason the write failed.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if _, err := s.inventory.AdjustStock(ctx, productID, delta); err != nil {
		compErr := &CompensationError{
			Operation:  operation,
			ProductID:  productID,
			Delta:      delta,
			Cause:      cause,
			Compensate: err,
		}

		slog.Error("stock compensation failed",
			"operation", operation,
			"product_id", productID,
			"delta", delta,
			"cause", cause,
			"error", err,
		)
		s.metrics.CompensationFailed(operation)

		return compErr
	}

	return cause
}
