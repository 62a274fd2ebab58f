package pos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
)

type RestitutionPath string

const (
	// RestitutionNone means the entry was not a sale.
	RestitutionNone       RestitutionPath = "none"
	RestitutionStructured RestitutionPath = "structured"
	RestitutionLegacy     RestitutionPath = "legacy"
	RestitutionSkipped    RestitutionPath = "skipped"
)

type Restitution struct {
	Path      RestitutionPath
	ProductID uuid.UUID
	Quantity  int
	NewStock  int
	// Warning is set when Path is RestitutionSkipped. It wraps ErrRestitution.
	Warning error
}

type ReversalResult struct {
	Entry       *ledger.Entry
	Restitution Restitution
}

// Reverse deletes a ledger entry. A sale's quantity is returned to stock
// first, from its SaleLink when present or else from its description. When
// the quantity cannot be returned the entry is deleted anyway and the
// result carries a warning.
func (s *Service) Reverse(ctx context.Context, entryID uuid.UUID) (*ReversalResult, error) {
	e, err := s.journal.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	r, err := s.restitute(ctx, e)
	if err != nil {
		return nil, err
	}

	if r.Warning != nil {
		slog.Warn("reversed entry without restoring stock",
			"entry_id", e.ID,
			"description", e.Description,
			"error", r.Warning,
		)
	}

	if err := s.journal.DeleteEntry(ctx, e.ID); err != nil {
		err = fmt.Errorf("deleting entry: %w", err)
		if r.Path == RestitutionStructured || r.Path == RestitutionLegacy {
			err = s.compensate(ctx, "reversal", r.ProductID, -r.Quantity, err)
		}

		s.invalidate(ctx)

		return nil, err
	}

	s.invalidate(ctx)
	s.metrics.EntryReversed(string(r.Path))

	return &ReversalResult{Entry: e, Restitution: r}, nil
}

// restitute returns a non-nil error only for store failures, before
// anything was changed. Missing products and unreadable descriptions are
// warnings.
func (s *Service) restitute(ctx context.Context, e *ledger.Entry) (Restitution, error) {
	if e.Kind != ledger.KindIncome {
		return Restitution{Path: RestitutionNone}, nil
	}

	if e.Sale != nil {
		return s.restock(ctx, RestitutionStructured, e.Sale.ProductID, e.Sale.Quantity)
	}

	if !ledger.HasSaleMarker(e.Description) {
		return Restitution{Path: RestitutionNone}, nil
	}

	d, err := ledger.ParseSaleDescription(e.Description)
	if err != nil {
		return skipped(uuid.Nil, 0, err), nil
	}

	p, err := s.inventory.FindByIdentity(ctx, catalog.IdentityKey(d.Name, d.Brand))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return skipped(uuid.Nil, d.Quantity, fmt.Errorf("no product %q by %q: %w", d.Name, d.Brand, err)), nil
		}

		return Restitution{}, err
	}

	return s.restock(ctx, RestitutionLegacy, p.ID, d.Quantity)
}

func (s *Service) restock(ctx context.Context, path RestitutionPath, productID uuid.UUID, qty int) (Restitution, error) {
	if qty <= 0 {
		return skipped(productID, qty, fmt.Errorf("quantity %d", qty)), nil
	}

	stock, err := s.inventory.AdjustStock(ctx, productID, qty)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return skipped(productID, qty, err), nil
		}

		return Restitution{}, err
	}

	return Restitution{Path: path, ProductID: productID, Quantity: qty, NewStock: stock}, nil
}

func skipped(productID uuid.UUID, qty int, cause error) Restitution {
	return Restitution{
		Path:      RestitutionSkipped,
		ProductID: productID,
		Quantity:  qty,
		Warning:   fmt.Errorf("%w: %w", ErrRestitution, cause),
	}
}
