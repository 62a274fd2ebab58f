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

type BackfillReport struct {
	Scanned int
	Linked  []uuid.UUID
	Skipped []BackfillSkip
}

type BackfillSkip struct {
	EntryID     uuid.UUID
	Description string
	Reason      error
}

// BackfillSaleLinks writes a SaleLink on every unlinked income entry whose
// description can be parsed and whose product still exists. Once every
// entry is linked, reversals no longer depend on description parsing.
func (s *Service) BackfillSaleLinks(ctx context.Context) (*BackfillReport, error) {
	entries, err := s.journal.ListEntries(ctx, ledger.ListFilter{
		Kind:     new(ledger.KindIncome),
		Unlinked: true,
	})
	if err != nil {
		return nil, fmt.Errorf("listing unlinked sales: %w", err)
	}

	report := &BackfillReport{}

	defer func() {
		if len(report.Linked) > 0 {
			s.invalidate(ctx)
		}
	}()

	for _, e := range entries {
		if e.Sale != nil || !ledger.HasSaleMarker(e.Description) {
			continue
		}

		report.Scanned++

		skip := func(reason error) {
			report.Skipped = append(report.Skipped, BackfillSkip{EntryID: e.ID, Description: e.Description, Reason: reason})
			slog.Warn("backfill skipped entry", "entry_id", e.ID, "description", e.Description, "reason", reason)
		}

		d, err := ledger.ParseSaleDescription(e.Description)
		if err != nil {
			skip(err)
			continue
		}

		p, err := s.inventory.FindByIdentity(ctx, catalog.IdentityKey(d.Name, d.Brand))
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				skip(fmt.Errorf("no product %q by %q: %w", d.Name, d.Brand, err))
				continue
			}

			return report, err
		}

		link := &ledger.SaleLink{
			ProductID:     p.ID,
			Quantity:      d.Quantity,
			PaymentMethod: d.PaymentMethod,
			Note:          d.Note,
		}
		if err := s.journal.UpdateSaleLink(ctx, e.ID, link); err != nil {
			return report, fmt.Errorf("linking entry %s: %w", e.ID, err)
		}

		report.Linked = append(report.Linked, e.ID)
	}

	return report, nil
}
