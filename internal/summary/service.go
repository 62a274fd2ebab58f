package summary

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/validation"
)

type ProductLister interface {
	List(ctx context.Context) ([]*catalog.Product, error)
}

type EntryLister interface {
	List(ctx context.Context) ([]*ledger.Entry, error)
}

type Service struct {
	products  ProductLister
	entries   EntryLister
	threshold int
	loc       *time.Location
}

func NewService(products ProductLister, entries EntryLister, threshold int, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{products: products, entries: entries, threshold: threshold, loc: loc}
}

type Dashboard struct {
	Month    string
	Totals   Totals
	Entries  []*ledger.Entry
	LowStock []*catalog.Product
	Months   []string
}

// Dashboard loads products and entries concurrently and summarizes the
// given month, or everything for AllTime.
func (s *Service) Dashboard(ctx context.Context, month string) (*Dashboard, error) {
	if err := ParseMonth(month); err != nil {
		return nil, validation.Errorf("month", "must look like 2006-01")
	}

	var (
		products []*catalog.Product
		entries  []*ledger.Entry
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		products, err = s.products.List(gctx)
		if err != nil {
			return fmt.Errorf("listing products: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		var err error

		entries, err = s.entries.List(gctx)
		if err != nil {
			return fmt.Errorf("listing entries: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	selected := FilterMonth(entries, month, s.loc)

	return &Dashboard{
		Month:    month,
		Totals:   ComputeTotals(selected),
		Entries:  selected,
		LowStock: LowStock(products, s.threshold),
		Months:   Months(entries, s.loc),
	}, nil
}

// Threshold is the configured low-stock limit.
func (s *Service) Threshold() int {
	return s.threshold
}

func (s *Service) Location() *time.Location {
	return s.loc
}
