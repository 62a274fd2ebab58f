package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/encoding"
	"github.com/MrJamesThe3rd/ilara/internal/importer/legacy"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/validation"
)

type Service struct {
	catalog Catalog
	ledger  Ledger
	loc     *time.Location
}

// NewService builds an importer. Finance dates without a zone are read in loc.
func NewService(products Catalog, entries Ledger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{catalog: products, ledger: entries, loc: loc}
}

type Result struct {
	Kind     Kind
	Charset  encoding.Charset
	Imported int
	// Created and Merged split inventory rows into new products and restocks.
	Created int
	Merged  int
	Skipped []legacy.RowError
}

// Import reads a legacy export. Rows the domain rejects are skipped and
// reported; store errors stop the import and return what was done so far.
func (s *Service) Import(ctx context.Context, kind Kind, r io.Reader) (*Result, error) {
	utf8Reader, charset, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	res := &Result{Kind: kind, Charset: charset}

	switch kind {
	case KindInventory:
		err = s.importInventory(ctx, utf8Reader, res)
	case KindFinance:
		err = s.importFinance(ctx, utf8Reader, res)
	default:
		return nil, fmt.Errorf("unknown import kind: %s", kind)
	}

	slog.Info("legacy import finished",
		"kind", kind,
		"charset", charset,
		"imported", res.Imported,
		"skipped", len(res.Skipped),
	)

	return res, err
}

func (s *Service) importInventory(ctx context.Context, r io.Reader, res *Result) error {
	rows, skipped, err := legacy.ParseInventory(r)
	if err != nil {
		return err
	}

	res.Skipped = append(res.Skipped, skipped...)

	for _, row := range rows {
		if row.Stock < 1 {
			res.Skipped = append(res.Skipped, legacy.RowError{Line: row.Line, Err: fmt.Errorf("stock %d: nothing to import", row.Stock)})
			continue
		}

		out, err := s.catalog.Upsert(ctx, catalog.UpsertParams{
			Name:     row.Name,
			Brand:    row.Brand,
			Category: row.Category,
			Quantity: row.Stock,
			Cost:     new(row.Cost),
			Price:    new(row.Price),
		})
		if err != nil {
			if validation.IsValidation(err) {
				res.Skipped = append(res.Skipped, legacy.RowError{Line: row.Line, Err: err})
				continue
			}

			return fmt.Errorf("line %d: %w", row.Line, err)
		}

		res.Imported++

		if out.Created {
			res.Created++
		} else {
			res.Merged++
		}
	}

	return nil
}

func (s *Service) importFinance(ctx context.Context, r io.Reader, res *Result) error {
	rows, skipped, err := legacy.ParseFinance(r, s.loc)
	if err != nil {
		return err
	}

	res.Skipped = append(res.Skipped, skipped...)

	for _, row := range rows {
		if _, err := s.ledger.Create(ctx, ledger.CreateParams{
			Kind:        row.Kind,
			Description: row.Description,
			Amount:      row.Amount,
			CreatedAt:   row.Date,
		}); err != nil {
			return fmt.Errorf("line %d: %w", row.Line, err)
		}

		res.Imported++
	}

	return nil
}
