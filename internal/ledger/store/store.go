package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ilara/internal/database"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
)

type Store struct {
	db database.DBTX
}

func New(db database.DBTX) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, created_at, kind, description, amount, product_id, quantity, payment_method, note
func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var kind string

	var productID uuid.NullUUID

	var quantity sql.NullInt64

	var method, note sql.NullString

	if err := s.Scan(
		&e.ID, &e.CreatedAt, &kind, &e.Description, &e.Amount,
		&productID, &quantity, &method, &note,
	); err != nil {
		return nil, err
	}

	e.Kind = ledger.Kind(kind)

	if productID.Valid {
		e.Sale = &ledger.SaleLink{
			ProductID:     productID.UUID,
			Quantity:      int(quantity.Int64),
			PaymentMethod: ledger.PaymentMethod(method.String),
			Note:          note.String,
		}
	}

	return &e, nil
}

const selectEntryColumns = `
	id, created_at, kind, description, amount, product_id, quantity, payment_method, note
`

// linkArgs flattens an optional link into the four nullable columns.
func linkArgs(link *ledger.SaleLink) (productID uuid.NullUUID, quantity sql.NullInt64, method, note sql.NullString) {
	if link == nil {
		return
	}

	productID = uuid.NullUUID{UUID: link.ProductID, Valid: true}
	quantity = sql.NullInt64{Int64: int64(link.Quantity), Valid: true}
	method = sql.NullString{String: string(link.PaymentMethod), Valid: link.PaymentMethod != ""}
	note = sql.NullString{String: link.Note, Valid: link.Note != ""}

	return
}

func (s *Store) CreateEntry(ctx context.Context, e *ledger.Entry) error {
	query := `
		INSERT INTO ledger (created_at, kind, description, amount, product_id, quantity, payment_method, note)
		VALUES (COALESCE($1, NOW()), $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	createdAt := sql.NullTime{Time: e.CreatedAt, Valid: !e.CreatedAt.IsZero()}
	productID, quantity, method, note := linkArgs(e.Sale)

	err := s.db.QueryRowContext(ctx, query,
		createdAt,
		e.Kind,
		e.Description,
		e.Amount,
		productID,
		quantity,
		method,
		note,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating ledger entry: %w", err)
	}

	return nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger WHERE id = $1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting ledger entry: %w", err)
	}

	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argIdx)

		args = append(args, *filter.Kind)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND created_at < $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	if filter.Unlinked {
		query += " AND product_id IS NULL"
	}

	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []*ledger.Entry{}

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger rows: %w", err)
	}

	return entries, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ledger WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting ledger entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func (s *Store) UpdateSaleLink(ctx context.Context, id uuid.UUID, link *ledger.SaleLink) error {
	query := `
		UPDATE ledger
		SET product_id = $1, quantity = $2, payment_method = $3, note = $4
		WHERE id = $5
	`

	productID, quantity, method, note := linkArgs(link)

	res, err := s.db.ExecContext(ctx, query, productID, quantity, method, note, id)
	if err != nil {
		return fmt.Errorf("updating sale link: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}
