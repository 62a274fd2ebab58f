package ledger

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ilara/internal/cache"
	"github.com/MrJamesThe3rd/ilara/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	UpdateSaleLink(ctx context.Context, id uuid.UUID, link *SaleLink) error
}

type ListFilter struct {
	Kind      *Kind
	StartDate *time.Time
	EndDate   *time.Time
	// Unlinked keeps only entries without a SaleLink.
	Unlinked bool
}

type Service struct {
	repo    Repository
	entries *cache.Cache[[]*Entry]
}

// NewService builds a ledger service. entries may be nil to disable caching.
func NewService(repo Repository, entries *cache.Cache[[]*Entry]) *Service {
	return &Service{repo: repo, entries: entries}
}

type CreateParams struct {
	Kind        Kind
	Description string
	Amount      decimal.Decimal
	Sale        *SaleLink
	// CreatedAt is kept when set, used by imports. Zero means now.
	CreatedAt time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Entry, error) {
	e := &Entry{
		Kind:        params.Kind,
		Description: params.Description,
		Amount:      params.Amount,
		Sale:        params.Sale,
		CreatedAt:   params.CreatedAt,
	}
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	return e, nil
}

type ExpenseParams struct {
	Description string
	Amount      *decimal.Decimal `validate:"required,gt=0"`
}

// RecordExpense stores the magnitude as a negative amount.
func (s *Service) RecordExpense(ctx context.Context, params ExpenseParams) (*Entry, error) {
	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	return s.Create(ctx, CreateParams{
		Kind:        KindExpense,
		Description: strings.TrimSpace(params.Description),
		Amount:      params.Amount.Neg(),
	})
}

// Get always reads the store.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// List returns every entry, oldest first, possibly from cache.
func (s *Service) List(ctx context.Context) ([]*Entry, error) {
	return s.entries.GetOrLoad(ctx, func(ctx context.Context) ([]*Entry, error) {
		return s.repo.ListEntries(ctx, ListFilter{})
	})
}

// Find bypasses the cache.
func (s *Service) Find(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)

	return nil
}

func (s *Service) LinkSale(ctx context.Context, id uuid.UUID, link *SaleLink) error {
	if err := s.repo.UpdateSaleLink(ctx, id, link); err != nil {
		return err
	}

	s.invalidate(ctx)

	return nil
}

func (s *Service) Invalidate(ctx context.Context) error {
	return s.entries.Invalidate(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate ledger cache", "error", err)
	}
}
