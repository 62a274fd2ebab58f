package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ilara/internal/cache"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/validation"
)

func TestService_RecordExpense(t *testing.T) {
	type testCase struct {
		name      string
		params    ledger.ExpenseParams
		setupMock func(m *ledger.MockRepository)
		wantErr   error
		wantValid bool
	}

	tests := []testCase{
		{
			name:   "StoresNegativeAmount",
			params: ledger.ExpenseParams{Description: " Rent ", Amount: new(decimal.NewFromInt(150))},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
						assert.Equal(t, ledger.KindExpense, e.Kind)
						assert.Equal(t, "Rent", e.Description)
						assert.True(t, decimal.NewFromInt(-150).Equal(e.Amount))
						assert.Nil(t, e.Sale)
						e.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:      "ZeroAmount",
			params:    ledger.ExpenseParams{Description: "Rent", Amount: new(decimal.Zero)},
			wantValid: true,
		},
		{
			name:      "NegativeAmount",
			params:    ledger.ExpenseParams{Description: "Rent", Amount: new(decimal.NewFromInt(-5))},
			wantValid: true,
		},
		{
			name:      "MissingAmount",
			params:    ledger.ExpenseParams{Description: "Rent"},
			wantValid: true,
		},
		{
			name:   "RepoError",
			params: ledger.ExpenseParams{Description: "Rent", Amount: new(decimal.NewFromInt(1))},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := ledger.NewService(repo, nil)
			got, err := svc.RecordExpense(context.Background(), tt.params)

			if tt.wantValid {
				assert.True(t, validation.IsValidation(err), "expected validation error, got %v", err)
				return
			}

			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_ListCachesUntilMutation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	repo := ledger.NewMockRepository(ctrl)
	entries := cache.New[[]*ledger.Entry](cache.NewMemory(), "ledger", time.Minute)
	svc := ledger.NewService(repo, entries)

	first := &ledger.Entry{ID: uuid.New(), Kind: ledger.KindIncome, Amount: decimal.NewFromInt(40)}

	gomock.InOrder(
		repo.EXPECT().ListEntries(gomock.Any(), ledger.ListFilter{}).Return([]*ledger.Entry{first}, nil),
		repo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil),
		repo.EXPECT().ListEntries(gomock.Any(), ledger.ListFilter{}).Return([]*ledger.Entry{first, {ID: uuid.New()}}, nil),
	)

	got, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, decimal.NewFromInt(40).Equal(got[0].Amount))

	_, err = svc.List(ctx)
	require.NoError(t, err)

	_, err = svc.Create(ctx, ledger.CreateParams{Kind: ledger.KindIncome, Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)

	got, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestService_LinkSale(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo, nil)

	id := uuid.New()
	link := &ledger.SaleLink{ProductID: uuid.New(), Quantity: 2, PaymentMethod: ledger.PaymentCash}

	repo.EXPECT().UpdateSaleLink(gomock.Any(), id, link).Return(nil)
	require.NoError(t, svc.LinkSale(context.Background(), id, link))

	repo.EXPECT().UpdateSaleLink(gomock.Any(), id, link).Return(ledger.ErrNotFound)
	assert.ErrorIs(t, svc.LinkSale(context.Background(), id, link), ledger.ErrNotFound)
}

func TestEntry_IsSale(t *testing.T) {
	linked := &ledger.Entry{Kind: ledger.KindIncome, Sale: &ledger.SaleLink{Quantity: 1}}
	legacy := &ledger.Entry{Kind: ledger.KindIncome, Description: "Venta: 1x A (B)"}
	income := &ledger.Entry{Kind: ledger.KindIncome, Description: "tip"}
	expense := &ledger.Entry{Kind: ledger.KindExpense, Description: "Sale: 1x A (B)"}

	assert.True(t, linked.IsSale())
	assert.True(t, legacy.IsSale())
	assert.False(t, income.IsSale())
	assert.False(t, expense.IsSale())
}
