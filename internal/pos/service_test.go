package pos_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/observability"
	"github.com/MrJamesThe3rd/ilara/internal/pos"
)

func TestService_SellCompensation(t *testing.T) {
	productID := uuid.New()
	product := func() *catalog.Product {
		return &catalog.Product{ID: productID, Name: "Lipstick", Brand: "Acme", Stock: 5, Price: decimal.NewFromInt(20)}
	}

	ledgerErr := errors.New("ledger unavailable")
	stockErr := errors.New("catalog unavailable")

	type testCase struct {
		name      string
		setupMock func(inv *pos.MockInventory, j *pos.MockJournal, c *pos.MockInvalidator)
		check     func(t *testing.T, err error)
	}

	tests := []testCase{
		{
			name: "CompensationSucceeds",
			setupMock: func(inv *pos.MockInventory, j *pos.MockJournal, c *pos.MockInvalidator) {
				gomock.InOrder(
					inv.EXPECT().GetProduct(gomock.Any(), productID).Return(product(), nil),
					inv.EXPECT().AdjustStock(gomock.Any(), productID, -2).Return(3, nil),
					j.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(ledgerErr),
					inv.EXPECT().AdjustStock(gomock.Any(), productID, 2).Return(5, nil),
				)
				c.EXPECT().Invalidate(gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ledgerErr)

				var compErr *pos.CompensationError
				assert.False(t, errors.As(err, &compErr))
			},
		},
		{
			name: "CompensationFails",
			setupMock: func(inv *pos.MockInventory, j *pos.MockJournal, c *pos.MockInvalidator) {
				gomock.InOrder(
					inv.EXPECT().GetProduct(gomock.Any(), productID).Return(product(), nil),
					inv.EXPECT().AdjustStock(gomock.Any(), productID, -2).Return(3, nil),
					j.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(ledgerErr),
					inv.EXPECT().AdjustStock(gomock.Any(), productID, 2).Return(0, stockErr),
				)
				c.EXPECT().Invalidate(gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, pos.ErrCompensationFailed)
				assert.ErrorIs(t, err, ledgerErr)
				assert.ErrorIs(t, err, stockErr)

				var compErr *pos.CompensationError
				require.True(t, errors.As(err, &compErr))
				assert.Equal(t, "sale", compErr.Operation)
				assert.Equal(t, productID, compErr.ProductID)
				assert.Equal(t, 2, compErr.Delta)
			},
		},
		{
			name: "LostRaceOnConditionalUpdate",
			setupMock: func(inv *pos.MockInventory, j *pos.MockJournal, c *pos.MockInvalidator) {
				gomock.InOrder(
					inv.EXPECT().GetProduct(gomock.Any(), productID).Return(product(), nil),
					inv.EXPECT().AdjustStock(gomock.Any(), productID, -2).Return(0, catalog.ErrInsufficientStock),
				)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, catalog.ErrInsufficientStock)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			inv := pos.NewMockInventory(ctrl)
			journal := pos.NewMockJournal(ctrl)
			caches := pos.NewMockInvalidator(ctrl)
			tt.setupMock(inv, journal, caches)

			svc := pos.NewService(inv, journal, observability.NewMetrics(), caches)
			got, err := svc.Sell(context.Background(), pos.SaleParams{ProductID: productID, Quantity: 2})

			require.Error(t, err)
			assert.Nil(t, got)
			tt.check(t, err)
		})
	}
}

func TestService_AdjustMapsLostRaceToNegativeStock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	productID := uuid.New()
	inv := pos.NewMockInventory(ctrl)
	journal := pos.NewMockJournal(ctrl)

	gomock.InOrder(
		inv.EXPECT().GetProduct(gomock.Any(), productID).Return(&catalog.Product{ID: productID, Stock: 3}, nil),
		inv.EXPECT().AdjustStock(gomock.Any(), productID, -3).Return(0, catalog.ErrInsufficientStock),
	)

	svc := pos.NewService(inv, journal, nil)
	_, err := svc.Adjust(context.Background(), pos.AdjustParams{ProductID: productID, Delta: -3, Reason: "broken"})
	assert.ErrorIs(t, err, catalog.ErrNegativeStock)
}

func TestService_ReverseStoreErrorChangesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entryID := uuid.New()
	dbErr := errors.New("connection reset")
	inv := pos.NewMockInventory(ctrl)
	journal := pos.NewMockJournal(ctrl)

	gomock.InOrder(
		journal.EXPECT().GetEntry(gomock.Any(), entryID).Return(&ledger.Entry{
			ID: entryID, Kind: ledger.KindIncome, Description: "Sale: 1x Lipstick (Acme)",
		}, nil),
		inv.EXPECT().FindByIdentity(gomock.Any(), "lipstick_acme").Return(nil, dbErr),
	)

	svc := pos.NewService(inv, journal, nil)
	_, err := svc.Reverse(context.Background(), entryID)
	assert.ErrorIs(t, err, dbErr)
}

func TestService_BackfillSaleLinks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	productID := uuid.New()
	linkable := &ledger.Entry{ID: uuid.New(), Kind: ledger.KindIncome, Description: "Sale: 2x Lipstick (Acme) | Pay: Card | Note: promo"}
	legacy := &ledger.Entry{ID: uuid.New(), Kind: ledger.KindIncome, Description: "Venta: 1x Rubor (Nadie)"}
	broken := &ledger.Entry{ID: uuid.New(), Kind: ledger.KindIncome, Description: "Sale: ?x Lipstick"}
	tip := &ledger.Entry{ID: uuid.New(), Kind: ledger.KindIncome, Description: "tip jar"}

	inv := pos.NewMockInventory(ctrl)
	journal := pos.NewMockJournal(ctrl)
	caches := pos.NewMockInvalidator(ctrl)

	journal.EXPECT().
		ListEntries(gomock.Any(), ledger.ListFilter{Kind: new(ledger.KindIncome), Unlinked: true}).
		Return([]*ledger.Entry{linkable, legacy, broken, tip}, nil)
	inv.EXPECT().FindByIdentity(gomock.Any(), "lipstick_acme").Return(&catalog.Product{ID: productID}, nil)
	inv.EXPECT().FindByIdentity(gomock.Any(), "rubor_nadie").Return(nil, catalog.ErrNotFound)
	journal.EXPECT().UpdateSaleLink(gomock.Any(), linkable.ID, &ledger.SaleLink{
		ProductID:     productID,
		Quantity:      2,
		PaymentMethod: ledger.PaymentCard,
		Note:          "promo",
	}).Return(nil)
	caches.EXPECT().Invalidate(gomock.Any()).Return(nil)

	svc := pos.NewService(inv, journal, nil, caches)
	report, err := svc.BackfillSaleLinks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, []uuid.UUID{linkable.ID}, report.Linked)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, legacy.ID, report.Skipped[0].EntryID)
	assert.ErrorIs(t, report.Skipped[0].Reason, catalog.ErrNotFound)
	assert.Equal(t, broken.ID, report.Skipped[1].EntryID)
	assert.ErrorIs(t, report.Skipped[1].Reason, ledger.ErrUnparseable)
}
