package summary_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/summary"
	"github.com/MrJamesThe3rd/ilara/internal/validation"
)

func entry(amount int64, at time.Time) *ledger.Entry {
	return &ledger.Entry{Amount: decimal.NewFromInt(amount), CreatedAt: at}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name    string
		entries []*ledger.Entry
		income  int64
		expense int64
		net     int64
	}{
		{name: "Empty"},
		{
			name:    "MixedWithAdjustment",
			entries: []*ledger.Entry{entry(50, time.Time{}), entry(-20, time.Time{}), entry(0, time.Time{}), entry(30, time.Time{})},
			income:  80,
			expense: -20,
			net:     60,
		},
		{
			name:    "OnlyExpenses",
			entries: []*ledger.Entry{entry(-5, time.Time{}), entry(-7, time.Time{})},
			expense: -12,
			net:     -12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summary.ComputeTotals(tt.entries)

			assert.True(t, decimal.NewFromInt(tt.income).Equal(got.Income), "income %s", got.Income)
			assert.True(t, decimal.NewFromInt(tt.expense).Equal(got.Expense), "expense %s", got.Expense)
			assert.True(t, decimal.NewFromInt(tt.net).Equal(got.Net), "net %s", got.Net)
			assert.True(t, got.Net.Equal(got.Income.Add(got.Expense)))
		})
	}
}

func TestLowStock(t *testing.T) {
	products := []*catalog.Product{
		{Name: "Toner", Stock: 3},
		{Name: "Blush", Stock: 10},
		{Name: "Mascara", Stock: 0},
		{Name: "Balm", Stock: 3},
		{Name: "Liner", Stock: 4},
	}

	got := summary.LowStock(products, 3)

	names := make([]string, len(got))
	for i, p := range got {
		names[i] = p.Name
	}

	assert.Equal(t, []string{"Mascara", "Balm", "Toner"}, names)
	assert.Empty(t, summary.LowStock(products, -1))
}

func TestMonths(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)

	entries := []*ledger.Entry{
		entry(1, date(2025, time.March, 10)),
		entry(1, date(2025, time.January, 5)),
		entry(1, date(2024, time.December, 31)),
		entry(1, date(2025, time.March, 20)),
		// 01:00 UTC on Feb 1 is still January in Buenos Aires.
		entry(1, time.Date(2025, time.February, 1, 1, 0, 0, 0, time.UTC)),
	}

	assert.Equal(t, []string{"2025-03", "2025-01", "2024-12"}, summary.Months(entries, loc))
	assert.Equal(t, []string{"2025-03", "2025-02", "2025-01", "2024-12"}, summary.Months(entries, time.UTC))
}

func TestFilterMonth(t *testing.T) {
	entries := []*ledger.Entry{
		entry(10, date(2025, time.March, 10)),
		entry(-4, date(2025, time.April, 1)),
		entry(6, date(2025, time.March, 31)),
	}

	assert.Len(t, summary.FilterMonth(entries, summary.AllTime, time.UTC), 3)
	assert.Len(t, summary.FilterMonth(entries, "2025-03", time.UTC), 2)
	assert.Empty(t, summary.FilterMonth(entries, "2024-03", time.UTC))
}

type productsFunc func(ctx context.Context) ([]*catalog.Product, error)

func (f productsFunc) List(ctx context.Context) ([]*catalog.Product, error) { return f(ctx) }

type entriesFunc func(ctx context.Context) ([]*ledger.Entry, error)

func (f entriesFunc) List(ctx context.Context) ([]*ledger.Entry, error) { return f(ctx) }

func TestService_Dashboard(t *testing.T) {
	products := productsFunc(func(context.Context) ([]*catalog.Product, error) {
		return []*catalog.Product{{Name: "Lipstick", Stock: 2}, {Name: "Blush", Stock: 9}}, nil
	})
	entries := entriesFunc(func(context.Context) ([]*ledger.Entry, error) {
		return []*ledger.Entry{
			entry(40, date(2025, time.May, 2)),
			entry(-15, date(2025, time.May, 3)),
			entry(100, date(2025, time.April, 1)),
		}, nil
	})

	svc := summary.NewService(products, entries, 3, nil)

	got, err := svc.Dashboard(context.Background(), "2025-05")
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(25).Equal(got.Totals.Net))
	assert.Len(t, got.Entries, 2)
	require.Len(t, got.LowStock, 1)
	assert.Equal(t, "Lipstick", got.LowStock[0].Name)
	assert.Equal(t, []string{"2025-05", "2025-04"}, got.Months)

	all, err := svc.Dashboard(context.Background(), summary.AllTime)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(125).Equal(all.Totals.Net))
}

func TestService_DashboardErrors(t *testing.T) {
	okProducts := productsFunc(func(context.Context) ([]*catalog.Product, error) { return nil, nil })
	failing := entriesFunc(func(context.Context) ([]*ledger.Entry, error) { return nil, errors.New("db down") })

	svc := summary.NewService(okProducts, failing, 3, time.UTC)

	_, err := svc.Dashboard(context.Background(), "2025-05")
	assert.ErrorContains(t, err, "db down")

	_, err = svc.Dashboard(context.Background(), "May 2025")
	assert.True(t, validation.IsValidation(err))
}
