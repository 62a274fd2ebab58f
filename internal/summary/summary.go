// Package summary derives balances, low-stock lists and month buckets from
// catalog and ledger reads.
package summary

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
)

// AllTime selects every entry in FilterMonth.
const AllTime = ""

const monthLayout = "2006-01"

type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal // zero or negative
	Net     decimal.Decimal
}

// ComputeTotals sums positive amounts as income and negative ones as
// expense. Net is their sum.
func ComputeTotals(entries []*ledger.Entry) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}

	for _, e := range entries {
		switch e.Amount.Sign() {
		case 1:
			t.Income = t.Income.Add(e.Amount)
		case -1:
			t.Expense = t.Expense.Add(e.Amount)
		}
	}

	t.Net = t.Income.Add(t.Expense)

	return t
}

// LowStock returns products with stock at or below threshold, lowest first.
func LowStock(products []*catalog.Product, threshold int) []*catalog.Product {
	var low []*catalog.Product

	for _, p := range products {
		if p.Stock <= threshold {
			low = append(low, p)
		}
	}

	slices.SortStableFunc(low, func(a, b *catalog.Product) int {
		return cmp.Or(cmp.Compare(a.Stock, b.Stock), cmp.Compare(a.Name, b.Name))
	})

	return low
}

func MonthKey(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}

	return t.Format(monthLayout)
}

func ParseMonth(key string) error {
	if key == AllTime {
		return nil
	}

	_, err := time.Parse(monthLayout, key)

	return err
}

func FilterMonth(entries []*ledger.Entry, key string, loc *time.Location) []*ledger.Entry {
	if key == AllTime {
		return entries
	}

	var out []*ledger.Entry

	for _, e := range entries {
		if MonthKey(e.CreatedAt, loc) == key {
			out = append(out, e)
		}
	}

	return out
}

// Months lists the distinct month keys present, newest first.
func Months(entries []*ledger.Entry, loc *time.Location) []string {
	seen := make(map[string]struct{})

	var months []string

	for _, e := range entries {
		key := MonthKey(e.CreatedAt, loc)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		months = append(months, key)
	}

	slices.Sort(months)
	slices.Reverse(months)

	return months
}
