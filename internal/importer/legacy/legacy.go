// Package legacy parses CSV exports of the original "inventario" and
// "finanzas" tables.
package legacy

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
)

var ErrMissingColumns = errors.New("header is missing required columns")

// Inventory columns.
const (
	colProduct  = "producto"
	colBrand    = "marca"
	colCategory = "categoria"
	colStock    = "stock"
	colPrice    = "precio_venta"
	colCost     = "precio_costo"
)

// Finance columns.
const (
	colDate        = "fecha"
	colKind        = "tipo"
	colDescription = "descripcion"
	colAmount      = "monto"
)

// legacyGenericBrand is what the original stored for products without brand.
const legacyGenericBrand = "Genérico"

// The original offered a fixed Spanish category list.
var legacyCategories = map[string]string{
	"labios":     "Lips",
	"ojos":       "Eyes",
	"rostro":     "Face",
	"skincare":   "Skincare",
	"accesorios": "Accessories",
}

var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

type InventoryRow struct {
	Line     int
	Name     string
	Brand    string
	Category string
	Stock    int
	Cost     decimal.Decimal
	Price    decimal.Decimal
}

type FinanceRow struct {
	Line        int
	Date        time.Time
	Kind        ledger.Kind
	Description string
	Amount      decimal.Decimal
}

// RowError describes a data row that was skipped.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// table is a CSV body with its columns indexed by lowercase header name.
type table struct {
	columns map[string]int
	rows    [][]string
}

func (t *table) get(row []string, col string) string {
	idx, ok := t.columns[col]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

// readTable reads a comma or semicolon separated file, picking whichever
// separator splits the header into more fields.
func readTable(r io.Reader, required ...string) (*table, error) {
	br := bufio.NewReader(r)

	header, err := br.Peek(1024)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	firstLine, _, _ := strings.Cut(string(header), "\n")

	reader := csv.NewReader(br)
	reader.Comma = ','
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumns)
	}

	t := &table{columns: make(map[string]int), rows: records[1:]}
	for i, col := range records[0] {
		t.columns[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string

	for _, col := range required {
		if _, ok := t.columns[col]; !ok {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return t, nil
}

// ParseInventory reads an "inventario" export. Rows that cannot be read are
// returned as RowErrors and left out.
func ParseInventory(r io.Reader) ([]InventoryRow, []RowError, error) {
	t, err := readTable(r, colProduct, colStock, colPrice, colCost)
	if err != nil {
		return nil, nil, err
	}

	var (
		out     []InventoryRow
		skipped []RowError
	)

	for i, row := range t.rows {
		line := i + 2

		name := t.get(row, colProduct)
		if name == "" {
			continue
		}

		stock, err := strconv.Atoi(t.get(row, colStock))
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: fmt.Errorf("stock: %w", err)})
			continue
		}

		price, err := parseAmount(t.get(row, colPrice))
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: fmt.Errorf("price: %w", err)})
			continue
		}

		cost, err := parseAmount(t.get(row, colCost))
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: fmt.Errorf("cost: %w", err)})
			continue
		}

		brand := t.get(row, colBrand)
		if strings.EqualFold(brand, legacyGenericBrand) {
			brand = catalog.DefaultBrand
		}

		category := t.get(row, colCategory)
		if mapped, ok := legacyCategories[strings.ToLower(category)]; ok {
			category = mapped
		}

		out = append(out, InventoryRow{
			Line:     line,
			Name:     name,
			Brand:    catalog.NormalizeBrand(brand),
			Category: category,
			Stock:    stock,
			Cost:     cost,
			Price:    price,
		})
	}

	return out, skipped, nil
}

// ParseFinance reads a "finanzas" export. Dates without a zone are read in
// loc.
func ParseFinance(r io.Reader, loc *time.Location) ([]FinanceRow, []RowError, error) {
	if loc == nil {
		loc = time.UTC
	}

	t, err := readTable(r, colDate, colAmount)
	if err != nil {
		return nil, nil, err
	}

	var (
		out     []FinanceRow
		skipped []RowError
	)

	for i, row := range t.rows {
		line := i + 2

		rawDate := t.get(row, colDate)
		if rawDate == "" {
			continue
		}

		date, err := parseDate(rawDate, loc)
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err})
			continue
		}

		amount, err := parseAmount(t.get(row, colAmount))
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: fmt.Errorf("amount: %w", err)})
			continue
		}

		kind, err := parseKind(t.get(row, colKind), amount)
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err})
			continue
		}

		// Expenses were always meant to be negative.
		if kind == ledger.KindExpense && amount.IsPositive() {
			amount = amount.Neg()
		}

		out = append(out, FinanceRow{
			Line:        line,
			Date:        date,
			Kind:        kind,
			Description: t.get(row, colDescription),
			Amount:      amount,
		})
	}

	return out, skipped, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseKind maps the Spanish labels. A blank label is inferred from the sign.
func parseKind(s string, amount decimal.Decimal) (ledger.Kind, error) {
	switch strings.ToLower(s) {
	case "ingreso", "income":
		return ledger.KindIncome, nil
	case "gasto", "expense":
		return ledger.KindExpense, nil
	case "ajuste", "adjustment":
		return ledger.KindAdjustment, nil
	case "":
		if amount.IsNegative() {
			return ledger.KindExpense, nil
		}

		return ledger.KindIncome, nil
	}

	return "", fmt.Errorf("unknown kind %q", s)
}
