package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("ledger entry not found")

type Kind string

const (
	KindIncome     Kind = "Income"
	KindExpense    Kind = "Expense"
	KindAdjustment Kind = "Adjustment"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "Cash"
	PaymentCard     PaymentMethod = "Card"
	PaymentTransfer PaymentMethod = "Transfer"
)

// ParsePaymentMethod accepts the English and legacy Spanish labels in any
// case. Blank input means cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cash", "efectivo":
		return PaymentCash, nil
	case "card", "tarjeta":
		return PaymentCard, nil
	case "transfer", "transferencia":
		return PaymentTransfer, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", s)
	}
}

// Entry is one ledger row. Amount is positive for income, negative for
// expenses and zero for adjustments.
type Entry struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	Kind        Kind
	Description string
	Amount      decimal.Decimal
	Sale        *SaleLink
}

// SaleLink ties an income entry to the product and quantity it sold.
type SaleLink struct {
	ProductID     uuid.UUID
	Quantity      int
	PaymentMethod PaymentMethod
	Note          string
}

// IsSale reports whether the entry records a sale, linked or legacy.
func (e *Entry) IsSale() bool {
	return e.Kind == KindIncome && (e.Sale != nil || HasSaleMarker(e.Description))
}
