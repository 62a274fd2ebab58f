package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
)

const (
	SaleMarker = "Sale:"
	// LegacySaleMarker prefixes sales written before the English labels.
	LegacySaleMarker = "Venta:"

	fieldSeparator = " | "
	payField       = "Pay: "
	noteField      = "Note: "
	reasonField    = "Reason: "
)

var ErrUnparseable = errors.New("description does not match the sale format")

// SaleDescription is what a sale description carries.
type SaleDescription struct {
	Quantity      int
	Name          string
	Brand         string
	PaymentMethod PaymentMethod
	Note          string
}

// FormatSaleDescription renders
//
//	Sale: <q>x <name> (<brand>) | Pay: <method>[ | Note: <note>]
func FormatSaleDescription(d SaleDescription) string {
	method := d.PaymentMethod
	if method == "" {
		method = PaymentCash
	}

	s := fmt.Sprintf("%s %dx %s (%s)%s%s%s",
		SaleMarker, d.Quantity, d.Name, catalog.NormalizeBrand(d.Brand), fieldSeparator, payField, method)

	if note := strings.TrimSpace(d.Note); note != "" {
		s += fieldSeparator + noteField + note
	}

	return s
}

// FormatAdjustmentDescription renders
//
//	Adjustment: <+/-q>x <name> (<brand>) | Reason: <reason>
func FormatAdjustmentDescription(delta int, name, brand, reason string) string {
	return fmt.Sprintf("Adjustment: %+dx %s (%s)%s%s%s",
		delta, name, catalog.NormalizeBrand(brand), fieldSeparator, reasonField, reason)
}

func HasSaleMarker(desc string) bool {
	return strings.Contains(desc, SaleMarker) || strings.Contains(desc, LegacySaleMarker)
}

// ParseSaleDescription recovers quantity, name and brand from a sale
// description. The head before the first " | " is split once on "x "; the
// quantity follows ": ". A name ending in ")" carries the brand after the last
// " ("; otherwise the brand is the default one.
func ParseSaleDescription(desc string) (SaleDescription, error) {
	head, extra, _ := strings.Cut(desc, fieldSeparator)

	parts := strings.SplitN(head, "x ", 2)
	if len(parts) != 2 {
		return SaleDescription{}, fmt.Errorf("%w: missing quantity separator", ErrUnparseable)
	}

	_, rawQty, ok := strings.Cut(parts[0], ": ")
	if !ok {
		return SaleDescription{}, fmt.Errorf("%w: missing marker", ErrUnparseable)
	}

	qty, err := strconv.Atoi(strings.TrimSpace(rawQty))
	if err != nil {
		return SaleDescription{}, fmt.Errorf("%w: quantity %q", ErrUnparseable, rawQty)
	}

	if qty <= 0 {
		return SaleDescription{}, fmt.Errorf("%w: quantity %d", ErrUnparseable, qty)
	}

	d := SaleDescription{Quantity: qty, PaymentMethod: PaymentCash}

	rest := parts[1]
	if strings.Contains(rest, "(") && strings.HasSuffix(rest, ")") {
		idx := strings.LastIndex(rest, " (")
		if idx < 0 {
			return SaleDescription{}, fmt.Errorf("%w: brand", ErrUnparseable)
		}

		d.Name = rest[:idx]
		d.Brand = strings.ReplaceAll(rest[idx+2:], ")", "")
	} else {
		d.Name = rest
		d.Brand = catalog.DefaultBrand
	}

	if strings.TrimSpace(d.Name) == "" {
		return SaleDescription{}, fmt.Errorf("%w: empty product name", ErrUnparseable)
	}

	parseExtraFields(&d, extra)

	return d, nil
}

// parseExtraFields reads Pay and Note. Note runs to the end of the string.
// Unknown fields and unknown payment methods are ignored.
func parseExtraFields(d *SaleDescription, extra string) {
	for extra != "" {
		if note, ok := strings.CutPrefix(extra, noteField); ok {
			d.Note = strings.TrimSpace(note)
			return
		}

		var field string

		field, extra, _ = strings.Cut(extra, fieldSeparator)

		if raw, ok := strings.CutPrefix(field, payField); ok {
			if method, err := ParsePaymentMethod(raw); err == nil {
				d.PaymentMethod = method
			}
		}
	}
}
