package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ilara/internal/ledger"
)

func TestParseSaleDescription(t *testing.T) {
	tests := []struct {
		name    string
		desc    string
		want    ledger.SaleDescription
		wantErr bool
	}{
		{
			name: "WithPaymentField",
			desc: "Sale: 3x Red Lipstick (BrandX) | Pay: Cash",
			want: ledger.SaleDescription{Quantity: 3, Name: "Red Lipstick", Brand: "BrandX", PaymentMethod: ledger.PaymentCash},
		},
		{
			name: "LegacySpanishMarker",
			desc: "Venta: 2x Labial Mate (Acme)",
			want: ledger.SaleDescription{Quantity: 2, Name: "Labial Mate", Brand: "Acme", PaymentMethod: ledger.PaymentCash},
		},
		{
			name: "NoBrandFallsBackToGeneric",
			desc: "Sale: 5x Cotton Pads",
			want: ledger.SaleDescription{Quantity: 5, Name: "Cotton Pads", Brand: "Generic", PaymentMethod: ledger.PaymentCash},
		},
		{
			name: "ParenthesesInNameSplitOnLast",
			desc: "Sale: 1x Palette (Nude) (Acme)",
			want: ledger.SaleDescription{Quantity: 1, Name: "Palette (Nude)", Brand: "Acme", PaymentMethod: ledger.PaymentCash},
		},
		{
			name: "CardAndNote",
			desc: "Sale: 4x Mascara (Lumi) | Pay: Card | Note: gift | wrapped",
			want: ledger.SaleDescription{Quantity: 4, Name: "Mascara", Brand: "Lumi", PaymentMethod: ledger.PaymentCard, Note: "gift | wrapped"},
		},
		{
			name: "LegacyPaymentLabel",
			desc: "Sale: 1x Blush (Acme) | Pay: Transferencia",
			want: ledger.SaleDescription{Quantity: 1, Name: "Blush", Brand: "Acme", PaymentMethod: ledger.PaymentTransfer},
		},
		{
			name:    "NonNumericQuantity",
			desc:    "Sale: twox Blush (Acme)",
			wantErr: true,
		},
		{
			name:    "MissingSeparator",
			desc:    "Sale: 3 Blush (Acme)",
			wantErr: true,
		},
		{
			name:    "ParenthesisWithoutSpace",
			desc:    "Sale: 3x Blush(Acme)",
			wantErr: true,
		},
		{
			name:    "ZeroQuantity",
			desc:    "Sale: 0x Blush (Acme)",
			wantErr: true,
		},
		{
			name:    "FreeText",
			desc:    "coffee for the shop",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ledger.ParseSaleDescription(tt.desc)
			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrUnparseable)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSaleDescription_RoundTrips(t *testing.T) {
	in := ledger.SaleDescription{Quantity: 2, Name: "Lipstick", Brand: "Acme", PaymentMethod: ledger.PaymentCard, Note: "regular"}

	desc := ledger.FormatSaleDescription(in)
	assert.Equal(t, "Sale: 2x Lipstick (Acme) | Pay: Card | Note: regular", desc)

	got, err := ledger.ParseSaleDescription(desc)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestFormatSaleDescription_Defaults(t *testing.T) {
	desc := ledger.FormatSaleDescription(ledger.SaleDescription{Quantity: 1, Name: "Toner", Note: "  "})
	assert.Equal(t, "Sale: 1x Toner (Generic) | Pay: Cash", desc)
}

func TestFormatAdjustmentDescription(t *testing.T) {
	assert.Equal(t, "Adjustment: +5x Lipstick (Acme) | Reason: recount",
		ledger.FormatAdjustmentDescription(5, "Lipstick", "Acme", "recount"))
	assert.Equal(t, "Adjustment: -2x Toner (Generic) | Reason: damaged",
		ledger.FormatAdjustmentDescription(-2, "Toner", "", "damaged"))
}

func TestHasSaleMarker(t *testing.T) {
	assert.True(t, ledger.HasSaleMarker("Sale: 1x A (B)"))
	assert.True(t, ledger.HasSaleMarker("Venta: 1x A (B)"))
	assert.False(t, ledger.HasSaleMarker("Adjustment: +1x A (B) | Reason: x"))
}

func TestParsePaymentMethod(t *testing.T) {
	for in, want := range map[string]ledger.PaymentMethod{
		"":          ledger.PaymentCash,
		"CASH":      ledger.PaymentCash,
		"Efectivo":  ledger.PaymentCash,
		"card":      ledger.PaymentCard,
		" Tarjeta ": ledger.PaymentCard,
		"transfer":  ledger.PaymentTransfer,
	} {
		got, err := ledger.ParsePaymentMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ledger.ParsePaymentMethod("bitcoin")
	assert.Error(t, err)
}
