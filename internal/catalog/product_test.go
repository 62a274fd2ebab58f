package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
)

func TestIdentityKey(t *testing.T) {
	tests := []struct {
		name  string
		pName string
		brand string
		want  string
	}{
		{name: "Plain", pName: "Lipstick", brand: "Acme", want: "lipstick_acme"},
		{name: "CaseAndWhitespace", pName: "  LipStick ", brand: " ACME", want: "lipstick_acme"},
		{name: "BlankBrandUsesDefault", pName: "Lipstick", brand: "   ", want: "lipstick_generic"},
		{name: "InnerSpacesKept", pName: "Red  Lipstick", brand: "Brand X", want: "red  lipstick_brand x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.IdentityKey(tt.pName, tt.brand))
		})
	}
}

func TestIdentityKey_SameProductAcrossVariants(t *testing.T) {
	assert.Equal(t,
		catalog.IdentityKey("Mascara", "Maybelline"),
		catalog.IdentityKey(" mascara", "MAYBELLINE "),
	)
	assert.NotEqual(t,
		catalog.IdentityKey("Mascara", "Maybelline"),
		catalog.IdentityKey("Mascara", "Loreal"),
	)
}

func TestNormalizeBrand(t *testing.T) {
	assert.Equal(t, catalog.DefaultBrand, catalog.NormalizeBrand(""))
	assert.Equal(t, "Acme", catalog.NormalizeBrand(" Acme "))
}

func TestProduct_Margin(t *testing.T) {
	p := catalog.Product{Cost: decimal.RequireFromString("10.50"), Price: decimal.NewFromInt(20)}

	assert.True(t, decimal.RequireFromString("9.50").Equal(p.Margin()))
	assert.Equal(t, "Lipstick - Acme", (&catalog.Product{Name: "Lipstick", Brand: "Acme"}).Label())
}
