package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	d, err := ParseMoney(" 12,5 ")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(*d))

	d, err = ParseMoney("")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseMoney("twelve")
	assert.Error(t, err)
}

func TestParseInt(t *testing.T) {
	n, err := ParseInt("-3")
	require.NoError(t, err)
	assert.Equal(t, -3, n)

	_, err = ParseInt("1.5")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "40.00", FormatMoney(decimal.NewFromInt(40)))
	assert.Equal(t, "-3.50", FormatMoney(decimal.RequireFromString("-3.5")))

	loc := time.FixedZone("ART", -3*60*60)
	assert.Equal(t, "2025-03-31 21:30", FormatDate(time.Date(2025, time.April, 1, 0, 30, 0, 0, time.UTC), loc))
}
