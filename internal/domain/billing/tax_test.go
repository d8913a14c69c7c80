package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxRate_IsValid(t *testing.T) {
	for _, rate := range []TaxRate{3, 5, 10, 15, 18, 21} {
		assert.True(t, rate.IsValid(), "rate %d should be valid", rate)
	}
	for _, rate := range []TaxRate{0, 1, 4, 19, 20, 100, -3} {
		assert.False(t, rate.IsValid(), "rate %d should be invalid", rate)
	}
}

func TestComputeTotals(t *testing.T) {
	t.Run("computes breakdown for mixed lines at 18 percent", func(t *testing.T) {
		lines := []LineInput{
			{Quantity: 3, UnitPrice: decimal.NewFromInt(1000)},
			{Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
		}

		totals, err := ComputeTotals(lines, TaxRate18)
		require.NoError(t, err)

		assert.Equal(t, "3500.00", totals.TotalHT.StringFixed(2))
		assert.Equal(t, "630.00", totals.TotalTVA.StringFixed(2))
		assert.Equal(t, "4130.00", totals.TotalTTC.StringFixed(2))
	})

	t.Run("rounds per line before summation", func(t *testing.T) {
		// 3 × 0.335 = 1.005 -> 1.01 per line; summing raw values first
		// would give 2.01 instead of 2.02.
		lines := []LineInput{
			{Quantity: 3, UnitPrice: decimal.RequireFromString("0.335")},
			{Quantity: 3, UnitPrice: decimal.RequireFromString("0.335")},
		}

		totals, err := ComputeTotals(lines, TaxRate10)
		require.NoError(t, err)

		assert.Equal(t, "2.02", totals.TotalHT.StringFixed(2))
	})

	t.Run("TTC equals HT plus TVA for every allowed rate", func(t *testing.T) {
		lines := []LineInput{
			{Quantity: 7, UnitPrice: decimal.RequireFromString("19.99")},
			{Quantity: 2, UnitPrice: decimal.RequireFromString("3.50")},
		}

		for _, rate := range []TaxRate{3, 5, 10, 15, 18, 21} {
			totals, err := ComputeTotals(lines, rate)
			require.NoError(t, err)
			assert.True(t, totals.TotalTTC.Equal(totals.TotalHT.Add(totals.TotalTVA)),
				"rate %d: TTC %s != HT %s + TVA %s", rate, totals.TotalTTC, totals.TotalHT, totals.TotalTVA)
		}
	})

	t.Run("fails with empty line list", func(t *testing.T) {
		_, err := ComputeTotals(nil, TaxRate18)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one line item")
	})

	t.Run("fails with zero quantity", func(t *testing.T) {
		lines := []LineInput{{Quantity: 0, UnitPrice: decimal.NewFromInt(10)}}
		_, err := ComputeTotals(lines, TaxRate18)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Quantity must be at least 1")
	})

	t.Run("fails with negative unit price", func(t *testing.T) {
		lines := []LineInput{{Quantity: 1, UnitPrice: decimal.NewFromInt(-10)}}
		_, err := ComputeTotals(lines, TaxRate18)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})

	t.Run("fails with disallowed rate", func(t *testing.T) {
		lines := []LineInput{{Quantity: 1, UnitPrice: decimal.NewFromInt(10)}}
		_, err := ComputeTotals(lines, TaxRate(20))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "3, 5, 10, 15, 18, 21")
	})
}

func TestLineTotal(t *testing.T) {
	total := LineTotal(3, decimal.RequireFromString("19.99"))
	assert.Equal(t, "59.97", total.StringFixed(2))
}
