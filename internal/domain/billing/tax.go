package billing

import (
	"github.com/gescom/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TaxRate is a TVA percentage from the closed set accepted by the system
type TaxRate int

// Allowed TVA rates, in percent
const (
	TaxRate3  TaxRate = 3
	TaxRate5  TaxRate = 5
	TaxRate10 TaxRate = 10
	TaxRate15 TaxRate = 15
	TaxRate18 TaxRate = 18
	TaxRate21 TaxRate = 21
)

// IsValid checks if the rate is one of the allowed TVA rates
func (r TaxRate) IsValid() bool {
	switch r {
	case TaxRate3, TaxRate5, TaxRate10, TaxRate15, TaxRate18, TaxRate21:
		return true
	}
	return false
}

// Decimal returns the rate as a decimal percentage (e.g. 18)
func (r TaxRate) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(r))
}

// LineInput is one line of an invoice as seen by the total calculator
type LineInput struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Totals is the computed tax breakdown of an invoice
type Totals struct {
	TotalHT  decimal.Decimal
	TotalTVA decimal.Decimal
	TotalTTC decimal.Decimal
}

// ComputeTotals computes the HT/TVA/TTC breakdown for an ordered list of
// lines and a TVA rate. The line total is the unit of rounding: each
// quantity × unitPrice is rounded to 2 decimals before summation, so the
// stored per-line totals always add up exactly to TotalHT.
// Pure function, no side effects.
func ComputeTotals(lines []LineInput, rate TaxRate) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, shared.NewDomainError("INVALID_ITEMS", "Invoice must have at least one line item")
	}
	if !rate.IsValid() {
		return Totals{}, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be one of 3, 5, 10, 15, 18, 21")
	}

	totalHT := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return Totals{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
		if line.UnitPrice.IsNegative() {
			return Totals{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		totalHT = totalHT.Add(lineTotal)
	}

	totalTVA := totalHT.Mul(rate.Decimal()).Div(decimal.NewFromInt(100)).Round(2)

	return Totals{
		TotalHT:  totalHT,
		TotalTVA: totalTVA,
		TotalTTC: totalHT.Add(totalTVA),
	}, nil
}

// LineTotal returns quantity × unitPrice rounded to 2 decimals
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
