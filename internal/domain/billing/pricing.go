package billing

import "github.com/shopspring/decimal"

// PricePerUnit is the usage pricing rule. The zero value prices everything
// at zero; construct with NewPricePerUnit.
type PricePerUnit struct {
	rate decimal.Decimal
}

// NewPricePerUnit creates a pricing rule from a cost-per-unit figure.
func NewPricePerUnit(costPerUnit float64) PricePerUnit {
	return PricePerUnit{rate: decimal.NewFromFloat(costPerUnit)}
}

// Cost returns usageCount * cost_per_unit rounded to 2 decimal places.
// Rounding mode is half-up: 50 units at 0.001 cost exactly 0.05.
func (p PricePerUnit) Cost(usageCount int64) decimal.Decimal {
	return p.rate.Mul(decimal.NewFromInt(usageCount)).Round(2)
}
