package reserve

import "github.com/shopspring/decimal"

type CoverageStatus string

const (
	CoverageNone    CoverageStatus = "none"
	CoveragePartial CoverageStatus = "partial"
	CoverageFull    CoverageStatus = "full"
	CoverageOver    CoverageStatus = "over"
)

type Coverage struct {
	Percent  decimal.Decimal
	Shortage decimal.Decimal
	Status   CoverageStatus
}

var hundred = decimal.NewFromInt(100)

// Remaining — сколько из резерва ещё не потреблено. Без клампа:
// вызывающая сторона держит consumed <= reserved по построению.
func Remaining(reservedQty, consumedQty decimal.Decimal) decimal.Decimal {
	return reservedQty.Sub(consumedQty)
}

// CoveragePercent — (reserved / required) * 100.
// При required = 0 деления нет: 0 без резерва, иначе 100 (избыток).
func CoveragePercent(requiredQty, reservedQty decimal.Decimal) decimal.Decimal {
	if requiredQty.IsZero() {
		if reservedQty.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return reservedQty.Div(requiredQty).Mul(hundred)
}

// CoverageStatusFor классифицирует покрытие потребности резервом.
func CoverageStatusFor(requiredQty, reservedQty decimal.Decimal) CoverageStatus {
	switch {
	case reservedQty.IsZero():
		return CoverageNone
	case reservedQty.GreaterThan(requiredQty):
		return CoverageOver
	case reservedQty.Equal(requiredQty):
		return CoverageFull
	default:
		return CoveragePartial
	}
}

// Calculate собирает процент, дефицит и статус одной структурой.
func Calculate(requiredQty, reservedQty decimal.Decimal) Coverage {
	shortage := requiredQty.Sub(reservedQty)
	if shortage.IsNegative() {
		shortage = decimal.Zero
	}
	return Coverage{
		Percent:  CoveragePercent(requiredQty, reservedQty),
		Shortage: shortage,
		Status:   CoverageStatusFor(requiredQty, reservedQty),
	}
}
