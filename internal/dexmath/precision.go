package dexmath

import (
	"github.com/shopspring/decimal"
)

const (
	// AmountScale is the number of fractional digits kept for token amounts,
	// liquidity, fee growth and tokens owed.
	AmountScale int32 = 18
	// PriceScale is the number of fractional digits kept for sqrt prices.
	PriceScale int32 = 38
)

var zero = decimal.Zero

// F18 truncates d toward zero to AmountScale fractional digits.
func F18(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(AmountScale)
}

func unit(scale int32) decimal.Decimal {
	return decimal.New(1, -scale)
}

// divDown returns a/b truncated toward zero at scale digits.
func divDown(a, b decimal.Decimal, scale int32) decimal.Decimal {
	q, _ := a.QuoRem(b, scale)
	return q
}

// divUp returns a/b rounded away from zero at scale digits. Operands must be positive.
func divUp(a, b decimal.Decimal, scale int32) decimal.Decimal {
	q, r := a.QuoRem(b, scale)
	if !r.IsZero() {
		q = q.Add(unit(scale))
	}
	return q
}

func roundUp(d decimal.Decimal, scale int32) decimal.Decimal {
	t := d.Truncate(scale)
	if !t.Equal(d) && d.IsPositive() {
		t = t.Add(unit(scale))
	}
	return t
}
