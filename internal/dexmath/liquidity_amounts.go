package dexmath

import (
	"github.com/shopspring/decimal"
)

// Liquidity0 returns the liquidity implied by a token0 amount spread between two
// sqrt prices: amount * sqrtA * sqrtB / (sqrtB - sqrtA).
func Liquidity0(amount, sqrtA, sqrtB decimal.Decimal) decimal.Decimal {
	sqrtA, sqrtB = sortPrices(sqrtA, sqrtB)
	if sqrtA.Equal(sqrtB) {
		return zero
	}
	num := amount.Mul(sqrtA).Mul(sqrtB)
	return divDown(num, sqrtB.Sub(sqrtA), AmountScale)
}

// Liquidity1 returns the liquidity implied by a token1 amount: amount / (sqrtB - sqrtA).
func Liquidity1(amount, sqrtA, sqrtB decimal.Decimal) decimal.Decimal {
	sqrtA, sqrtB = sortPrices(sqrtA, sqrtB)
	if sqrtA.Equal(sqrtB) {
		return zero
	}
	return divDown(amount, sqrtB.Sub(sqrtA), AmountScale)
}

// LiquidityForAmounts returns the largest liquidity that both desired amounts
// can fund for the range [sqrtA, sqrtB] at the current price.
func LiquidityForAmounts(sqrtPrice, sqrtA, sqrtB, amount0, amount1 decimal.Decimal) decimal.Decimal {
	sqrtA, sqrtB = sortPrices(sqrtA, sqrtB)
	switch {
	case !sqrtPrice.GreaterThan(sqrtA):
		return Liquidity0(amount0, sqrtA, sqrtB)
	case sqrtPrice.LessThan(sqrtB):
		l0 := Liquidity0(amount0, sqrtPrice, sqrtB)
		l1 := Liquidity1(amount1, sqrtA, sqrtPrice)
		return decimal.Min(l0, l1)
	default:
		return Liquidity1(amount1, sqrtA, sqrtB)
	}
}
