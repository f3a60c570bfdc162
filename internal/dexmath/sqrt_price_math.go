package dexmath

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidPrice is returned when a sqrt price is not positive.
	ErrInvalidPrice = errors.New("sqrt price must be positive")
	// ErrInsufficientLiquidity is returned when an output amount cannot be served by the liquidity.
	ErrInsufficientLiquidity = errors.New("not enough liquidity for output amount")
)

func sortPrices(a, b decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if a.GreaterThan(b) {
		return b, a
	}
	return a, b
}

// GetAmount0Delta returns the token0 amount spanned by liquidity between two
// sqrt prices: liquidity * (sqrtB - sqrtA) / (sqrtA * sqrtB). Bounds may be
// passed in any order; liquidity must not be negative.
func GetAmount0Delta(sqrtA, sqrtB, liquidity decimal.Decimal, up bool) decimal.Decimal {
	sqrtA, sqrtB = sortPrices(sqrtA, sqrtB)
	if !sqrtA.IsPositive() || liquidity.IsZero() || sqrtA.Equal(sqrtB) {
		return zero
	}
	num := liquidity.Mul(sqrtB.Sub(sqrtA))
	den := sqrtA.Mul(sqrtB)
	if up {
		return divUp(num, den, AmountScale)
	}
	return divDown(num, den, AmountScale)
}

// GetAmount1Delta returns the token1 amount spanned by liquidity between two
// sqrt prices: liquidity * (sqrtB - sqrtA).
func GetAmount1Delta(sqrtA, sqrtB, liquidity decimal.Decimal, up bool) decimal.Decimal {
	sqrtA, sqrtB = sortPrices(sqrtA, sqrtB)
	amount := liquidity.Mul(sqrtB.Sub(sqrtA))
	if up {
		return roundUp(amount, AmountScale)
	}
	return amount.Truncate(AmountScale)
}

// Amount0Delta is the signed form used by liquidity changes. Added liquidity
// is charged rounding up; removed liquidity is paid out rounding down and the
// result is negative.
func Amount0Delta(sqrtA, sqrtB, liquidityDelta decimal.Decimal) decimal.Decimal {
	if liquidityDelta.IsNegative() {
		return GetAmount0Delta(sqrtA, sqrtB, liquidityDelta.Neg(), false).Neg()
	}
	return GetAmount0Delta(sqrtA, sqrtB, liquidityDelta, true)
}

// Amount1Delta is the signed counterpart of GetAmount1Delta.
func Amount1Delta(sqrtA, sqrtB, liquidityDelta decimal.Decimal) decimal.Decimal {
	if liquidityDelta.IsNegative() {
		return GetAmount1Delta(sqrtA, sqrtB, liquidityDelta.Neg(), false).Neg()
	}
	return GetAmount1Delta(sqrtA, sqrtB, liquidityDelta, true)
}

// getNextSqrtPriceFromAmount0RoundingUp moves the price by a token0 amount.
// Adding token0 lowers the price; removing raises it.
func getNextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liquidity, amount decimal.Decimal, add bool) (decimal.Decimal, error) {
	if amount.IsZero() {
		return sqrtPrice, nil
	}
	num := liquidity.Mul(sqrtPrice)
	product := amount.Mul(sqrtPrice)
	if add {
		return divUp(num, liquidity.Add(product), PriceScale), nil
	}
	den := liquidity.Sub(product)
	if !den.IsPositive() {
		return zero, ErrInsufficientLiquidity
	}
	return divUp(num, den, PriceScale), nil
}

// getNextSqrtPriceFromAmount1RoundingDown moves the price by a token1 amount.
// Adding token1 raises the price; removing lowers it.
func getNextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liquidity, amount decimal.Decimal, add bool) (decimal.Decimal, error) {
	if add {
		return sqrtPrice.Add(divDown(amount, liquidity, PriceScale)), nil
	}
	quotient := divUp(amount, liquidity, PriceScale)
	if !sqrtPrice.GreaterThan(quotient) {
		return zero, ErrInsufficientLiquidity
	}
	return sqrtPrice.Sub(quotient), nil
}

// GetNextSqrtPriceFromInput returns the price after adding amountIn of the input token.
func GetNextSqrtPriceFromInput(sqrtPrice, liquidity, amountIn decimal.Decimal, zeroForOne bool) (decimal.Decimal, error) {
	if !sqrtPrice.IsPositive() {
		return zero, ErrInvalidPrice
	}
	if !liquidity.IsPositive() {
		return zero, ErrInsufficientLiquidity
	}
	if zeroForOne {
		return getNextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liquidity, amountIn, true)
	}
	return getNextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput returns the price after removing amountOut of the output token.
func GetNextSqrtPriceFromOutput(sqrtPrice, liquidity, amountOut decimal.Decimal, zeroForOne bool) (decimal.Decimal, error) {
	if !sqrtPrice.IsPositive() {
		return zero, ErrInvalidPrice
	}
	if !liquidity.IsPositive() {
		return zero, ErrInsufficientLiquidity
	}
	if zeroForOne {
		return getNextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liquidity, amountOut, false)
	}
	return getNextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liquidity, amountOut, false)
}
