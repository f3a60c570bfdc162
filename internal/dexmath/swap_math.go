package dexmath

import (
	"github.com/shopspring/decimal"
)

// SwapStep is the result of swapping within a single price interval.
type SwapStep struct {
	SqrtPriceNext decimal.Decimal
	AmountIn      decimal.Decimal
	AmountOut     decimal.Decimal
	FeeAmount     decimal.Decimal
}

// ComputeSwapStep swaps within [sqrtPriceCurrent, sqrtPriceTarget] given the
// active liquidity. A positive amountRemaining is an exact input budget that
// includes the fee; a negative one is the exact output still wanted. feePips
// is the fee tier in hundredths of a basis point.
func ComputeSwapStep(sqrtPriceCurrent, sqrtPriceTarget, liquidity, amountRemaining decimal.Decimal, feePips uint32) (SwapStep, error) {
	zeroForOne := !sqrtPriceCurrent.LessThan(sqrtPriceTarget)
	exactIn := !amountRemaining.IsNegative()
	fee := decimal.NewFromInt(int64(feePips))
	feeComplement := pipsDenominator.Sub(fee)

	var (
		step      SwapStep
		amountIn  decimal.Decimal
		amountOut decimal.Decimal
		err       error
	)

	if exactIn {
		remainingLessFee := divDown(amountRemaining.Mul(feeComplement), pipsDenominator, AmountScale)
		if zeroForOne {
			amountIn = GetAmount0Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidity, true)
		} else {
			amountIn = GetAmount1Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidity, true)
		}
		if !remainingLessFee.LessThan(amountIn) {
			step.SqrtPriceNext = sqrtPriceTarget
		} else {
			step.SqrtPriceNext, err = GetNextSqrtPriceFromInput(sqrtPriceCurrent, liquidity, remainingLessFee, zeroForOne)
			if err != nil {
				return SwapStep{}, err
			}
		}
	} else {
		wanted := amountRemaining.Neg()
		if zeroForOne {
			amountOut = GetAmount1Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidity, false)
		} else {
			amountOut = GetAmount0Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidity, false)
		}
		if !wanted.LessThan(amountOut) {
			step.SqrtPriceNext = sqrtPriceTarget
		} else {
			step.SqrtPriceNext, err = GetNextSqrtPriceFromOutput(sqrtPriceCurrent, liquidity, wanted, zeroForOne)
			if err != nil {
				return SwapStep{}, err
			}
		}
	}

	reached := sqrtPriceTarget.Equal(step.SqrtPriceNext)

	if zeroForOne {
		if !(reached && exactIn) {
			amountIn = GetAmount0Delta(step.SqrtPriceNext, sqrtPriceCurrent, liquidity, true)
		}
		if !(reached && !exactIn) {
			amountOut = GetAmount1Delta(step.SqrtPriceNext, sqrtPriceCurrent, liquidity, false)
		}
	} else {
		if !(reached && exactIn) {
			amountIn = GetAmount1Delta(sqrtPriceCurrent, step.SqrtPriceNext, liquidity, true)
		}
		if !(reached && !exactIn) {
			amountOut = GetAmount0Delta(sqrtPriceCurrent, step.SqrtPriceNext, liquidity, false)
		}
	}

	// never hand out more than the caller asked for
	if !exactIn && amountOut.GreaterThan(amountRemaining.Neg()) {
		amountOut = amountRemaining.Neg()
	}

	if exactIn && !step.SqrtPriceNext.Equal(sqrtPriceTarget) {
		step.FeeAmount = amountRemaining.Sub(amountIn)
	} else if feeComplement.IsPositive() {
		step.FeeAmount = divUp(amountIn.Mul(fee), feeComplement, AmountScale)
	}

	step.AmountIn = amountIn
	step.AmountOut = amountOut
	return step, nil
}
