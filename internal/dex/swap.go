package dex

import (
	"github.com/shopspring/decimal"

	"liquidityCore/internal/dexmath"
)

// SwapResult is the outcome of a swap. Positive amounts flow into the pool,
// negative amounts flow out to the trader.
type SwapResult struct {
	Pool         Pool
	Ticks        map[int32]TickData
	Amount0      decimal.Decimal
	Amount1      decimal.Decimal
	TicksCrossed int
}

type swapState struct {
	remaining       decimal.Decimal
	calculated      decimal.Decimal
	sqrtPrice       decimal.Decimal
	tick            int32
	liquidity       decimal.Decimal
	feeGrowthGlobal decimal.Decimal
	protocolFee     decimal.Decimal
}

// Swap trades against the pool until amountSpecified is consumed or the price
// reaches sqrtPriceLimit. A positive amountSpecified is an exact input of the
// token being sold; a negative one is an exact output of the token bought.
// Ticks are fetched from the source as the price walks over them.
func (p Pool) Swap(ticks TickSource, zeroForOne bool, amountSpecified, sqrtPriceLimit decimal.Decimal) (SwapResult, error) {
	amountSpecified = dexmath.F18(amountSpecified)
	if amountSpecified.IsZero() {
		return SwapResult{}, validationf("Invalid specified amount")
	}
	if zeroForOne {
		if !(sqrtPriceLimit.LessThan(p.SqrtPrice) && sqrtPriceLimit.GreaterThan(dexmath.MinSqrtPrice)) {
			return SwapResult{}, NewError(KindSlippageExceeded, "SquareRootPrice Limit Exceeds")
		}
	} else {
		if !(sqrtPriceLimit.GreaterThan(p.SqrtPrice) && sqrtPriceLimit.LessThan(dexmath.MaxSqrtPrice)) {
			return SwapResult{}, NewError(KindSlippageExceeded, "SquareRootPrice Limit Exceeds")
		}
	}

	next := p.clone()
	set := newTickSet(p.Hash(), ticks)
	exactInput := amountSpecified.IsPositive()

	state := swapState{
		remaining:       amountSpecified,
		calculated:      decimal.Zero,
		sqrtPrice:       p.SqrtPrice,
		tick:            p.TickCurrent(),
		liquidity:       p.Liquidity,
		feeGrowthGlobal: p.FeeGrowthGlobal1,
		protocolFee:     decimal.Zero,
	}
	if zeroForOne {
		state.feeGrowthGlobal = p.FeeGrowthGlobal0
	}

	crossed := 0
	for !state.remaining.IsZero() && !state.sqrtPrice.Equal(sqrtPriceLimit) {
		sqrtPriceStart := state.sqrtPrice

		tickNext, initialized := next.Bitmap.NextInitializedTickWithinOneWord(state.tick, p.TickSpacing, zeroForOne)
		if tickNext < dexmath.MinTick || tickNext > dexmath.MaxTick {
			return SwapResult{}, conflictf("Not enough liquidity available in pool")
		}
		sqrtPriceNext := dexmath.TickToSqrtPrice(tickNext)

		target := sqrtPriceNext
		if (zeroForOne && sqrtPriceNext.LessThan(sqrtPriceLimit)) || (!zeroForOne && sqrtPriceNext.GreaterThan(sqrtPriceLimit)) {
			target = sqrtPriceLimit
		}

		step, err := dexmath.ComputeSwapStep(state.sqrtPrice, target, state.liquidity, state.remaining, uint32(p.Fee))
		if err != nil {
			return SwapResult{}, conflictf("Not enough liquidity available in pool")
		}
		state.sqrtPrice = step.SqrtPriceNext

		if exactInput {
			state.remaining = state.remaining.Sub(step.AmountIn.Add(step.FeeAmount))
			state.calculated = state.calculated.Sub(step.AmountOut)
		} else {
			state.remaining = state.remaining.Add(step.AmountOut)
			state.calculated = state.calculated.Add(step.AmountIn.Add(step.FeeAmount))
		}

		fee := step.FeeAmount
		if next.ProtocolFeeRate.IsPositive() {
			delta := dexmath.F18(fee.Mul(next.ProtocolFeeRate))
			fee = fee.Sub(delta)
			state.protocolFee = state.protocolFee.Add(delta)
		}
		if state.liquidity.IsPositive() {
			growth, _ := fee.QuoRem(state.liquidity, dexmath.AmountScale)
			state.feeGrowthGlobal = state.feeGrowthGlobal.Add(growth)
		}

		if state.sqrtPrice.Equal(sqrtPriceNext) {
			if initialized {
				data, err := set.get(tickNext)
				if err != nil {
					return SwapResult{}, err
				}
				fg0, fg1 := next.FeeGrowthGlobal0, state.feeGrowthGlobal
				if zeroForOne {
					fg0, fg1 = state.feeGrowthGlobal, next.FeeGrowthGlobal1
				}
				liquidityNet := data.Cross(fg0, fg1)
				set.markDirty(tickNext)
				if zeroForOne {
					liquidityNet = liquidityNet.Neg()
				}
				state.liquidity = state.liquidity.Add(liquidityNet)
				if state.liquidity.IsNegative() {
					return SwapResult{}, conflictf("Invalid Liquidity")
				}
				crossed++
			}
			if zeroForOne {
				state.tick = tickNext - 1
			} else {
				state.tick = tickNext
			}
		} else if !state.sqrtPrice.Equal(sqrtPriceStart) {
			state.tick = dexmath.SqrtPriceToTick(state.sqrtPrice)
		} else {
			// the remainder is below what the price grid can express
			break
		}
	}

	next.SqrtPrice = state.sqrtPrice
	next.Tick = state.tick
	next.Liquidity = state.liquidity
	if zeroForOne {
		next.FeeGrowthGlobal0 = state.feeGrowthGlobal
		next.ProtocolFeesToken0 = next.ProtocolFeesToken0.Add(state.protocolFee)
	} else {
		next.FeeGrowthGlobal1 = state.feeGrowthGlobal
		next.ProtocolFeesToken1 = next.ProtocolFeesToken1.Add(state.protocolFee)
	}

	filled := amountSpecified.Sub(state.remaining)
	amount0, amount1 := state.calculated, filled
	if zeroForOne == exactInput {
		amount0, amount1 = filled, state.calculated
	}

	updated, _ := set.changes()
	return SwapResult{
		Pool:         next,
		Ticks:        updated,
		Amount0:      amount0,
		Amount1:      amount1,
		TicksCrossed: crossed,
	}, nil
}
