package dex

import (
	"github.com/shopspring/decimal"

	"liquidityCore/internal/dexmath"
)

// Transition is the state produced by a liquidity operation. Ticks holds every
// tick record written; Cleared lists ticks whose gross liquidity returned to
// zero and whose records should be removed.
type Transition struct {
	Pool     Pool
	Position Position
	Ticks    map[int32]TickData
	Cleared  []int32
	Amount0  decimal.Decimal
	Amount1  decimal.Decimal
}

// Mint adds liquidity to pos over [tickLower, tickUpper] and returns the token
// amounts the owner must pay, rounded up.
func (p Pool) Mint(ticks TickSource, pos Position, tickLower, tickUpper int32, liquidity decimal.Decimal) (Transition, error) {
	liquidity = dexmath.F18(liquidity)
	if !liquidity.IsPositive() {
		return Transition{}, validationf("Invalid Liquidity")
	}
	return p.modifyPosition(ticks, pos, tickLower, tickUpper, liquidity)
}

// Burn removes liquidity from pos. The released amounts, rounded down, are
// credited to the position's owed balances and must be withdrawn with Collect.
func (p Pool) Burn(ticks TickSource, pos Position, tickLower, tickUpper int32, liquidity decimal.Decimal) (Transition, error) {
	liquidity = dexmath.F18(liquidity)
	if !liquidity.IsPositive() {
		return Transition{}, validationf("Invalid Liquidity")
	}
	if liquidity.GreaterThan(pos.Liquidity) {
		return Transition{}, conflictf("Uint Out of Bounds error :Uint")
	}

	tr, err := p.modifyPosition(ticks, pos, tickLower, tickUpper, liquidity.Neg())
	if err != nil {
		return Transition{}, err
	}
	tr.Amount0 = tr.Amount0.Abs()
	tr.Amount1 = tr.Amount1.Abs()
	tr.Position.TokensOwed0 = tr.Position.TokensOwed0.Add(tr.Amount0)
	tr.Position.TokensOwed1 = tr.Position.TokensOwed1.Add(tr.Amount1)
	return tr, nil
}

// RefreshPosition accrues the fees pos has earned up to the current price
// without changing its liquidity.
func (p Pool) RefreshPosition(ticks TickSource, pos Position) (Transition, error) {
	return p.modifyPosition(ticks, pos, pos.TickLower, pos.TickUpper, decimal.Zero)
}

func (p Pool) modifyPosition(ticks TickSource, pos Position, tickLower, tickUpper int32, liquidityDelta decimal.Decimal) (Transition, error) {
	if err := checkTicks(tickLower, tickUpper); err != nil {
		return Transition{}, err
	}

	next := p.clone()
	set := newTickSet(p.Hash(), ticks)
	tickCurrent := p.TickCurrent()

	if err := next.updatePosition(set, &pos, tickLower, tickUpper, tickCurrent, liquidityDelta); err != nil {
		return Transition{}, err
	}

	var amount0, amount1 decimal.Decimal
	if !liquidityDelta.IsZero() {
		sqrtLower := dexmath.TickToSqrtPrice(tickLower)
		sqrtUpper := dexmath.TickToSqrtPrice(tickUpper)
		switch {
		case tickCurrent < tickLower:
			amount0 = dexmath.Amount0Delta(sqrtLower, sqrtUpper, liquidityDelta)
		case tickCurrent < tickUpper:
			amount0 = dexmath.Amount0Delta(next.SqrtPrice, sqrtUpper, liquidityDelta)
			amount1 = dexmath.Amount1Delta(sqrtLower, next.SqrtPrice, liquidityDelta)
			next.Liquidity = next.Liquidity.Add(liquidityDelta)
			if next.Liquidity.IsNegative() {
				return Transition{}, conflictf("Invalid Liquidity")
			}
		default:
			amount1 = dexmath.Amount1Delta(sqrtLower, sqrtUpper, liquidityDelta)
		}
	}

	updated, cleared := set.changes()
	return Transition{
		Pool:     next,
		Position: pos,
		Ticks:    updated,
		Cleared:  cleared,
		Amount0:  amount0,
		Amount1:  amount1,
	}, nil
}

// updatePosition writes the boundary ticks and the bitmap, then accrues the
// position against the fee growth inside its range.
func (p *Pool) updatePosition(set *tickSet, pos *Position, tickLower, tickUpper, tickCurrent int32, liquidityDelta decimal.Decimal) error {
	lower, err := set.get(tickLower)
	if err != nil {
		return err
	}
	upper, err := set.get(tickUpper)
	if err != nil {
		return err
	}

	var flippedLower, flippedUpper bool
	if !liquidityDelta.IsZero() {
		flippedLower, err = lower.Update(tickCurrent, liquidityDelta, false, p.FeeGrowthGlobal0, p.FeeGrowthGlobal1, p.MaxLiquidityPerTick)
		if err != nil {
			return err
		}
		flippedUpper, err = upper.Update(tickCurrent, liquidityDelta, true, p.FeeGrowthGlobal0, p.FeeGrowthGlobal1, p.MaxLiquidityPerTick)
		if err != nil {
			return err
		}
		set.markDirty(tickLower)
		set.markDirty(tickUpper)

		if flippedLower {
			if err := p.Bitmap.FlipTick(tickLower, p.TickSpacing); err != nil {
				return err
			}
		}
		if flippedUpper {
			if err := p.Bitmap.FlipTick(tickUpper, p.TickSpacing); err != nil {
				return err
			}
		}
	}

	inside0, inside1 := feeGrowthInside(lower, upper, tickLower, tickUpper, tickCurrent, p.FeeGrowthGlobal0, p.FeeGrowthGlobal1)
	if err := pos.Update(liquidityDelta, inside0, inside1); err != nil {
		return err
	}

	if liquidityDelta.IsNegative() {
		if flippedLower {
			set.clear(tickLower)
		}
		if flippedUpper {
			set.clear(tickUpper)
		}
	}
	return nil
}
