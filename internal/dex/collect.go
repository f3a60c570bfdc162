package dex

import (
	"github.com/shopspring/decimal"

	"liquidityCore/internal/dexmath"
)

// Collect withdraws the requested amounts from the position's owed balances.
// When the recorded balances fall short, fees accrued since the last snapshot
// are added first. Collect does not move tokens; the caller pays the returned
// amounts out of the pool's custody.
func (p Pool) Collect(ticks TickSource, pos Position, amount0Requested, amount1Requested decimal.Decimal) (Transition, error) {
	amount0Requested = dexmath.F18(amount0Requested)
	amount1Requested = dexmath.F18(amount1Requested)
	if amount0Requested.IsNegative() || amount1Requested.IsNegative() {
		return Transition{}, validationf("Invalid collect amount")
	}

	short := func(pos Position) bool {
		return pos.TokensOwed0.LessThan(amount0Requested) || pos.TokensOwed1.LessThan(amount1Requested)
	}

	if short(pos) {
		refreshed, owed0, owed1, err := p.GetFeeCollectedEstimation(ticks, pos)
		if err != nil {
			return Transition{}, err
		}
		refreshed.TokensOwed0 = refreshed.TokensOwed0.Add(owed0)
		refreshed.TokensOwed1 = refreshed.TokensOwed1.Add(owed1)
		pos = refreshed
	}
	if short(pos) {
		return Transition{}, conflictf("Less balance accumulated")
	}

	pos.TokensOwed0 = pos.TokensOwed0.Sub(amount0Requested)
	pos.TokensOwed1 = pos.TokensOwed1.Sub(amount1Requested)
	return Transition{
		Pool:     p,
		Position: pos,
		Ticks:    map[int32]TickData{},
		Amount0:  amount0Requested,
		Amount1:  amount1Requested,
	}, nil
}

// GetFeeCollectedEstimation returns the fees pos has earned since its last
// snapshot, together with the position advanced to the current snapshot. The
// estimated fees are not added to the returned position's owed balances.
func (p Pool) GetFeeCollectedEstimation(ticks TickSource, pos Position) (Position, decimal.Decimal, decimal.Decimal, error) {
	inside0, inside1, err := GetFeeGrowthInside(ticks, pos.TickLower, pos.TickUpper, p.TickCurrent(), p.FeeGrowthGlobal0, p.FeeGrowthGlobal1)
	if err != nil {
		return pos, decimal.Zero, decimal.Zero, err
	}
	owed0 := accrued(pos.Liquidity, inside0, pos.FeeGrowthInside0Last)
	owed1 := accrued(pos.Liquidity, inside1, pos.FeeGrowthInside1Last)
	pos.FeeGrowthInside0Last = inside0
	pos.FeeGrowthInside1Last = inside1
	return pos, owed0, owed1, nil
}
