package dex

import (
	"github.com/shopspring/decimal"

	"liquidityCore/internal/dexmath"
)

// inactiveThreshold is the amount below which position balances count as empty.
var inactiveThreshold = decimal.New(1, -8)

// Position is the liquidity and fee accounting of one position in a pool.
type Position struct {
	PoolHash             string          `json:"pool_hash"`
	PositionID           string          `json:"position_id"`
	TickLower            int32           `json:"tick_lower"`
	TickUpper            int32           `json:"tick_upper"`
	Token0               string          `json:"token0"`
	Token1               string          `json:"token1"`
	Fee                  dexmath.FeeTier `json:"fee"`
	Liquidity            decimal.Decimal `json:"liquidity"`
	FeeGrowthInside0Last decimal.Decimal `json:"fee_growth_inside0_last"`
	FeeGrowthInside1Last decimal.Decimal `json:"fee_growth_inside1_last"`
	TokensOwed0          decimal.Decimal `json:"tokens_owed0"`
	TokensOwed1          decimal.Decimal `json:"tokens_owed1"`
}

// NewPosition returns an empty position for the range.
func NewPosition(pool Pool, positionID string, tickLower, tickUpper int32) Position {
	return Position{
		PoolHash:   pool.Hash(),
		PositionID: positionID,
		TickLower:  tickLower,
		TickUpper:  tickUpper,
		Token0:     pool.Token0,
		Token1:     pool.Token1,
		Fee:        pool.Fee,
	}
}

// TickRange returns the ownership index key of the position.
func (p Position) TickRange() string {
	return TickRangeKey(p.TickLower, p.TickUpper)
}

// Update accrues fees earned since the last snapshot, applies liquidityDelta
// and records the new snapshot. A zero delta only refreshes fees.
func (p *Position) Update(liquidityDelta, feeGrowthInside0, feeGrowthInside1 decimal.Decimal) error {
	liquidity := p.Liquidity.Add(liquidityDelta)
	if liquidity.IsNegative() {
		return conflictf("Uint Out of Bounds error :Uint")
	}

	owed0 := accrued(p.Liquidity, feeGrowthInside0, p.FeeGrowthInside0Last)
	owed1 := accrued(p.Liquidity, feeGrowthInside1, p.FeeGrowthInside1Last)

	p.Liquidity = liquidity
	p.FeeGrowthInside0Last = feeGrowthInside0
	p.FeeGrowthInside1Last = feeGrowthInside1
	p.TokensOwed0 = p.TokensOwed0.Add(owed0)
	p.TokensOwed1 = p.TokensOwed1.Add(owed1)
	return nil
}

func accrued(liquidity, inside, insideLast decimal.Decimal) decimal.Decimal {
	delta := inside.Sub(insideLast)
	if !delta.IsPositive() || !liquidity.IsPositive() {
		return decimal.Zero
	}
	return dexmath.F18(liquidity.Mul(delta))
}

// IsInactive reports whether liquidity and both owed balances are negligible.
func (p Position) IsInactive() bool {
	return dexmath.F18(p.Liquidity).LessThan(inactiveThreshold) &&
		dexmath.F18(p.TokensOwed0).LessThan(inactiveThreshold) &&
		dexmath.F18(p.TokensOwed1).LessThan(inactiveThreshold)
}
