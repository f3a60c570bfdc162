package dexmath

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FeeTier is a pool fee in hundredths of a basis point (500 = 0.05%).
type FeeTier uint32

const (
	Fee005 FeeTier = 500
	Fee03  FeeTier = 3000
	Fee1   FeeTier = 10000
)

// FeeAmountTickSpacing maps each supported fee tier to its tick spacing.
var FeeAmountTickSpacing = map[FeeTier]int32{
	Fee005: 10,
	Fee03:  60,
	Fee1:   200,
}

var (
	pipsDenominator = decimal.NewFromInt(1_000_000)
	maxUint128      = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)), 0)
)

// ParseFeeTier validates a raw fee code.
func ParseFeeTier(fee uint32) (FeeTier, error) {
	tier := FeeTier(fee)
	if _, ok := FeeAmountTickSpacing[tier]; !ok {
		return 0, fmt.Errorf("unsupported fee tier %d", fee)
	}
	return tier, nil
}

// TickSpacing returns the spacing for the tier and whether the tier is supported.
func (f FeeTier) TickSpacing() (int32, bool) {
	spacing, ok := FeeAmountTickSpacing[f]
	return spacing, ok
}

// Rate returns the fee as a fraction of the input amount.
func (f FeeTier) Rate() decimal.Decimal {
	return decimal.NewFromInt(int64(f)).Div(pipsDenominator)
}

// TickSpacingToMaxLiquidityPerTick bounds the gross liquidity a single tick may
// reference so that the sum over every usable tick fits in 128 bits.
func TickSpacingToMaxLiquidityPerTick(tickSpacing int32) decimal.Decimal {
	if tickSpacing <= 0 {
		return zero
	}
	minTick := (MinTick / tickSpacing) * tickSpacing
	maxTick := (MaxTick / tickSpacing) * tickSpacing
	numTicks := int64((maxTick-minTick)/tickSpacing) + 1
	q, _ := maxUint128.QuoRem(decimal.NewFromInt(numTicks), 0)
	return q
}
