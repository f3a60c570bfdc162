package dex

import (
	"github.com/shopspring/decimal"
)

// GetFeeGrowthInside returns the fee growth per unit of liquidity accrued
// strictly inside [tickLower, tickUpper]. Ticks missing from the source count
// as never touched.
func GetFeeGrowthInside(ticks TickSource, tickLower, tickUpper, tickCurrent int32, feeGrowthGlobal0, feeGrowthGlobal1 decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	lower, err := lookupOrNil(ticks, tickLower)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	upper, err := lookupOrNil(ticks, tickUpper)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	inside0, inside1 := feeGrowthInside(lower, upper, tickLower, tickUpper, tickCurrent, feeGrowthGlobal0, feeGrowthGlobal1)
	return inside0, inside1, nil
}

func lookupOrNil(ticks TickSource, tick int32) (*TickData, error) {
	if ticks == nil {
		return nil, nil
	}
	data, ok, err := ticks.LookupTick(tick)
	if err != nil || !ok {
		return nil, err
	}
	return &data, nil
}

func feeGrowthInside(lower, upper *TickData, tickLower, tickUpper, tickCurrent int32, global0, global1 decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	var lowerOutside0, lowerOutside1, upperOutside0, upperOutside1 decimal.Decimal
	if lower != nil {
		lowerOutside0, lowerOutside1 = lower.FeeGrowthOutside0, lower.FeeGrowthOutside1
	}
	if upper != nil {
		upperOutside0, upperOutside1 = upper.FeeGrowthOutside0, upper.FeeGrowthOutside1
	}

	below0, below1 := lowerOutside0, lowerOutside1
	if tickCurrent < tickLower {
		below0 = global0.Sub(lowerOutside0)
		below1 = global1.Sub(lowerOutside1)
	}

	above0, above1 := upperOutside0, upperOutside1
	if tickCurrent >= tickUpper {
		above0 = global0.Sub(upperOutside0)
		above1 = global1.Sub(upperOutside1)
	}

	return global0.Sub(below0).Sub(above0), global1.Sub(below1).Sub(above1)
}
