package aggregate

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"liquidityCore/internal/dexmath"
	"liquidityCore/internal/model"
)

// Accumulator holds aggregate values for a pool window.
type Accumulator struct {
	PoolHash    string
	Fee         uint32
	WindowStart int64
	WindowEnd   int64
	SwapCount   uint64
	Volume0     decimal.Decimal
	Volume1     decimal.Decimal
	Fee0        decimal.Decimal
	Fee1        decimal.Decimal
	LastTS      int64
	LastPrice   string
}

func NewAccumulator(poolHash string, fee uint32, windowStart, windowEnd int64) *Accumulator {
	return &Accumulator{
		PoolHash:    poolHash,
		Fee:         fee,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}
}

// AddEvent folds one committed event into the window. Only swaps count.
func (a *Accumulator) AddEvent(record model.EventRecord) error {
	if record.EventName != model.EventSwap {
		return nil
	}
	var swap model.SwapEventData
	if err := json.Unmarshal(record.Data, &swap); err != nil {
		return fmt.Errorf("decode swap: %w", err)
	}
	if err := a.applySwap(swap); err != nil {
		return err
	}
	if record.Timestamp >= a.LastTS {
		a.LastTS = record.Timestamp
		a.LastPrice = swap.SqrtPrice
	}
	return nil
}

func (a *Accumulator) applySwap(swap model.SwapEventData) error {
	amount0, err := parseAmount(swap.Amount0)
	if err != nil {
		return err
	}
	amount1, err := parseAmount(swap.Amount1)
	if err != nil {
		return err
	}

	a.Volume0 = a.Volume0.Add(amount0.Abs())
	a.Volume1 = a.Volume1.Add(amount1.Abs())
	a.SwapCount++

	// the positive side is what the trader paid, fee included
	switch {
	case amount0.IsPositive():
		a.Fee0 = a.Fee0.Add(feeFromAmount(amount0, a.Fee))
	case amount1.IsPositive():
		a.Fee1 = a.Fee1.Add(feeFromAmount(amount1, a.Fee))
	}
	return nil
}

func parseAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return d, nil
}

func feeFromAmount(amountIn decimal.Decimal, fee uint32) decimal.Decimal {
	if fee == 0 {
		return decimal.Zero
	}
	return dexmath.F18(amountIn.Mul(dexmath.FeeTier(fee).Rate()))
}
