package dex

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TickData is the accumulator record of a single tick.
type TickData struct {
	PoolHash          string          `json:"pool_hash"`
	Tick              int32           `json:"tick"`
	LiquidityGross    decimal.Decimal `json:"liquidity_gross"`
	LiquidityNet      decimal.Decimal `json:"liquidity_net"`
	Initialised       bool            `json:"initialised"`
	FeeGrowthOutside0 decimal.Decimal `json:"fee_growth_outside0"`
	FeeGrowthOutside1 decimal.Decimal `json:"fee_growth_outside1"`
}

// NewTickData returns an untouched tick.
func NewTickData(poolHash string, tick int32) TickData {
	return TickData{PoolHash: poolHash, Tick: tick}
}

// Update applies a signed liquidity delta to the tick and reports whether the
// tick flipped between initialized and uninitialized.
func (t *TickData) Update(tickCurrent int32, liquidityDelta decimal.Decimal, upper bool, feeGrowthGlobal0, feeGrowthGlobal1, maxLiquidity decimal.Decimal) (bool, error) {
	grossBefore := t.LiquidityGross
	grossAfter := grossBefore.Add(liquidityDelta)

	if grossAfter.IsNegative() {
		return false, conflictf("Uint Out of Bounds error :Uint")
	}
	if grossAfter.GreaterThan(maxLiquidity) {
		return false, validationf("liquidity crossed max liquidity")
	}

	flipped := grossAfter.IsZero() != grossBefore.IsZero()

	if grossBefore.IsZero() && t.Tick <= tickCurrent {
		// growth below a fresh tick is attributed to the outside
		t.FeeGrowthOutside0 = feeGrowthGlobal0
		t.FeeGrowthOutside1 = feeGrowthGlobal1
	}

	t.LiquidityGross = grossAfter
	t.Initialised = grossAfter.IsPositive()
	if upper {
		t.LiquidityNet = t.LiquidityNet.Sub(liquidityDelta)
	} else {
		t.LiquidityNet = t.LiquidityNet.Add(liquidityDelta)
	}
	return flipped, nil
}

// Cross flips the outside fee growth as the price moves over the tick and
// returns the liquidity to add when crossing left to right.
func (t *TickData) Cross(feeGrowthGlobal0, feeGrowthGlobal1 decimal.Decimal) decimal.Decimal {
	t.FeeGrowthOutside0 = feeGrowthGlobal0.Sub(t.FeeGrowthOutside0)
	t.FeeGrowthOutside1 = feeGrowthGlobal1.Sub(t.FeeGrowthOutside1)
	return t.LiquidityNet
}

// TickSource resolves tick records for pool operations. Lookups are synchronous;
// an absent tick is reported with ok false and a nil error.
type TickSource interface {
	LookupTick(tick int32) (TickData, bool, error)
}

// TickMap is an in-memory TickSource.
type TickMap map[int32]TickData

func (m TickMap) LookupTick(tick int32) (TickData, bool, error) {
	t, ok := m[tick]
	return t, ok, nil
}

// Apply merges the ticks written by a transition and removes the cleared ones.
func (m TickMap) Apply(updated map[int32]TickData, cleared []int32) {
	for tick, data := range updated {
		m[tick] = data
	}
	for _, tick := range cleared {
		delete(m, tick)
	}
}

// tickSet is the working copy of the ticks touched by one operation.
type tickSet struct {
	poolHash string
	src      TickSource
	cache    map[int32]*TickData
	dirty    map[int32]bool
	cleared  map[int32]bool
}

func newTickSet(poolHash string, src TickSource) *tickSet {
	if src == nil {
		src = TickMap{}
	}
	return &tickSet{
		poolHash: poolHash,
		src:      src,
		cache:    make(map[int32]*TickData),
		dirty:    make(map[int32]bool),
		cleared:  make(map[int32]bool),
	}
}

// get returns the working copy of tick, creating a blank record when absent.
func (s *tickSet) get(tick int32) (*TickData, error) {
	if t, ok := s.cache[tick]; ok {
		return t, nil
	}
	data, ok, err := s.src.LookupTick(tick)
	if err != nil {
		return nil, err
	}
	if !ok {
		data = NewTickData(s.poolHash, tick)
	}
	s.cache[tick] = &data
	return &data, nil
}

func (s *tickSet) markDirty(tick int32) {
	s.dirty[tick] = true
	delete(s.cleared, tick)
}

// clear resets a tick whose gross liquidity returned to zero.
func (s *tickSet) clear(tick int32) {
	if t, ok := s.cache[tick]; ok {
		*t = NewTickData(s.poolHash, tick)
	}
	delete(s.dirty, tick)
	s.cleared[tick] = true
}

func (s *tickSet) changes() (map[int32]TickData, []int32) {
	updated := make(map[int32]TickData, len(s.dirty))
	for tick := range s.dirty {
		updated[tick] = *s.cache[tick]
	}
	cleared := make([]int32, 0, len(s.cleared))
	for tick := range s.cleared {
		cleared = append(cleared, tick)
	}
	sort.Slice(cleared, func(i, j int) bool { return cleared[i] < cleared[j] })
	return updated, cleared
}
