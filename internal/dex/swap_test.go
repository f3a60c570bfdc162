package dex

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"liquidityCore/internal/dexmath"
)

// liquidPool returns a 0.3% pool at price 1 holding 1000 liquidity on [-600, 600].
func liquidPool(t *testing.T) (Pool, Position, TickMap) {
	t.Helper()
	pool := newTestPool(t, dexmath.Fee03)
	ticks := TickMap{}
	tr, err := pool.Mint(ticks, NewPosition(pool, "lp", -600, 600), -600, 600, dec("1000"))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	ticks.Apply(tr.Ticks, tr.Cleared)
	return tr.Pool, tr.Position, ticks
}

func TestSwapExactInputZeroForOne(t *testing.T) {
	pool, _, ticks := liquidPool(t)

	res, err := pool.Swap(ticks, true, dec("1"), dec("0.5"))
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if !res.Amount0.Equal(dec("1")) {
		t.Fatalf("amount0 = %s, want the full input", res.Amount0)
	}
	if !res.Amount1.IsNegative() || res.Amount1.LessThan(dec("-1")) {
		t.Fatalf("amount1 = %s, want in (-1, 0)", res.Amount1)
	}
	if !res.Pool.SqrtPrice.LessThan(pool.SqrtPrice) {
		t.Fatalf("price did not fall: %s", res.Pool.SqrtPrice)
	}
	if !res.Pool.FeeGrowthGlobal0.IsPositive() || !res.Pool.FeeGrowthGlobal1.IsZero() {
		t.Fatalf("fee growth = %s/%s", res.Pool.FeeGrowthGlobal0, res.Pool.FeeGrowthGlobal1)
	}
	if res.TicksCrossed != 0 || !res.Pool.Liquidity.Equal(dec("1000")) {
		t.Fatalf("unexpected crossing: %d, liquidity %s", res.TicksCrossed, res.Pool.Liquidity)
	}
	if !pool.SqrtPrice.Equal(dec("1")) {
		t.Fatalf("swap modified its receiver")
	}
}

func TestSwapExactOutputOneForZero(t *testing.T) {
	pool, _, ticks := liquidPool(t)

	res, err := pool.Swap(ticks, false, dec("-1"), dec("2"))
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	assertClose(t, "amount0", dec("-1"), res.Amount0, "0.000000000000001")
	if !res.Amount1.GreaterThan(dec("1")) {
		t.Fatalf("amount1 = %s, want more than 1 paid in", res.Amount1)
	}
	if !res.Pool.SqrtPrice.GreaterThan(pool.SqrtPrice) {
		t.Fatalf("price did not rise")
	}
	if !res.Pool.FeeGrowthGlobal1.IsPositive() {
		t.Fatalf("no fee accrued on token1")
	}
}

func TestSwapStopsAtPriceLimitAfterCrossing(t *testing.T) {
	pool, _, ticks := liquidPool(t)

	res, err := pool.Swap(ticks, true, dec("1000000"), dec("0.5"))
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if !res.Pool.SqrtPrice.Equal(dec("0.5")) {
		t.Fatalf("price = %s, want the limit", res.Pool.SqrtPrice)
	}
	if res.TicksCrossed != 1 || !res.Pool.Liquidity.IsZero() {
		t.Fatalf("crossed %d, liquidity %s", res.TicksCrossed, res.Pool.Liquidity)
	}
	if !res.Amount0.LessThan(dec("1000000")) || !res.Amount0.IsPositive() {
		t.Fatalf("amount0 = %s, want a partial fill", res.Amount0)
	}
	crossed, ok := res.Ticks[-600]
	if !ok || !crossed.FeeGrowthOutside0.Equal(res.Pool.FeeGrowthGlobal0) {
		t.Fatalf("crossed tick outside growth not flipped: %+v", crossed)
	}
	if !ticks[-600].FeeGrowthOutside0.IsZero() {
		t.Fatalf("swap modified the tick source")
	}
}

func TestSwapPastLastTickFails(t *testing.T) {
	pool, _, ticks := liquidPool(t)

	_, err := pool.Swap(ticks, true, dec("1000000"), dec("0.00000000000000000006"))
	if !errors.Is(err, ErrConflict) || err.Error() != "Not enough liquidity available in pool" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSwapRejectsBadInput(t *testing.T) {
	pool, _, ticks := liquidPool(t)

	if _, err := pool.Swap(ticks, true, decimal.Zero, dec("0.5")); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero amount got %v", err)
	}
	for _, tc := range []struct {
		zeroForOne bool
		limit      string
	}{
		{zeroForOne: true, limit: "1.5"},
		{zeroForOne: true, limit: "0.00000000000000000005"},
		{zeroForOne: false, limit: "0.5"},
		{zeroForOne: false, limit: "18446051000000000000"},
	} {
		_, err := pool.Swap(ticks, tc.zeroForOne, dec("1"), dec(tc.limit))
		if KindOf(err) != KindSlippageExceeded {
			t.Fatalf("limit %s (zeroForOne=%v) got %v", tc.limit, tc.zeroForOne, err)
		}
	}
}

func TestSwapProtocolFeeShare(t *testing.T) {
	pool, _, ticks := liquidPool(t)
	pool, err := pool.ConfigureProtocolFee(dec("0.5"))
	if err != nil {
		t.Fatalf("configure: %v", err)
	}

	res, err := pool.Swap(ticks, true, dec("1"), dec("0.5"))
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	// 0.3% of 1 in total, half of it to the protocol
	assertClose(t, "protocol fee", dec("0.0015"), res.Pool.ProtocolFeesToken0, "0.000000001")
	if !res.Pool.ProtocolFeesToken1.IsZero() {
		t.Fatalf("protocol fee on the wrong token")
	}
}

func TestSwapFeesAccrueToPosition(t *testing.T) {
	pool, pos, ticks := liquidPool(t)

	var err error
	var res SwapResult
	for i := 0; i < 3; i++ {
		prev := pool.FeeGrowthGlobal0
		res, err = pool.Swap(ticks, true, dec("1"), dec("0.5"))
		if err != nil {
			t.Fatalf("swap %d: %v", i, err)
		}
		if res.Pool.FeeGrowthGlobal0.LessThan(prev) {
			t.Fatalf("fee growth decreased")
		}
		pool = res.Pool
		ticks.Apply(res.Ticks, nil)
	}

	refreshed, err := pool.RefreshPosition(ticks, pos)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	assertClose(t, "owed0", dec("0.009"), refreshed.Position.TokensOwed0, "0.000000001")
	if !refreshed.Position.TokensOwed1.IsZero() {
		t.Fatalf("owed1 = %s", refreshed.Position.TokensOwed1)
	}

	_, owed0, _, err := pool.GetFeeCollectedEstimation(ticks, pos)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if !owed0.Equal(refreshed.Position.TokensOwed0) {
		t.Fatalf("estimate %s != refresh %s", owed0, refreshed.Position.TokensOwed0)
	}

	collected, err := pool.Collect(ticks, pos, dec("0.005"), decimal.Zero)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	assertClose(t, "owed0 after collect", dec("0.004"), collected.Position.TokensOwed0, "0.000000001")
}

func TestSwapStoppingOnTickKeepsPoolUsable(t *testing.T) {
	pool, _, ticks := liquidPool(t)

	stop := dexmath.TickToSqrtPrice(-600)
	res, err := pool.Swap(ticks, true, dec("1000"), stop)
	if err != nil {
		t.Fatalf("swap to tick: %v", err)
	}
	if !res.Pool.SqrtPrice.Equal(stop) || res.TicksCrossed != 1 || !res.Pool.Liquidity.IsZero() {
		t.Fatalf("price %s crossed %d liquidity %s", res.Pool.SqrtPrice, res.TicksCrossed, res.Pool.Liquidity)
	}
	if res.Pool.TickCurrent() != -601 {
		t.Fatalf("tick = %d, want -601", res.Pool.TickCurrent())
	}
	pool = res.Pool
	ticks.Apply(res.Ticks, nil)

	// nothing is left below the range, so the price moves for free
	down, err := pool.Swap(ticks, true, dec("1"), dec("0.5"))
	if err != nil {
		t.Fatalf("swap down: %v", err)
	}
	if down.TicksCrossed != 0 || !down.Pool.Liquidity.IsZero() || !down.Amount0.IsZero() || !down.Amount1.IsZero() {
		t.Fatalf("swap down crossed %d liquidity %s amounts %s/%s", down.TicksCrossed, down.Pool.Liquidity, down.Amount0, down.Amount1)
	}

	up, err := pool.Swap(ticks, false, dec("1"), dec("2"))
	if err != nil {
		t.Fatalf("swap up: %v", err)
	}
	if up.TicksCrossed != 1 || !up.Pool.Liquidity.Equal(dec("1000")) {
		t.Fatalf("swap up crossed %d liquidity %s", up.TicksCrossed, up.Pool.Liquidity)
	}
	if !up.Amount1.Equal(dec("1")) || !up.Amount0.IsNegative() {
		t.Fatalf("swap up amounts %s/%s", up.Amount0, up.Amount1)
	}
	if !up.Pool.SqrtPrice.GreaterThan(stop) {
		t.Fatalf("price did not rise above the tick")
	}

	// a range starting at the stop price is above the price, token0 only
	tr, err := pool.Mint(ticks, NewPosition(pool, "lp2", -600, 0), -600, 0, dec("100"))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if !tr.Amount1.IsZero() || !tr.Amount0.IsPositive() || !tr.Pool.Liquidity.IsZero() {
		t.Fatalf("mint amounts %s/%s liquidity %s", tr.Amount0, tr.Amount1, tr.Pool.Liquidity)
	}
}

func TestSwapSequenceInvariants(t *testing.T) {
	pool, first, ticks := liquidPool(t)
	positions := map[string]Position{"lp": first}

	check := func(step string, next Pool) {
		t.Helper()
		if next.Liquidity.IsNegative() {
			t.Fatalf("%s: negative liquidity %s", step, next.Liquidity)
		}
		if next.FeeGrowthGlobal0.LessThan(pool.FeeGrowthGlobal0) || next.FeeGrowthGlobal1.LessThan(pool.FeeGrowthGlobal1) {
			t.Fatalf("%s: fee growth decreased", step)
		}
		priceTick := dexmath.SqrtPriceToTick(next.SqrtPrice)
		onCrossedTick := next.Tick+1 == priceTick && next.SqrtPrice.Equal(dexmath.TickToSqrtPrice(priceTick))
		if next.Tick != priceTick && !onCrossedTick {
			t.Fatalf("%s: tick %d does not match price %s", step, next.Tick, next.SqrtPrice)
		}
		active := decimal.Zero
		for _, p := range positions {
			if p.TickLower <= next.Tick && next.Tick < p.TickUpper {
				active = active.Add(p.Liquidity)
			}
		}
		if !active.Equal(next.Liquidity) {
			t.Fatalf("%s: pool liquidity %s, positions in range hold %s", step, next.Liquidity, active)
		}
		pool = next
	}

	swap := func(step string, zeroForOne bool, amount string, limit decimal.Decimal) {
		t.Helper()
		res, err := pool.Swap(ticks, zeroForOne, dec(amount), limit)
		if err != nil {
			t.Fatalf("%s: %v", step, err)
		}
		ticks.Apply(res.Ticks, nil)
		check(step, res.Pool)
	}

	tr, err := pool.Mint(ticks, NewPosition(pool, "lp2", -1200, 0), -1200, 0, dec("500"))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	ticks.Apply(tr.Ticks, tr.Cleared)
	positions["lp2"] = tr.Position
	check("mint", tr.Pool)

	swap("down to -600", true, "1000", dexmath.TickToSqrtPrice(-600))
	swap("back up", false, "5", dec("2"))

	tr, err = pool.Burn(ticks, positions["lp2"], -1200, 0, dec("250"))
	if err != nil {
		t.Fatalf("burn: %v", err)
	}
	ticks.Apply(tr.Ticks, tr.Cleared)
	positions["lp2"] = tr.Position
	check("burn", tr.Pool)

	swap("exact output down", true, "-3", dec("0.5"))
	swap("up past 0", false, "50", dec("2"))
	swap("down to -1200", true, "2000", dexmath.TickToSqrtPrice(-1200))
	swap("down again", true, "1", dec("0.5"))
	swap("up from empty range", false, "10", dec("2"))
}
