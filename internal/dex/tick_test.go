package dex

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertClose(t *testing.T, name string, want, got decimal.Decimal, tolerance string) {
	t.Helper()
	if got.Sub(want).Abs().GreaterThan(dec(tolerance)) {
		t.Fatalf("%s: got %s, want %s (tolerance %s)", name, got, want, tolerance)
	}
}

func TestTickUpdateSnapshotsOutsideBelowCurrent(t *testing.T) {
	below := NewTickData("pool", -60)
	flipped, err := below.Update(0, dec("10"), false, dec("3"), dec("4"), dec("1000"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !flipped || !below.Initialised {
		t.Fatalf("expected fresh tick to flip")
	}
	if !below.FeeGrowthOutside0.Equal(dec("3")) || !below.FeeGrowthOutside1.Equal(dec("4")) {
		t.Fatalf("expected outside snapshot, got %s/%s", below.FeeGrowthOutside0, below.FeeGrowthOutside1)
	}

	above := NewTickData("pool", 60)
	if _, err := above.Update(0, dec("10"), true, dec("3"), dec("4"), dec("1000")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !above.FeeGrowthOutside0.IsZero() || !above.FeeGrowthOutside1.IsZero() {
		t.Fatalf("tick above current must start with zero outside growth")
	}
	if !above.LiquidityNet.Equal(dec("-10")) {
		t.Fatalf("upper tick net = %s, want -10", above.LiquidityNet)
	}
}

func TestTickUpdateFlipsOnlyAtZero(t *testing.T) {
	tick := NewTickData("pool", 0)
	if flipped, _ := tick.Update(0, dec("5"), false, decimal.Zero, decimal.Zero, dec("100")); !flipped {
		t.Fatalf("expected flip on first liquidity")
	}
	if flipped, _ := tick.Update(0, dec("5"), false, decimal.Zero, decimal.Zero, dec("100")); flipped {
		t.Fatalf("unexpected flip when adding to live tick")
	}
	if flipped, _ := tick.Update(0, dec("-3"), false, decimal.Zero, decimal.Zero, dec("100")); flipped {
		t.Fatalf("unexpected flip on partial removal")
	}
	flipped, err := tick.Update(0, dec("-7"), false, decimal.Zero, decimal.Zero, dec("100"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !flipped || tick.Initialised {
		t.Fatalf("expected flip back to uninitialized")
	}
	if !tick.LiquidityNet.IsZero() {
		t.Fatalf("net = %s, want 0", tick.LiquidityNet)
	}
}

func TestTickUpdateRejectsOverMax(t *testing.T) {
	tick := NewTickData("pool", 0)
	_, err := tick.Update(0, dec("101"), false, decimal.Zero, decimal.Zero, dec("100"))
	if !errors.Is(err, ErrValidation) || err.Error() != "liquidity crossed max liquidity" {
		t.Fatalf("unexpected error %v", err)
	}
	if !tick.LiquidityGross.IsZero() {
		t.Fatalf("failed update modified the tick")
	}
}

func TestTickCross(t *testing.T) {
	tick := TickData{
		Tick:              60,
		LiquidityNet:      dec("-25"),
		LiquidityGross:    dec("25"),
		Initialised:       true,
		FeeGrowthOutside0: dec("1.5"),
		FeeGrowthOutside1: dec("0.25"),
	}
	net := tick.Cross(dec("4"), dec("1"))
	if !net.Equal(dec("-25")) {
		t.Fatalf("net = %s", net)
	}
	if !tick.FeeGrowthOutside0.Equal(dec("2.5")) || !tick.FeeGrowthOutside1.Equal(dec("0.75")) {
		t.Fatalf("outside after cross = %s/%s", tick.FeeGrowthOutside0, tick.FeeGrowthOutside1)
	}
}

func TestTickSetTracksChanges(t *testing.T) {
	src := TickMap{10: {Tick: 10, LiquidityGross: dec("1"), Initialised: true}}
	set := newTickSet("pool", src)

	t10, err := set.get(10)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	t10.LiquidityGross = dec("2")
	set.markDirty(10)

	if _, err := set.get(20); err != nil {
		t.Fatalf("get missing: %v", err)
	}
	set.markDirty(20)
	set.clear(20)

	updated, cleared := set.changes()
	if len(updated) != 1 || !updated[10].LiquidityGross.Equal(dec("2")) {
		t.Fatalf("updated = %+v", updated)
	}
	if len(cleared) != 1 || cleared[0] != 20 {
		t.Fatalf("cleared = %v", cleared)
	}
	if !src[10].LiquidityGross.Equal(dec("1")) {
		t.Fatalf("source tick modified through the working set")
	}
}
