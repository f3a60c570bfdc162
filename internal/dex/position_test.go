package dex

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPositionUpdateAccruesWithPriorLiquidity(t *testing.T) {
	pos := Position{Liquidity: dec("100"), FeeGrowthInside0Last: dec("0.5"), FeeGrowthInside1Last: dec("1")}

	if err := pos.Update(dec("50"), dec("0.75"), dec("1.01")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !pos.TokensOwed0.Equal(dec("25")) || !pos.TokensOwed1.Equal(dec("1")) {
		t.Fatalf("owed = %s/%s", pos.TokensOwed0, pos.TokensOwed1)
	}
	if !pos.Liquidity.Equal(dec("150")) {
		t.Fatalf("liquidity = %s", pos.Liquidity)
	}
	if !pos.FeeGrowthInside0Last.Equal(dec("0.75")) {
		t.Fatalf("snapshot not stored")
	}
}

func TestPositionUpdateZeroDeltaRefreshesFees(t *testing.T) {
	pos := Position{Liquidity: dec("3")}
	if err := pos.Update(decimal.Zero, dec("0.1"), decimal.Zero); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !pos.TokensOwed0.Equal(dec("0.3")) || !pos.Liquidity.Equal(dec("3")) {
		t.Fatalf("got owed %s liquidity %s", pos.TokensOwed0, pos.Liquidity)
	}
}

func TestPositionUpdateRejectsNegativeLiquidity(t *testing.T) {
	pos := Position{Liquidity: dec("1")}
	err := pos.Update(dec("-2"), decimal.Zero, decimal.Zero)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !pos.Liquidity.Equal(dec("1")) {
		t.Fatalf("failed update modified the position")
	}
}

func TestPositionIsInactive(t *testing.T) {
	if !(Position{Liquidity: dec("0.000000009")}).IsInactive() {
		t.Fatalf("dust position should be inactive")
	}
	if (Position{TokensOwed1: dec("0.00000001")}).IsInactive() {
		t.Fatalf("owed balance at threshold keeps the position")
	}
}

func TestPositionOwnerIndex(t *testing.T) {
	owner := NewPositionOwner("client|alice", "hash")
	key := TickRangeKey(-60, 60)
	if key != "-60:60" {
		t.Fatalf("range key = %q", key)
	}

	owner.AddPosition(key, "a")
	owner.AddPosition(key, "b")
	owner.AddPosition(key, "a")
	owner.AddPosition(TickRangeKey(0, 120), "c")

	if got := owner.PositionIDs(key); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("ids = %v", got)
	}
	if id, ok := owner.GetPositionID(key); !ok || id != "a" {
		t.Fatalf("first id = %q, %v", id, ok)
	}

	owner.RemovePosition(key, "a")
	if id, _ := owner.GetPositionID(key); id != "b" {
		t.Fatalf("after removal first id = %q", id)
	}
	owner.RemovePosition(key, "b")
	if _, ok := owner.TickRangeMap[key]; ok {
		t.Fatalf("empty range should be dropped")
	}

	owner.RemovePosition(TickRangeKey(0, 120))
	if !owner.IsEmpty() {
		t.Fatalf("expected empty index, got %v", owner.TickRangeMap)
	}
}

func TestPoolHashIsOrderSensitive(t *testing.T) {
	a := PoolHash("GALA", "USDC", 3000)
	if a != PoolHash("GALA", "USDC", 3000) {
		t.Fatalf("hash not deterministic")
	}
	if a == PoolHash("USDC", "GALA", 3000) || a == PoolHash("GALA", "USDC", 500) {
		t.Fatalf("hash collided across token order or fee")
	}
	if len(a) != 64 {
		t.Fatalf("hash length = %d", len(a))
	}
	if PoolAlias(a) != "service|pool_"+a {
		t.Fatalf("alias = %q", PoolAlias(a))
	}
	if PositionID("o", a, "0:60", 1) == PositionID("o", a, "0:60", 2) {
		t.Fatalf("position id must depend on the timestamp")
	}
}
